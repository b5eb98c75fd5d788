package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr string
		want Condition
	}{
		{expr: "with-tests", want: Condition{Argument: "with-tests", Op: OpSet}},
		{expr: " !force ", want: Condition{Argument: "force", Op: OpNotSet}},
		{expr: "state == bloc", want: Condition{Argument: "state", Op: OpEquals, Value: "bloc"}},
		{expr: "state!=\"bloc\"", want: Condition{Argument: "state", Op: OpNotEquals, Value: "bloc"}},
		{expr: "targets contains ios", want: Condition{Argument: "targets", Op: OpContains, Value: "ios"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "state ==", "== bloc", "two words"} {
		_, err := ParseCondition(bad)
		assert.Error(t, err, bad)
	}
}

func TestConditionCheck(t *testing.T) {
	spec := featureSpec()
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{expr: "with-tests"},
		{expr: "!force"},
		{expr: "state == bloc"},
		{expr: "description != none"},
		{expr: "targets contains web"},
		{expr: "unknown", wantErr: true},
		{expr: "state", wantErr: true},
		{expr: "force == true", wantErr: true},
		{expr: "state == mobx", wantErr: true},
		{expr: "targets contains linux", wantErr: true},
		{expr: "state contains bloc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			if tt.wantErr {
				assert.Error(t, c.Check(spec))
			} else {
				assert.NoError(t, c.Check(spec))
			}
		})
	}
}

func TestConditionHolds(t *testing.T) {
	opts, err := Resolve(featureSpec(), []string{"products", "--with-tests", "--state", "bloc", "--targets", "ios"})
	require.NoError(t, err)

	assert.True(t, AllHold(nil, opts))
	assert.True(t, AllHold(MustParseConditions("with-tests", "state == bloc", "targets contains ios"), opts))
	assert.False(t, AllHold(MustParseConditions("with-tests", "force"), opts))
	assert.True(t, AllHold(MustParseConditions("!force", "state != riverpod"), opts))
	assert.False(t, AllHold(MustParseConditions("targets contains web"), opts))
}
