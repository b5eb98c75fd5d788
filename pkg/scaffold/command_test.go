package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		arg     ArgumentSpec
		wantErr string
	}{
		{name: "string", arg: ArgumentSpec{Name: "feature", Kind: KindString, Positional: true, Convention: ConventionSnake}},
		{name: "list default in allowed", arg: ArgumentSpec{Name: "targets", Kind: KindList, Allowed: []string{"ios", "web"}, Default: "ios,web", HasDefault: true}},
		{name: "upper-case name", arg: ArgumentSpec{Name: "Feature", Kind: KindString}, wantErr: "lower-case letter"},
		{name: "bad character", arg: ArgumentSpec{Name: "with.tests", Kind: KindBoolean}, wantErr: "may only contain"},
		{name: "long short", arg: ArgumentSpec{Name: "state", Short: "st", Kind: KindString}, wantErr: "single character"},
		{name: "unknown kind", arg: ArgumentSpec{Name: "state", Kind: "enum"}, wantErr: "unknown kind"},
		{name: "required with default", arg: ArgumentSpec{Name: "state", Kind: KindString, Required: true, Default: "x", HasDefault: true}, wantErr: "cannot have a default"},
		{name: "choice without values", arg: ArgumentSpec{Name: "state", Kind: KindChoice}, wantErr: "need allowed values"},
		{name: "choice default not allowed", arg: ArgumentSpec{Name: "state", Kind: KindChoice, Allowed: []string{"bloc"}, Default: "mobx", HasDefault: true}, wantErr: "is not one of"},
		{name: "allowed on string", arg: ArgumentSpec{Name: "state", Kind: KindString, Allowed: []string{"bloc"}}, wantErr: "only apply to choice and list"},
		{name: "list default not allowed", arg: ArgumentSpec{Name: "targets", Kind: KindList, Allowed: []string{"ios"}, Default: "ios,linux", HasDefault: true}, wantErr: "default item \"linux\""},
		{name: "bad boolean default", arg: ArgumentSpec{Name: "force", Kind: KindBoolean, Default: "yes", HasDefault: true}, wantErr: "not a bool"},
		{name: "positional boolean", arg: ArgumentSpec{Name: "force", Kind: KindBoolean, Positional: true}, wantErr: "must be a string"},
		{name: "convention on flag", arg: ArgumentSpec{Name: "name", Kind: KindString, Convention: ConventionPascal}, wantErr: "only apply to the positional"},
		{name: "unknown convention", arg: ArgumentSpec{Name: "name", Kind: KindString, Positional: true, Convention: "camel"}, wantErr: "unknown naming convention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.arg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommandSpecValidate(t *testing.T) {
	require.NoError(t, featureSpec().Validate())

	tests := []struct {
		name    string
		mutate  func(*CommandSpec)
		wantErr string
	}{
		{name: "missing name", mutate: func(c *CommandSpec) { c.Name = "" }, wantErr: "command name is required"},
		{name: "duplicate argument", mutate: func(c *CommandSpec) {
			c.Arguments = append(c.Arguments, ArgumentSpec{Name: "force", Kind: KindBoolean})
		}, wantErr: "duplicate argument"},
		{name: "binding collision", mutate: func(c *CommandSpec) {
			c.Arguments = append(c.Arguments, ArgumentSpec{Name: "with_tests", Kind: KindBoolean})
		}, wantErr: "bind to the same name"},
		{name: "duplicate short", mutate: func(c *CommandSpec) {
			c.Arguments = append(c.Arguments, ArgumentSpec{Name: "style", Short: "s", Kind: KindString})
		}, wantErr: "duplicate short alias -s"},
		{name: "two positionals", mutate: func(c *CommandSpec) {
			c.Arguments = append(c.Arguments, ArgumentSpec{Name: "other", Kind: KindString, Positional: true})
		}, wantErr: "only one positional"},
		{name: "selector not a choice", mutate: func(c *CommandSpec) { c.Selector = "force" }, wantErr: "must name a choice argument"},
		{name: "overwrite not a boolean", mutate: func(c *CommandSpec) { c.Overwrite = "state" }, wantErr: "must name a boolean argument"},
		{name: "migrate without selector", mutate: func(c *CommandSpec) { c.Selector = "" }, wantErr: "migrate requires a selector"},
		{name: "migrate with default", mutate: func(c *CommandSpec) {
			c.Arguments[2].Default, c.Arguments[2].HasDefault = "bloc", true
		}, wantErr: "cannot have a default"},
		{name: "migrate value outside selector", mutate: func(c *CommandSpec) {
			c.Arguments[2].Allowed = []string{"riverpod", "mobx"}
		}, wantErr: "migrate value \"mobx\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := featureSpec()
			spec.Arguments = append([]ArgumentSpec(nil), spec.Arguments...)
			tt.mutate(&spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func featureCommand() *Command {
	sets := make(map[string]TemplateSet)
	for _, key := range []string{"riverpod", "bloc", "provider"} {
		sets[key] = TemplateSet{
			Key: key,
			Files: []TemplateFile{
				{Path: "lib/features/{{.feature}}/{{.feature}}.dart", Body: "class {{.Feature}} {}\n", Source: "entity"},
				{Path: "lib/features/{{.feature}}/" + key + ".dart", Body: "// " + key + "\n", Source: key},
				{Path: "test/{{.feature}}_test.dart", Body: "// test\n", Source: "test", When: MustParseConditions("with-tests")},
			},
		}
	}
	return &Command{Spec: featureSpec(), Sets: sets, Source: "test:commands/new-feature.toml"}
}

func TestCommandValidateVariants(t *testing.T) {
	require.NoError(t, featureCommand().Validate())

	missing := featureCommand()
	delete(missing.Sets, "bloc")
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no template set for state=bloc")

	extra := featureCommand()
	extra.Sets["mobx"] = TemplateSet{Key: "mobx"}
	err = extra.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template set \"mobx\" is not a value of \"state\"")

	miskeyed := featureCommand()
	miskeyed.Sets["bloc"] = TemplateSet{Key: "riverpod"}
	assert.Error(t, miskeyed.Validate())

	badCondition := featureCommand()
	set := badCondition.Sets["bloc"]
	set.Files = append(set.Files, TemplateFile{Path: "x.dart", Source: "x", When: MustParseConditions("state == mobx")})
	badCondition.Sets["bloc"] = set
	assert.Error(t, badCondition.Validate())

	badPrecondition := featureCommand()
	badPrecondition.Preconditions = []Precondition{{Kind: "exists", Target: "pubspec.yaml", Severity: SeverityError}}
	assert.Error(t, badPrecondition.Validate())
}

func TestCommandValidateWithoutSelector(t *testing.T) {
	cmd := &Command{
		Spec: CommandSpec{Name: "add-ci", Arguments: []ArgumentSpec{{Name: "workflow", Kind: KindString, Positional: true}}},
		Sets: map[string]TemplateSet{DefaultVariant: {Key: DefaultVariant}},
	}
	require.NoError(t, cmd.Validate())

	cmd.Sets = map[string]TemplateSet{"github": {Key: "github"}}
	assert.Error(t, cmd.Validate())
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(featureCommand())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Command("new-thing")
	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "new-thing", unknown.Name)

	_, err = reg.Set("new-feature", "mobx")
	var variant *UnknownTemplateVariantError
	require.ErrorAs(t, err, &variant)

	cmd, err := reg.Command("new-feature")
	require.NoError(t, err)

	opts, err := Resolve(cmd.Spec, []string{"products", "--state", "bloc"})
	require.NoError(t, err)
	key := reg.Variant(cmd, opts)
	assert.Equal(t, "bloc", key)

	files, err := reg.Lookup("new-feature", key, opts)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "bloc", files[1].Source)

	opts, err = Resolve(cmd.Spec, []string{"products", "--with-tests"})
	require.NoError(t, err)
	files, err = reg.Lookup("new-feature", reg.Variant(cmd, opts), opts)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestRegistryRejectsInvalidCommand(t *testing.T) {
	bad := featureCommand()
	delete(bad.Sets, "provider")
	_, err := NewRegistry(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test:commands/new-feature.toml")
}

func TestRegistryLaterCommandWins(t *testing.T) {
	first, second := featureCommand(), featureCommand()
	second.Source = "override"
	reg, err := NewRegistry(first, second)
	require.NoError(t, err)

	cmd, err := reg.Command("new-feature")
	require.NoError(t, err)
	assert.Equal(t, "override", cmd.Source)
	assert.Len(t, reg.Commands(), 1)
}
