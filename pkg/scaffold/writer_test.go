package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// failingFs fails every OpenFile call for one path.
type failingFs struct {
	afero.Fs
	failOn string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == filepath.FromSlash(f.failOn) {
		return nil, errDiskFull
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func readString(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestWriterApply(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "lib/widgets/widgets.dart", "export 'price_tag.dart';\n")
	writeFile(t, fsys, "lib/old.dart", "old")

	plan := &Plan{Files: []PlannedFile{
		{Path: "lib/widgets/user_avatar.dart", Action: ActionCreate, Content: "class UserAvatar {}\n"},
		{Path: "lib/widgets/widgets.dart", Action: ActionUpdateBarrel, Content: "export 'price_tag.dart';\nexport 'user_avatar.dart';\n"},
		{Path: "lib/old.dart", Action: ActionOverwrite, Content: "new"},
		{Path: "lib/same.dart", Action: ActionUnchanged},
	}}

	result, err := NewWriter(fsys, nil).Apply(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/widgets/user_avatar.dart"}, result.Created)
	assert.Equal(t, []string{"lib/widgets/widgets.dart", "lib/old.dart"}, result.Modified)

	assert.Equal(t, "class UserAvatar {}\n", readString(t, fsys, "lib/widgets/user_avatar.dart"))
	assert.Equal(t, "export 'price_tag.dart';\nexport 'user_avatar.dart';\n", readString(t, fsys, "lib/widgets/widgets.dart"))
	assert.Equal(t, "new", readString(t, fsys, "lib/old.dart"))

	exists, err := afero.Exists(fsys, "lib/same.dart")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriterRefusesConflicts(t *testing.T) {
	fsys := afero.NewMemMapFs()
	plan := &Plan{Files: []PlannedFile{
		{Path: "lib/a.dart", Action: ActionCreate, Content: "a"},
		{Path: "lib/b.dart", Action: ActionConflict},
	}}

	_, err := NewWriter(fsys, nil).Apply(plan)
	require.ErrorIs(t, err, ErrPlanNotClean)

	exists, err := afero.Exists(fsys, "lib/a.dart")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriterRollsBackOnFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "lib/features/features.dart", "export 'orders/orders.dart';\n")

	plan := &Plan{Files: []PlannedFile{
		{Path: "lib/features/products/products.dart", Action: ActionCreate, Content: "entity"},
		{Path: "lib/features/features.dart", Action: ActionUpdateBarrel, Content: "export 'orders/orders.dart';\nexport 'products/products.dart';\n"},
		{Path: "lib/features/products/data/repo.dart", Action: ActionCreate, Content: "repo"},
	}}

	fsys := failingFs{Fs: base, failOn: "lib/features/products/data/repo.dart"}
	_, err := NewWriter(fsys, nil).Apply(plan)
	require.ErrorIs(t, err, errDiskFull)

	for _, path := range []string{
		"lib/features/products/products.dart",
		"lib/features/products/data",
		"lib/features/products",
	} {
		exists, err := afero.Exists(base, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
	assert.Equal(t, "export 'orders/orders.dart';\n", readString(t, base, "lib/features/features.dart"))
}

func TestWriterCreateRaces(t *testing.T) {
	fsys := afero.NewMemMapFs()
	plan := &Plan{Files: []PlannedFile{{Path: "lib/a.dart", Action: ActionCreate, Content: "mine"}}}

	// Another process wins between planning and writing.
	writeFile(t, fsys, "lib/a.dart", "theirs")

	_, err := NewWriter(fsys, nil).Apply(plan)
	var exists *FileAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "theirs", readString(t, fsys, "lib/a.dart"))
}
