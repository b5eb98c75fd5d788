package scaffold

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProject struct {
	deps map[string]bool
}

func (p stubProject) Bindings() map[string]string {
	return map[string]string{BindingPackageName: "shop_app"}
}

func (p stubProject) HasDependency(name string) bool { return p.deps[name] }

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestCheckerPlan(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "lib/existing.dart", "old")
	writeFile(t, fsys, "lib/barrel.dart", "export 'a.dart';\n")
	writeFile(t, fsys, "lib/full_barrel.dart", "export 'a.dart';\n")
	require.NoError(t, fsys.MkdirAll("lib/dir.dart", 0o755))

	files := []RenderedFile{
		{Path: "lib/new.dart", Content: "new", Source: "new.tmpl"},
		{Path: "lib/existing.dart", Content: "replacement"},
		{Path: "lib/barrel.dart", Content: "export 'b.dart';\n", Barrel: true},
		{Path: "lib/full_barrel.dart", Content: "export 'a.dart';\n", Barrel: true},
		{Path: "lib/dir.dart", Content: "x"},
		{Path: "lib/new_barrel.dart", Content: "export 'c.dart';\n", Barrel: true},
	}

	plan, err := NewChecker(fsys, nil).Plan(files, OverwritePolicy{Flag: "force"})
	require.NoError(t, err)

	actions := make(map[string]Action)
	for _, f := range plan.Files {
		actions[f.Path] = f.Action
	}
	assert.Equal(t, map[string]Action{
		"lib/new.dart":         ActionCreate,
		"lib/existing.dart":    ActionConflict,
		"lib/barrel.dart":      ActionUpdateBarrel,
		"lib/full_barrel.dart": ActionUnchanged,
		"lib/dir.dart":         ActionConflict,
		"lib/new_barrel.dart":  ActionCreate,
	}, actions)

	assert.True(t, plan.HasErrors())
	assert.Equal(t, Errors{
		&FileAlreadyExistsError{Path: "lib/existing.dart", OverwriteArg: "force"},
		&FileAlreadyExistsError{Path: "lib/dir.dart", OverwriteArg: "force"},
	}, plan.Errors)

	assert.Equal(t, "export 'a.dart';\nexport 'b.dart';\n", plan.Files[2].Content)
	assert.Equal(t, []string{"export 'b.dart';"}, plan.Files[2].Added)
	assert.Equal(t, "new.tmpl", plan.Files[0].Source)

	existing, err := afero.ReadFile(fsys, "lib/existing.dart")
	require.NoError(t, err)
	assert.Equal(t, "old", string(existing), "planning must not write")
}

func TestCheckerPlanOverwrite(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "lib/existing.dart", "old")

	plan, err := NewChecker(fsys, nil).Plan([]RenderedFile{{Path: "lib/existing.dart", Content: "new"}}, OverwritePolicy{Allowed: true})
	require.NoError(t, err)
	assert.False(t, plan.HasErrors())
	assert.Equal(t, ActionOverwrite, plan.Files[0].Action)
}

func TestCheckPreconditions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "pubspec.yaml", "name: shop_app\n")
	require.NoError(t, fsys.MkdirAll("lib/features/orders", 0o755))

	project := stubProject{deps: map[string]bool{"flutter_riverpod": true}}
	ps := []Precondition{
		{Kind: PreconditionFileExists, Target: "pubspec.yaml", Severity: SeverityError},
		{Kind: PreconditionDirExists, Target: "lib/features/orders", Severity: SeverityError},
		{Kind: PreconditionDependency, Target: "flutter_riverpod", Severity: SeverityWarn},
		{Kind: PreconditionDirExists, Target: "lib/features/products", Severity: SeverityError, Hint: "run fsk new-feature products first"},
		{Kind: PreconditionFileExists, Target: "lib/features/orders", Severity: SeverityError, Description: "orders must be a file"},
		{Kind: PreconditionDependency, Target: "flutter_bloc", Severity: SeverityWarn, Hint: "flutter pub add flutter_bloc"},
	}

	warnings, errs, err := NewChecker(fsys, project).CheckPreconditions(ps)
	require.NoError(t, err)
	assert.Equal(t, []string{"pubspec.yaml must declare flutter_bloc (flutter pub add flutter_bloc)"}, warnings)
	assert.Equal(t, Errors{
		&PreconditionNotMetError{Description: "directory lib/features/products must exist", Suggestion: "run fsk new-feature products first"},
		&PreconditionNotMetError{Description: "orders must be a file"},
	}, errs)
}

func TestCheckPreconditionsWithoutProject(t *testing.T) {
	warnings, errs, err := NewChecker(afero.NewMemMapFs(), nil).CheckPreconditions([]Precondition{
		{Kind: PreconditionDependency, Target: "flutter_riverpod", Severity: SeverityError},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, errs, 1)
	assert.Equal(t, CategoryFilesystem, CategoryOf(errs))
}

func TestCheckerExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "lib/a.dart", "a")
	require.NoError(t, fsys.MkdirAll("lib/b", 0o755))

	got, err := NewChecker(fsys, nil).Existing([]string{"lib/b", "lib/a.dart", "lib/missing.dart"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.dart"}, got)
}
