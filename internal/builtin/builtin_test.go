package builtin_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenticgokit/fsk/internal/builtin"
	"github.com/agenticgokit/fsk/pkg/registry"
	"github.com/agenticgokit/fsk/pkg/scaffold"
)

type flutterProject struct {
	deps map[string]bool
}

func (p flutterProject) Bindings() map[string]string {
	return map[string]string{scaffold.BindingPackageName: "shop_app", scaffold.BindingProjectRoot: "."}
}

func (p flutterProject) HasDependency(name string) bool { return p.deps[name] }

func newService(t *testing.T, fsys afero.Fs) *scaffold.Service {
	t.Helper()
	pack, err := builtin.Load("dev")
	require.NoError(t, err)
	reg, err := registry.BuildRegistry(pack)
	require.NoError(t, err)
	return scaffold.NewService(reg, fsys, scaffold.WithProject(flutterProject{deps: map[string]bool{"flutter_riverpod": true}}))
}

func newProjectFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "pubspec.yaml", []byte("name: shop_app\n"), 0o644))
	return fsys
}

func run(t *testing.T, svc *scaffold.Service, command string, args ...string) (*scaffold.ExecutionReport, error) {
	t.Helper()
	return svc.Run(context.Background(), scaffold.Invocation{Command: command, Args: args})
}

func TestBuiltinPackLoads(t *testing.T) {
	pack, err := builtin.Load("dev")
	require.NoError(t, err)
	assert.Equal(t, "flutter", pack.Name())

	reg, err := registry.BuildRegistry(pack)
	require.NoError(t, err)

	var names []string
	for _, cmd := range reg.Commands() {
		names = append(names, cmd.Spec.Name)
	}
	assert.Equal(t, []string{"add-ci", "add-state", "new-auth", "new-feature", "new-widget"}, names)
}

func TestBuiltinPackVerifies(t *testing.T) {
	pack, err := builtin.Load("dev")
	require.NoError(t, err)
	reg, err := registry.BuildRegistry(pack)
	require.NoError(t, err)
	assert.NoError(t, scaffold.VerifyRegistry(reg))
}

func TestNewFeatureDefaults(t *testing.T) {
	fsys := newProjectFs(t)
	report, err := run(t, newService(t, fsys), "new-feature", "products")
	require.NoError(t, err)

	want := []string{
		"lib/features/products/domain/entities/products.dart",
		"lib/features/products/domain/repositories/products_repository.dart",
		"lib/features/products/data/repositories/products_repository_impl.dart",
		"lib/features/products/presentation/widgets/products_card.dart",
		"lib/features/products/presentation/providers/products_provider.dart",
		"lib/features/products/presentation/pages/products_list_page.dart",
	}
	assert.True(t, report.Written)
	assert.Equal(t, "riverpod", report.Variant)
	assert.Equal(t, want, report.Created)
	assert.Empty(t, report.Modified)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, []string{"dart format lib/features/products"}, report.Hooks)
	assert.Contains(t, report.NextSteps, "Implement the data source behind ProductsRepositoryImpl")

	for _, path := range want {
		exists, err := afero.Exists(fsys, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}

	entity, err := afero.ReadFile(fsys, want[0])
	require.NoError(t, err)
	assert.Contains(t, string(entity), "class Products")
}

func TestNewFeatureExportAndTests(t *testing.T) {
	fsys := newProjectFs(t)
	require.NoError(t, afero.WriteFile(fsys, "lib/features/features.dart", []byte("export 'orders/orders.dart';\n"), 0o644))

	report, err := run(t, newService(t, fsys), "new-feature", "user_profile", "-s", "bloc", "--export", "--with-tests")
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/features/features.dart"}, report.Modified)
	assert.Contains(t, report.Created, "lib/features/user_profile/user_profile.dart")
	assert.Contains(t, report.Created, "lib/features/user_profile/presentation/bloc/user_profile_bloc.dart")
	assert.Contains(t, report.Created, "test/features/user_profile/presentation/user_profile_bloc_test.dart")
	assert.Contains(t, report.Warnings, "pubspec.yaml must declare flutter_bloc (run flutter pub add flutter_bloc)")

	barrel, err := afero.ReadFile(fsys, "lib/features/features.dart")
	require.NoError(t, err)
	assert.Equal(t, "export 'orders/orders.dart';\nexport 'user_profile/user_profile.dart';\n", string(barrel))
}

func TestNewWidgetConsumer(t *testing.T) {
	fsys := newProjectFs(t)
	svc := newService(t, fsys)

	report, err := run(t, svc, "new-widget", "UserAvatar", "--type", "consumer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lib/widgets/widgets.dart", "lib/widgets/user_avatar.dart"}, report.Created)

	widget, err := afero.ReadFile(fsys, "lib/widgets/user_avatar.dart")
	require.NoError(t, err)
	assert.Contains(t, string(widget), "class UserAvatar extends ConsumerWidget")
	assert.Contains(t, string(widget), "import 'package:flutter_riverpod/flutter_riverpod.dart';")

	barrel, err := afero.ReadFile(fsys, "lib/widgets/widgets.dart")
	require.NoError(t, err)
	assert.Equal(t, "export 'user_avatar.dart';\n", string(barrel))

	// A second run conflicts on the widget and leaves the barrel alone.
	report, err = run(t, svc, "new-widget", "UserAvatar", "--type", "consumer")
	require.Error(t, err)
	assert.False(t, report.Written)

	var exists *scaffold.FileAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "lib/widgets/user_avatar.dart", exists.Path)
	assert.Contains(t, exists.Hint(), "--force")
	assert.Equal(t, []string{"lib/widgets/widgets.dart"}, report.PlannedPaths(scaffold.ActionUnchanged))
}

func TestRepeatedRunConflictsOnEveryFile(t *testing.T) {
	fsys := newProjectFs(t)
	svc := newService(t, fsys)

	first, err := run(t, svc, "new-feature", "products")
	require.NoError(t, err)

	second, err := run(t, svc, "new-feature", "products")
	require.Error(t, err)
	assert.Equal(t, scaffold.CategoryFilesystem, scaffold.CategoryOf(err))

	var conflicts []string
	for _, cause := range second.Causes() {
		var exists *scaffold.FileAlreadyExistsError
		require.ErrorAs(t, cause, &exists)
		conflicts = append(conflicts, exists.Path)
	}
	assert.Equal(t, first.Created, conflicts)
	assert.Empty(t, second.Created)

	forced, err := run(t, svc, "new-feature", "products", "--force")
	require.NoError(t, err)
	assert.Equal(t, first.Created, forced.Modified)
}

func TestInvalidIdentifierWritesNothing(t *testing.T) {
	fsys := newProjectFs(t)
	report, err := run(t, newService(t, fsys), "new-widget", "bad_name")

	var invalid *scaffold.InvalidIdentifierError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bad_name", invalid.Value)
	assert.Equal(t, scaffold.CategoryInput, scaffold.CategoryOf(err))
	assert.False(t, report.Written)
	assert.Empty(t, report.Planned)

	exists, err := afero.DirExists(fsys, "lib")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddStateMigration(t *testing.T) {
	fsys := newProjectFs(t)
	svc := newService(t, fsys)

	_, err := run(t, svc, "new-feature", "orders")
	require.NoError(t, err)

	report, err := run(t, svc, "add-state", "orders", "--type", "bloc", "--migrate", "riverpod")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lib/features/orders/presentation/bloc/orders_bloc.dart",
		"lib/features/orders/presentation/bloc/orders_event.dart",
		"lib/features/orders/presentation/bloc/orders_state.dart",
	}, report.Created)
	assert.Equal(t, []string{"lib/features/orders/presentation/providers/orders_provider.dart"}, report.FlaggedForRemoval)
	assert.Contains(t, report.NextSteps, "Remove the riverpod files flagged for removal once nothing imports them")

	exists, err := afero.Exists(fsys, "lib/features/orders/presentation/providers/orders_provider.dart")
	require.NoError(t, err)
	assert.True(t, exists, "migration only flags files")
}

func TestAddStateRequiresFeature(t *testing.T) {
	report, err := run(t, newService(t, newProjectFs(t)), "add-state", "orders")
	require.Error(t, err)

	var unmet *scaffold.PreconditionNotMetError
	require.ErrorAs(t, err, &unmet)
	assert.Equal(t, "feature directory lib/features/orders does not exist", unmet.Description)
	assert.Equal(t, "run fsk new-feature orders first", unmet.Hint())
	assert.False(t, report.Written)
}

func TestAddStateRejectsMigratingToSameVariant(t *testing.T) {
	_, err := run(t, newService(t, newProjectFs(t)), "add-state", "orders", "--type", "bloc", "--migrate", "bloc")
	var invalid *scaffold.InvalidChoiceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "migrate", invalid.Argument)
}

func TestDryRunWritesNothing(t *testing.T) {
	fsys := newProjectFs(t)
	svc := newService(t, fsys)

	report, err := svc.Run(context.Background(), scaffold.Invocation{
		Command: "add-ci",
		Args:    []string{"release_build", "--targets", "android,ios"},
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.False(t, report.Written)
	assert.Equal(t, []string{".github/workflows/release-build.yml"}, report.PlannedPaths(scaffold.ActionCreate))

	exists, err := afero.DirExists(fsys, ".github")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewAuthProviders(t *testing.T) {
	fsys := newProjectFs(t)
	report, err := run(t, newService(t, fsys), "new-auth", "--backend", "supabase", "--providers", "email,google", "--guards")
	require.NoError(t, err)

	assert.Equal(t, "auth", report.Primary)
	assert.Contains(t, report.Created, "lib/features/auth/data/repositories/supabase_auth_repository.dart")
	assert.Contains(t, report.Created, "lib/core/router/auth_guard.dart")
	assert.Contains(t, report.Warnings, "pubspec.yaml must declare google_sign_in (run flutter pub add google_sign_in)")
	for _, w := range report.Warnings {
		assert.NotContains(t, w, "sign_in_with_apple")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, newService(t, newProjectFs(t)), "new-screen", "home")
	var unknown *scaffold.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
}
