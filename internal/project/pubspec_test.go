package project

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

const samplePubspec = `name: shop_app
description: A sample shop.
environment:
  sdk: ">=3.3.0 <4.0.0"
dependencies:
  flutter:
    sdk: flutter
  flutter_riverpod: ^2.5.1
  go_router: ^14.0.0
dev_dependencies:
  flutter_test:
    sdk: flutter
  build_runner: ^2.4.9
`

func TestOpen(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "pubspec.yaml", []byte(samplePubspec), 0644))

	p, err := Open(fsys, "/work/shop")
	require.NoError(t, err)
	assert.True(t, p.Found())
	assert.Equal(t, "A sample shop.", p.Pubspec().Description)
	assert.Equal(t, map[string]string{
		scaffold.BindingPackageName: "shop_app",
		scaffold.BindingProjectRoot: "/work/shop",
	}, p.Bindings())

	assert.True(t, p.HasDependency("flutter_riverpod"))
	assert.True(t, p.HasDependency("build_runner"))
	assert.False(t, p.HasDependency("flutter_bloc"))
	assert.Equal(t, []string{"build_runner", "flutter", "flutter_riverpod", "flutter_test", "go_router"}, p.Dependencies())
}

func TestOpenWithoutPubspec(t *testing.T) {
	p, err := Open(afero.NewMemMapFs(), "/work/MyShopApp")
	require.NoError(t, err)
	assert.False(t, p.Found())
	assert.Equal(t, "my_shop_app", p.PackageName())
	assert.False(t, p.HasDependency("flutter"))
	assert.Empty(t, p.Dependencies())
}

func TestOpenNamelessPubspec(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "pubspec.yaml", []byte("dependencies:\n  provider: any\n"), 0644))

	p, err := Open(fsys, "/work/shop-app")
	require.NoError(t, err)
	assert.Equal(t, "shop_app", p.PackageName())
	assert.True(t, p.HasDependency("provider"))
}

func TestOpenInvalidPubspec(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "pubspec.yaml", []byte("name: [unclosed\n"), 0644))

	_, err := Open(fsys, ".")
	assert.ErrorContains(t, err, "failed to parse pubspec.yaml")
}
