// Package builtin embeds the Flutter command pack that ships with fsk.
package builtin

import (
	"embed"
	"io/fs"

	"github.com/agenticgokit/fsk/pkg/registry"
)

// Source labels commands loaded from the embedded pack.
const Source = "builtin"

//go:embed pack
var packFS embed.FS

// FS returns the embedded pack rooted at its fsk-pack.toml.
func FS() fs.FS {
	sub, err := fs.Sub(packFS, "pack")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load parses the embedded pack.
func Load(cliVersion string) (*registry.Pack, error) {
	return registry.LoadPack(FS(), Source, cliVersion)
}
