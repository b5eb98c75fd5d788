package registry

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// CommandsDir holds one TOML document per command.
const CommandsDir = "commands"

// Pack is a loaded command pack.
type Pack struct {
	Manifest *PackManifest
	Commands []*scaffold.Command
	// Source labels where the pack came from, e.g. "builtin" or a cache path.
	Source string
}

// Name returns the pack name from its manifest.
func (p *Pack) Name() string { return p.Manifest.Pack.Name }

// LoadPack reads a pack rooted at fsys. cliVersion is checked against the pack's
// min_version.
func LoadPack(fsys fs.FS, source, cliVersion string) (*Pack, error) {
	manifest, err := ParseManifest(fsys)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", source, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("pack %s: %w", source, err)
	}
	if err := manifest.CheckCompatibility(cliVersion); err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, path.Join(CommandsDir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("pack %s: list commands: %w", source, err)
	}

	pack := &Pack{Manifest: manifest, Source: source}
	seen := make(map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", source, err)
		}
		doc, err := ParseCommandDocument(name, data)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", source, err)
		}
		if stem := strings.TrimSuffix(path.Base(name), ".toml"); stem != doc.Name {
			return nil, fmt.Errorf("pack %s: %s declares command %q; the file must be named %s.toml", source, name, doc.Name, doc.Name)
		}
		if prev, dup := seen[doc.Name]; dup {
			return nil, fmt.Errorf("pack %s: command %q is declared by %s and %s", source, doc.Name, prev, name)
		}
		seen[doc.Name] = name

		cmd, err := doc.Build(fsys, source+":"+name)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", source, err)
		}
		pack.Commands = append(pack.Commands, cmd)
	}
	if len(pack.Commands) == 0 {
		return nil, fmt.Errorf("pack %s: no commands under %s/", source, CommandsDir)
	}
	return pack, nil
}

// BuildRegistry indexes the commands of every pack. Commands of later packs
// replace same-named commands of earlier ones.
func BuildRegistry(packs ...*Pack) (*scaffold.Registry, error) {
	var commands []*scaffold.Command
	for _, p := range packs {
		commands = append(commands, p.Commands...)
	}
	return scaffold.NewRegistry(commands...)
}
