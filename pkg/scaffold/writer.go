package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrPlanNotClean is returned when asked to apply a plan that has conflicts or errors.
var ErrPlanNotClean = errors.New("plan has unresolved conflicts or errors; nothing was written")

const fileMode fs.FileMode = 0o644

// WriteResult lists the paths the writer touched.
type WriteResult struct {
	Created  []string
	Modified []string
}

// Writer materializes a plan. It applies a plan fully or not at all.
type Writer struct {
	fs     afero.Fs
	logger *zerolog.Logger
}

// NewWriter creates a writer over fsys
func NewWriter(fsys afero.Fs, logger *zerolog.Logger) *Writer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Writer{fs: fsys, logger: logger}
}

type journal struct {
	createdFiles []string
	createdDirs  []string
	originals    []original
}

type original struct {
	path    string
	content []byte
	mode    fs.FileMode
}

// Apply writes every create, overwrite and update-barrel entry of the plan.
// On an I/O failure the files created so far are removed and modified files
// are restored before the error is returned.
func (w *Writer) Apply(plan *Plan) (*WriteResult, error) {
	if plan.HasErrors() {
		return nil, ErrPlanNotClean
	}

	j := &journal{}
	result := &WriteResult{}
	for _, f := range plan.Files {
		var err error
		switch f.Action {
		case ActionCreate:
			err = w.create(j, f)
			if err == nil {
				result.Created = append(result.Created, f.Path)
			}
		case ActionOverwrite, ActionUpdateBarrel:
			err = w.replace(j, f)
			if err == nil {
				result.Modified = append(result.Modified, f.Path)
			}
		default:
			continue
		}
		if err != nil {
			if rbErr := w.rollback(j); rbErr != nil {
				return nil, errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return nil, err
		}
		w.logger.Debug().Str("path", f.Path).Str("action", string(f.Action)).Msg("wrote file")
	}
	return result, nil
}

func (w *Writer) create(j *journal, f PlannedFile) error {
	name := filepath.FromSlash(f.Path)
	if err := w.mkdirs(j, filepath.Dir(name)); err != nil {
		return err
	}

	file, err := w.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &FileAlreadyExistsError{Path: f.Path}
		}
		return fmt.Errorf("create %s: %w", f.Path, err)
	}
	j.createdFiles = append(j.createdFiles, name)
	return writeAndClose(file, f)
}

func (w *Writer) replace(j *journal, f PlannedFile) error {
	name := filepath.FromSlash(f.Path)
	info, err := w.fs.Stat(name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.Path, err)
	}
	previous, err := afero.ReadFile(w.fs, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}

	file, err := w.fs.OpenFile(name, os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	j.originals = append(j.originals, original{path: name, content: previous, mode: info.Mode().Perm()})
	return writeAndClose(file, f)
}

func writeAndClose(file afero.File, f PlannedFile) error {
	if _, err := file.WriteString(f.Content); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Path, err)
	}
	return nil
}

// mkdirs creates dir and its missing parents, recording each directory it creates.
func (w *Writer) mkdirs(j *journal, dir string) error {
	var missing []string
	for d := dir; d != "." && d != string(filepath.Separator) && d != ""; d = filepath.Dir(d) {
		exists, err := afero.DirExists(w.fs, d)
		if err != nil {
			return fmt.Errorf("stat %s: %w", d, err)
		}
		if exists {
			break
		}
		missing = append(missing, d)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := w.fs.Mkdir(missing[i], 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("mkdir %s: %w", missing[i], err)
		}
		j.createdDirs = append(j.createdDirs, missing[i])
	}
	return nil
}

func (w *Writer) rollback(j *journal) error {
	var errs []error
	for i := len(j.originals) - 1; i >= 0; i-- {
		o := j.originals[i]
		if err := afero.WriteFile(w.fs, o.path, o.content, o.mode); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", o.path, err))
		}
	}
	for i := len(j.createdFiles) - 1; i >= 0; i-- {
		if err := w.fs.Remove(j.createdFiles[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", j.createdFiles[i], err))
		}
	}
	for i := len(j.createdDirs) - 1; i >= 0; i-- {
		// Directories are only removed when empty.
		_ = w.fs.Remove(j.createdDirs[i])
	}
	w.logger.Debug().Int("files", len(j.createdFiles)).Int("restored", len(j.originals)).Msg("rolled back partial write")
	return errors.Join(errs...)
}
