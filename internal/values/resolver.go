package values

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/spf13/afero"
)

const inlineValuesFile = "values.yaml"

// Merge orders value sources for helm: the inline source first, then every file in declared order.
// Helm lets later files win, so files override inline values. Entries are never reordered or de-duplicated.
func Merge(inline *models.ValueSource, files []string) []models.ValueSource {
	sources := make([]models.ValueSource, 0, len(files)+1)
	if inline != nil {
		sources = append(sources, *inline)
	}
	for _, file := range files {
		sources = append(sources, models.ValueSource{Kind: models.ValueSourceFile, Path: file})
	}
	return sources
}

// Resolver materializes value sources for a single run.
type Resolver struct {
	FS          afero.Fs
	TempDirBase string
	Log         *logging.Logger
}

// Scope owns the temporary inline values file. Close must be called on every exit path.
type Scope struct {
	Sources []models.ValueSource

	fs      afero.Fs
	dir     string
	once    sync.Once
	closeEr error
}

// Resolve writes inline values, if any, to a private temporary file and returns the ordered sources.
func (r Resolver) Resolve(inline string, files []string) (*Scope, error) {
	fs := r.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	scope := &Scope{fs: fs}

	var inlineSource *models.ValueSource
	if inline != "" {
		path, err := scope.materialize(r.TempDirBase, inline)
		if err != nil {
			return nil, errors.Join(err, scope.Close())
		}
		if r.Log != nil {
			r.Log.Debugf("Inline values written to %s", path)
		}
		inlineSource = &models.ValueSource{Kind: models.ValueSourceInline, Path: path}
	}

	scope.Sources = Merge(inlineSource, files)

	return scope, nil
}

func (s *Scope) materialize(base, content string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}

	dir, err := afero.TempDir(s.fs, base, "helm-deploy-")
	if err != nil {
		return "", &models.ResourceError{Action: "create temporary values directory", Err: err}
	}
	s.dir = dir

	path := filepath.Join(dir, inlineValuesFile)
	if err := afero.WriteFile(s.fs, path, []byte(content), 0o600); err != nil {
		return "", &models.ResourceError{Action: "write inline values", Err: err}
	}

	return path, nil
}

// Close removes the temporary values, if any were written. It is safe to call more than once.
func (s *Scope) Close() error {
	if s == nil {
		return nil
	}

	s.once.Do(func() {
		if s.dir == "" {
			return
		}
		if err := s.fs.RemoveAll(s.dir); err != nil {
			s.closeEr = &models.ResourceError{Action: "remove inline values", Err: err}
		}
	})

	return s.closeEr
}
