package sim

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/ode"
)

// ConfExt is the extension a source file must carry to be picked up in
// batch mode.
const ConfExt = ".conf"

// Source is a validated simulation definition, ready to be built. Loading
// one creates nothing on disk.
type Source[U ode.Model] struct {
	Path   string
	Name   string
	Config Config[U]
}

// LoadSource reads and validates the configuration file at path. The
// simulation name is the file stem; a file with an empty stem cannot be
// loaded.
func LoadSource[U ode.Model](path string) (Source[U], error) {
	cfg, err := fsutil.ReadJSON[Config[U]](path)
	if err != nil {
		return Source[U]{}, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Source[U]{}, fmt.Errorf("config %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" {
		return Source[U]{}, fmt.Errorf("config %s: cannot derive a simulation name", path)
	}

	return Source[U]{Path: path, Name: name, Config: cfg}, nil
}

// CollectSources loads every .conf file directly under dir, in directory
// listing order, as a single collection. All sources are validated before
// any simulation is built; the first bad one fails the whole batch.
func CollectSources[U ode.Model](dir string) ([]Source[U], error) {
	paths, err := fsutil.CollectFiles(dir)
	if err != nil {
		return nil, err
	}

	sources := make([]Source[U], 0, len(paths))
	for _, path := range paths {
		if filepath.Ext(path) != ConfExt {
			continue
		}
		src, err := LoadSource[U](path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
