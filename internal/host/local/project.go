package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidProject = errors.New("local: invalid project")

// Project is the on-disk description of a modelling project.
type Project struct {
	Name      string     `toml:"name"`
	Toolbox   string     `toml:"toolbox"`
	Logbook   string     `toml:"logbook"`
	Databanks []Databank `toml:"databanks"`

	// Dir is the directory holding the project file.
	Dir string `toml:"-"`
}

type Databank struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// LoadProject reads a project file and resolves its relative paths against
// the file's directory.
func LoadProject(path string) (Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("local: read project %s: %w", path, err)
	}
	var p Project
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Project{}, fmt.Errorf("%w: %s: %v", ErrInvalidProject, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Project{}, fmt.Errorf("local: resolve project path: %w", err)
	}
	p.Dir = filepath.Dir(abs)
	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(p.Toolbox) == "" {
		p.Toolbox = "toolbox"
	}
	if strings.TrimSpace(p.Logbook) == "" {
		p.Logbook = filepath.Join("logbook", "logbook.db")
	}
	p.Toolbox = p.resolve(p.Toolbox)
	p.Logbook = p.resolve(p.Logbook)

	seen := make(map[string]struct{}, len(p.Databanks))
	for i, db := range p.Databanks {
		key := strings.ToLower(strings.TrimSpace(db.Name))
		if key == "" {
			return Project{}, fmt.Errorf("%w: databank %d has no name", ErrInvalidProject, i)
		}
		if _, ok := seen[key]; ok {
			return Project{}, fmt.Errorf("%w: databank %q declared twice", ErrInvalidProject, db.Name)
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(db.Path) == "" {
			db.Path = db.Name
		}
		p.Databanks[i].Path = p.resolve(db.Path)
	}
	return p, nil
}

func (p Project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Dir, path)
}

// Databank finds a data bank by case-insensitive name.
func (p Project) Databank(name string) (Databank, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, db := range p.Databanks {
		if strings.ToLower(db.Name) == want {
			return db, true
		}
	}
	return Databank{}, false
}
