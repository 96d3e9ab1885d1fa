package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

var ErrToolExists = errors.New("local: tool namespace already registered")

// Registry maps tool namespaces to their manifests.
type Registry struct {
	items map[string]Manifest
	// problems holds manifests that could not be registered.
	problems []Problem
}

// Problem is a toolbox entry that failed to load or register.
type Problem struct {
	Path string
	Err  error
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Manifest)}
}

func (r *Registry) Register(m Manifest) error {
	if err := ValidateManifest(m); err != nil {
		return err
	}
	if existing, ok := r.items[m.Namespace]; ok {
		return fmt.Errorf("%w: %s (first declared in %s)", ErrToolExists, m.Namespace, existing.Path)
	}
	r.items[m.Namespace] = m
	return nil
}

func (r *Registry) Resolve(namespace string) (Manifest, bool) {
	m, ok := r.items[namespace]
	return m, ok
}

// Namespaces returns registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	out := make([]string, 0, len(r.items))
	for ns := range r.items {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Manifests returns registered manifests ordered by namespace.
func (r *Registry) Manifests() []Manifest {
	out := make([]Manifest, 0, len(r.items))
	for _, ns := range r.Namespaces() {
		out = append(out, r.items[ns])
	}
	return out
}

func (r *Registry) Problems() []Problem {
	return append([]Problem(nil), r.problems...)
}

// ScanToolbox walks root for manifests. Broken manifests are recorded as
// problems and skipped; a missing root yields an empty registry.
func ScanToolbox(root string) (*Registry, error) {
	r := NewRegistry()
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isManifestFile(d.Name()) {
			return nil
		}
		m, err := LoadManifest(path)
		if err == nil {
			err = r.Register(m)
		}
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("local.ScanToolbox skipped manifest")
			r.problems = append(r.problems, Problem{Path: path, Err: err})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local: scan toolbox %s: %w", root, err)
	}
	return r, nil
}
