package local

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/danmuck/modellerbridge/internal/params"
)

var ErrInvalidManifest = errors.New("local: invalid tool manifest")

var manifestSuffixes = []string{".tool.toml", ".tool.yaml", ".tool.yml"}

// Manifest declares one tool of the toolbox.
type Manifest struct {
	Namespace   string          `toml:"namespace" yaml:"namespace"`
	Description string          `toml:"description" yaml:"description"`
	Command     string          `toml:"command" yaml:"command"`
	Args        []string        `toml:"args" yaml:"args"`
	Script      string          `toml:"script" yaml:"script"`
	Parameters  []ParameterDecl `toml:"parameters" yaml:"parameters"`

	// Path is the manifest file the tool was loaded from.
	Path string `toml:"-" yaml:"-"`
}

type ParameterDecl struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
}

func isManifestFile(name string) bool {
	for _, suffix := range manifestSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// LoadManifest decodes a TOML or YAML manifest chosen by file suffix.
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("local: read manifest %s: %w", path, err)
	}

	var m Manifest
	if strings.HasSuffix(path, ".tool.toml") {
		err = toml.Unmarshal(raw, &m)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&m)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	m.Path = path
	if err := ValidateManifest(m); err != nil {
		return Manifest{}, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// ValidateManifest checks required fields, the namespace format and that
// every parameter names a type. Whether the type is supported is decided
// when a run binds parameters.
func ValidateManifest(m Manifest) error {
	if strings.TrimSpace(m.Namespace) == "" || strings.TrimSpace(m.Command) == "" || strings.TrimSpace(m.Script) == "" {
		return fmt.Errorf("%w: namespace, command, and script are required", ErrInvalidManifest)
	}
	if !isValidNamespace(m.Namespace) {
		return fmt.Errorf("%w: invalid namespace format %q", ErrInvalidManifest, m.Namespace)
	}
	seen := make(map[string]struct{}, len(m.Parameters))
	for _, p := range m.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: parameter without a name", ErrInvalidManifest)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: parameter %q declared twice", ErrInvalidManifest, p.Name)
		}
		seen[p.Name] = struct{}{}
		if strings.TrimSpace(p.Type) == "" {
			return fmt.Errorf("%w: parameter %q has no type", ErrInvalidManifest, p.Name)
		}
	}
	return nil
}

// ScriptPath resolves the script against the manifest directory.
func (m Manifest) ScriptPath() string {
	if filepath.IsAbs(m.Script) {
		return m.Script
	}
	return filepath.Join(filepath.Dir(m.Path), m.Script)
}

func (m Manifest) Specs() []params.Spec {
	out := make([]params.Spec, len(m.Parameters))
	for i, p := range m.Parameters {
		out[i] = params.Spec{Name: p.Name, Type: p.Type}
	}
	return out
}

// isValidNamespace accepts dotted identifiers: letters, digits and single
// '.', '-' or '_' separators that neither start nor end the name.
func isValidNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(ns); i++ {
		c := ns[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLetter || isDigit || isSep) {
			return false
		}
		if (i == 0 || i == len(ns)-1) && isSep {
			return false
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
