// Package manifest builds the package.json written next to extracted
// modules.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the written descriptor.
const FileName = "package.json"

// TestScript is the placeholder test command npm init writes.
const TestScript = `echo "Error: no test specified" && exit 1`

// Package is the subset of package.json unbrowserify produces. Field order
// is the serialized order.
type Package struct {
	Name            string            `json:"name"`
	Main            string            `json:"main"`
	Browser         string            `json:"browser"`
	Scripts         map[string]string `json:"scripts"`
	DevDependencies map[string]string `json:"devDependencies"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
}

// New builds a descriptor. versions maps each detected dependency to its
// latest version; each is declared with a caret range.
func New(name, mainPath, browserPath string, versions map[string]string) *Package {
	p := &Package{
		Name:            name,
		Main:            mainPath,
		Browser:         browserPath,
		Scripts:         map[string]string{"test": TestScript},
		DevDependencies: map[string]string{"unbrowserify": "*"},
	}
	if len(versions) > 0 {
		p.Dependencies = make(map[string]string, len(versions))
		for pkg, v := range versions {
			p.Dependencies[pkg] = "^" + v
		}
	}
	return p
}

// Marshal encodes p with two-space indentation and a trailing newline.
// Map keys are sorted.
func (p *Package) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes p to dir/package.json and returns the path written.
func Write(dir string, p *Package) (string, error) {
	data, err := p.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", FileName, err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
