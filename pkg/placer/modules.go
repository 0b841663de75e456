package placer

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// modulesFile is the on-disk shape of a module list.
type modulesFile struct {
	Modules []ModuleSlot `yaml:"modules"`
}

// rawModule distinguishes an absent size from an explicit zero.
type rawModule struct {
	Name   string `yaml:"name"`
	X      *int   `yaml:"x"`
	Y      *int   `yaml:"y"`
	Width  *int   `yaml:"width"`
	Height *int   `yaml:"height"`
}

// ReadModules decodes a YAML module list. Width and height default to 1
// when absent.
func ReadModules(r io.Reader) ([]ModuleSlot, error) {
	var raw struct {
		Modules []rawModule `yaml:"modules"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode module list")
	}

	modules := make([]ModuleSlot, len(raw.Modules))
	for i, rm := range raw.Modules {
		m := ModuleSlot{Name: rm.Name, X: rm.X, Y: rm.Y, Width: 1, Height: 1}
		if rm.Width != nil {
			m.Width = *rm.Width
		}
		if rm.Height != nil {
			m.Height = *rm.Height
		}
		modules[i] = m
	}
	return modules, nil
}

// LoadModules reads the module list at path.
func LoadModules(path string) ([]ModuleSlot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "module list %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read module list %s", path)
	}
	return ReadModules(bytes.NewReader(data))
}

// WriteModules encodes modules in the shape ReadModules accepts. Writing
// Placement.Modules freezes a placement.
func WriteModules(w io.Writer, modules []ModuleSlot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(modulesFile{Modules: modules}); err != nil {
		return err
	}
	return enc.Close()
}

// SaveModules writes modules to path.
func SaveModules(path string, modules []ModuleSlot) error {
	var buf bytes.Buffer
	if err := WriteModules(&buf, modules); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
