package pipeline

import (
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// LoadConfig reads the configuration at path, or returns the embedded
// default when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// LoadInputs reads the configuration and module list for a run.
func LoadInputs(configPath, modulesPath string) (*config.Config, []placer.ModuleSlot, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	modules, err := placer.LoadModules(modulesPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, modules, nil
}
