package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// config is the optional .nandkit.yaml project file: where compiled
// chips and test scripts live. Every field has a sane default so the
// file itself is optional.
type config struct {
	ChipDir string `yaml:"chip_dir"`
	TestDir string `yaml:"test_dir"`
}

func defaultConfig() *config {
	return &config{ChipDir: ".", TestDir: "."}
}

// loadConfig reads .nandkit.yaml from the current directory if present,
// overlaying any fields it sets onto the defaults. A missing file is not
// an error -- only a malformed one is.
func loadConfig() (*config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(".nandkit.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
