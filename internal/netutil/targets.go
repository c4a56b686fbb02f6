package netutil

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// targetsFile is the YAML shape of a targets file:
//
//	targets:
//	  - collector1.example.org:9993
//	  - 127.0.0.1:9994
type targetsFile struct {
	Targets []string `yaml:"targets"`
}

// LoadTargetsFile reads destinations from a YAML targets file. Entries are
// returned unparsed; callers resolve them together with any command-line
// targets.
func LoadTargetsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}
	var tf targetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}
	return tf.Targets, nil
}
