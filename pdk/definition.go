/*
 * Processor and connection service definitions.
 * For YAML files in "definitions/processors" and "definitions/services" by default.
 *
 * Check "definitions/*.yaml.example" for the fields description
 */

package pdk

import (
	"time"
)

type Definition struct {
	Name       string            `yaml:"name"`
	Plugin     string            `yaml:"plugin"`
	Timeout    time.Duration     `yaml:"timeout"`
	Properties map[string]string `yaml:"properties"`
}

type ServiceDefinition struct {
	Name    string            `yaml:"name"`
	Kind    string            `yaml:"kind"`
	Timeout time.Duration     `yaml:"timeout"`
	Access  map[string]string `yaml:"access"`
}
