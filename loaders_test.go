package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cert-lv/docflow/pdk"
	yaml "gopkg.in/yaml.v3"
)

/*
 * Test definitions discovery and parsing
 */
func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"query.yaml": "name: find\nplugin: query\ntimeout: 30s\nproperties:\n  Collection: events\n  Batch Size: \"10\"\n",
		"put.yaml.example": "name: store\nplugin: put\n",
		"notes.txt":        "",
	}

	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
		if err != nil {
			t.Fatalf("Can't write '%s': %s", name, err.Error())
		}
	}

	list, err := definitionFiles(dir)
	if err != nil {
		t.Fatalf("Can't list definitions: %s", err.Error())
	}

	if len(list) != 1 || filepath.Base(list[0]) != "query.yaml" {
		t.Fatalf("Invalid definition files: %v", list)
	}

	def := &pdk.Definition{}

	err = loadDefinition(list[0], def)
	if err != nil {
		t.Fatalf("Can't load '%s': %s", list[0], err.Error())
	}

	if def.Name != "find" || def.Plugin != "query" || def.Timeout != 30*time.Second {
		t.Errorf("Invalid definition: %+v", def)
	}

	if def.Properties["Collection"] != "events" || def.Properties["Batch Size"] != "10" {
		t.Errorf("Invalid properties: %v", def.Properties)
	}

	if _, err := definitionFiles(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("Missing directory accepted")
	}
}

func TestDefaultTimeout(t *testing.T) {
	if d := defaultTimeout(0); d != time.Minute {
		t.Errorf("Invalid default timeout: %s", d)
	}

	if d := defaultTimeout(5 * time.Second); d != 5*time.Second {
		t.Errorf("Given timeout is not kept: %s", d)
	}
}

/*
 * Test mandatory sections and defaults
 */
func TestConfigValidate(t *testing.T) {
	tables := []struct {
		yaml  string
		valid bool
	}{
		{"server:\n  port: \"8443\"\nlog:\n  level: 1\n", true},
		{"log:\n  level: 1\n", false},
		{"server:\n  port: \"8443\"\n", false},
	}

	for _, table := range tables {
		c := &Config{}

		err := yaml.Unmarshal([]byte(table.yaml), c)
		if err != nil {
			t.Fatalf("Can't unmarshal '%s': %s", table.yaml, err.Error())
		}

		err = c.validate()
		if table.valid && err != nil {
			t.Errorf("Valid config rejected '%s': %s", table.yaml, err.Error())
		}

		if !table.valid && err == nil {
			t.Errorf("Invalid config accepted: '%s'", table.yaml)
		}

		if err == nil && (c.Definitions != "definitions" || c.Plugins != "plugins" || c.API.MaxRecords != 10000 || c.API.MaxBodySize != 32<<20) {
			t.Errorf("Defaults are not set: %+v", c)
		}
	}
}
