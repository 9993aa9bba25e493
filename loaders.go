package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

/*
 * Return content of the requested file by its path
 */
func loadFileIntoString(path string) (string, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(file), nil
}

/*
 * Load service's version
 */
func loadVersion() error {
	path := "VERSION"
	var err error

	// Try to get from the environment variable first
	if os.Getenv(path) != "" {
		version = os.Getenv(path)
		return nil
	}

	version, err = loadFileIntoString(path)
	if err != nil {
		return err
	}

	version = strings.TrimSpace(version)
	return nil
}

/*
 * List YAML definition files of the given directory
 */
func definitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Can't read directory '%s': %s", dir, err.Error())
	}

	files := []string{}

	for _, entry := range entries {
		// Skip not YAML files
		name := entry.Name()
		if entry.IsDir() || len(name) <= 5 || name[len(name)-5:] != ".yaml" {
			continue
		}

		files = append(files, filepath.Join(dir, name))
	}

	return files, nil
}

/*
 * Unmarshal a definition file into the given structure
 */
func loadDefinition(filename string, definition interface{}) error {
	buffer, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("Can't read: %s", err.Error())
	}

	err = yaml.Unmarshal(buffer, definition)
	if err != nil {
		return fmt.Errorf("Can't unmarshall: %s", err.Error())
	}

	return nil
}

/*
 * Timeout to use when definition doesn't set one
 */
func defaultTimeout(timeout time.Duration) time.Duration {
	if timeout == 0*time.Second {
		return 60 * time.Second
	}

	return timeout
}
