package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v3"
)

/*
 * Structure to store all the service settings.
 * Check "docflow.yaml.example" file for a detailed all fields description
 */
type Config struct {
	Server *struct {
		Host              string `yaml:"host"`
		Port              string `yaml:"port"`
		CertFile          string `yaml:"certFile"`
		KeyFile           string `yaml:"keyFile"`
		ReadTimeout       int    `yaml:"readTimeout"`
		ReadHeaderTimeout int    `yaml:"readHeaderTimeout"`
	} `yaml:"server"`

	Environment string `yaml:"environment"`
	Definitions string `yaml:"definitions"`
	Plugins     string `yaml:"plugins"`

	Log *struct {
		File       string        `yaml:"file"`
		MaxSize    int           `yaml:"maxSize"`
		MaxBackups int           `yaml:"maxBackups"`
		MaxAge     int           `yaml:"maxAge"`
		Level      zerolog.Level `yaml:"level"`
	} `yaml:"log"`

	API *APIConfig `yaml:"api"`
}

type APIConfig struct {
	// Username -> bcrypt hash of the password.
	// API is open when empty
	Users map[string]string `yaml:"users"`

	// Max amount of records in a single request
	MaxRecords int `yaml:"maxRecords"`

	// Max size of a request body in bytes
	MaxBodySize int64 `yaml:"maxBodySize"`
}

/*
 * Load configuration from a YAML file.
 *
 * Service searches for the "./docflow.yaml" file by default.
 * however, "CONFIG" environment variable can be set to use a different file
 */
func loadConfig() error {
	path := "docflow.yaml"

	if os.Getenv("CONFIG") != "" {
		path = os.Getenv("CONFIG")
	}

	buffer, err := loadFileIntoString(path)
	if err != nil {
		return fmt.Errorf("Failed to open configuration file '%s': %s", path, err.Error())
	}

	err = yaml.Unmarshal([]byte(buffer), &config)
	if err != nil {
		return fmt.Errorf("Invalid configuration YAML file '%s': %s", path, err.Error())
	}

	return config.validate()
}

/*
 * Check mandatory sections and set default values
 */
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("Configuration is empty")
	}

	if c.Server == nil {
		return fmt.Errorf("'server' section is missing")
	}

	if c.Log == nil {
		return fmt.Errorf("'log' section is missing")
	}

	if c.Definitions == "" {
		c.Definitions = "definitions"
	}

	if c.Plugins == "" {
		c.Plugins = "plugins"
	}

	if c.API == nil {
		c.API = &APIConfig{}
	}

	if c.API.MaxRecords <= 0 {
		c.API.MaxRecords = 10000
	}

	if c.API.MaxBodySize <= 0 {
		c.API.MaxBodySize = 32 << 20
	}

	return nil
}
