package config

import (
	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/logger"
	"github.com/kbukum/httpkit/validation"
)

// ServiceConfig holds the fields every httpkit program shares. Programs
// embed it next to their own sections.
//
//	type FileConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    HTTPClient httpclient.Config `yaml:"httpclient" mapstructure:"httpclient"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// Environments lists the accepted values of ServiceConfig.Environment.
var Environments = []string{"development", "staging", "production"}

// GetServiceConfig returns the embedded ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Embedding structs call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the shared fields and returns a CONFIGURATION_ERROR.
func (c *ServiceConfig) Validate() error {
	err := validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, Environments).
		Validate()
	if err != nil {
		return errors.Configuration("invalid service config").WithCause(err)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Configuration("invalid logging config").WithCause(err)
	}
	return nil
}
