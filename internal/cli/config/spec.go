package config

import (
	"fmt"
	"net"
	"strconv"
)

// Default connection settings.
const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 6379
	DefaultOutput = "text"
)

// CLIConfig is the configuration for rudis-cli.
type CLIConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Output string `yaml:"output" json:"output"` // text, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Output: DefaultOutput,
	}
}

// Addr returns the server address as host:port.
func (c *CLIConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String renders the configuration as one key per line.
func (c *CLIConfig) String() string {
	return fmt.Sprintf("host: %s\nport: %d\noutput: %s", c.Host, c.Port, c.Output)
}
