// Package config loads the emulator's YAML configuration file.
//
//	rom: roms/tetris.gb.zip
//	boot: boot/dmg_boot.bin
//	log_level: debug
//	trace: false
//	breakpoints: ["0150", "0x0200"]
//	frontend: web
//	listen: localhost:8090
//	script: scripts/run.lua
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"gopkg.in/yaml.v3"
)

// Frontends are the values accepted for Config.Frontend. "none"
// runs the emulator until it stops on its own.
var Frontends = []string{"repl", "web", "script", "none"}

// Config holds the options of a run. Command line flags take
// precedence over the values loaded from a file.
type Config struct {
	ROM         string   `yaml:"rom"`
	Boot        string   `yaml:"boot"`
	LogLevel    string   `yaml:"log_level"`
	Trace       bool     `yaml:"trace"`
	Breakpoints []string `yaml:"breakpoints"`
	Frontend    string   `yaml:"frontend"`
	Listen      string   `yaml:"listen"`
	Script      string   `yaml:"script"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Frontend: "repl",
	}
}

// Load reads and validates the configuration file at path. Values
// missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.ROM == "" {
		result = multierror.Append(result, fmt.Errorf("config: rom is required"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("config: log_level: %w", err))
	}
	if !validFrontend(c.Frontend) {
		result = multierror.Append(result, fmt.Errorf("config: unknown frontend %q, expected one of %v", c.Frontend, Frontends))
	}
	if c.Frontend == "script" && c.Script == "" {
		result = multierror.Append(result, fmt.Errorf("config: the script frontend requires a script"))
	}
	for _, bp := range c.Breakpoints {
		if _, err := emulator.ParseAddress(bp); err != nil {
			result = multierror.Append(result, fmt.Errorf("config: breakpoint: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// BreakpointAddresses returns the parsed breakpoints.
func (c *Config) BreakpointAddresses() ([]uint16, error) {
	addrs := make([]uint16, 0, len(c.Breakpoints))
	for _, bp := range c.Breakpoints {
		addr, err := emulator.ParseAddress(bp)
		if err != nil {
			return nil, fmt.Errorf("config: breakpoint: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func validFrontend(name string) bool {
	for _, f := range Frontends {
		if f == name {
			return true
		}
	}
	return false
}
