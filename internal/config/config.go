// Package config is used to configure the application settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config - application configuration structure.
type Config struct {
	// ConfigFile: path to the CSV file with redirect rules.
	ConfigFile string
	// BindAddr: address the server binds to.
	BindAddr string
	// Port: TCP port the server listens on.
	Port int
	// Modern: answer with 307/308 instead of 302/301.
	Modern bool
	// Silent: disable the per-request access log.
	Silent bool
	// StaticDir: directory served for paths without a rule; empty disables it.
	StaticDir string
	// SettingsFile: optional JSON or YAML file with the settings above.
	SettingsFile string
	// Validate: probe every destination and exit.
	Validate bool
	// Check: check configuration syntax and exit.
	Check bool
	// Concurrency: number of validator workers.
	Concurrency int
	// ProbeTimeout: deadline of one validator probe.
	ProbeTimeout time.Duration
	// ValidateTimeout: deadline of the whole validation run, zero means none.
	ValidateTimeout time.Duration
	// ReadHeaderTimeout: http.Server ReadHeaderTimeout.
	ReadHeaderTimeout time.Duration
	// ShutdownTimeout: grace period for in-flight requests on shutdown.
	ShutdownTimeout time.Duration
}

// settings is the layout of the settings file. Durations are strings such as "10s".
type settings struct {
	ConfigFile      *string `json:"config" yaml:"config"`
	BindAddr        *string `json:"bind_addr" yaml:"bind_addr"`
	Port            *int    `json:"port" yaml:"port"`
	Modern          *bool   `json:"modern" yaml:"modern"`
	Silent          *bool   `json:"silent" yaml:"silent"`
	StaticDir       *string `json:"static_dir" yaml:"static_dir"`
	Concurrency     *int    `json:"concurrency" yaml:"concurrency"`
	ProbeTimeout    *string `json:"probe_timeout" yaml:"probe_timeout"`
	ValidateTimeout *string `json:"validate_timeout" yaml:"validate_timeout"`
}

// Environment variables recognised by Init.
const (
	EnvConfigFile = "DSLF_CONFIG"
	EnvBindAddr   = "DSLF_BIND_ADDR"
	EnvPort       = "DSLF_PORT"
	EnvModern     = "DSLF_MODERN"
	EnvSilent     = "DSLF_SILENT"
	EnvStaticDir  = "DSLF_STATIC_DIR"
)

// NewConfig creates and returns a new instance of the Config structure with predefined values.
func NewConfig() *Config {
	return &Config{
		ConfigFile:        "redirects.csv",
		BindAddr:          "0.0.0.0",
		Port:              3000,
		Concurrency:       10,
		ProbeTimeout:      10 * time.Second,
		ReadHeaderTimeout: 20 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, strconv.Itoa(c.Port))
}

// ErrReadConfig - error reading settings file.
var ErrReadConfig = errors.New("reading settings file")

// ErrParseConfig - error parsing settings file.
var ErrParseConfig = errors.New("parse settings file")

// ErrInvalidValue - a setting has a value that cannot be used.
var ErrInvalidValue = errors.New("invalid setting")

// RegisterFlags declares the command-line flags on fs with the defaults of c.
func RegisterFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringP("config", "c", c.ConfigFile, "path to the CSV file containing redirect rules (env "+EnvConfigFile+")")
	fs.StringP("bind", "b", c.BindAddr, "bind address (env "+EnvBindAddr+")")
	fs.IntP("port", "p", c.Port, "port to listen on (env "+EnvPort+")")
	fs.BoolP("modern", "m", c.Modern, "use 307/308 instead of 302/301 (env "+EnvModern+")")
	fs.BoolP("silent", "s", c.Silent, "disable request logging (env "+EnvSilent+")")
	fs.BoolP("validate", "v", false, "validate all destination URLs and exit")
	fs.BoolP("check", "k", false, "check configuration file syntax and exit")
	fs.String("static-dir", c.StaticDir, "directory served for paths without a rule (env "+EnvStaticDir+")")
	fs.Int("concurrency", c.Concurrency, "number of concurrent destination probes")
	fs.Duration("validate-timeout", c.ValidateTimeout, "deadline of the whole validation run, 0 for none")
	registerClientFlags(fs, c)
}

// RegisterImportFlags declares the flags of the import command: the settings file and the HTTP client timeout.
func RegisterImportFlags(fs *pflag.FlagSet, c *Config) {
	registerClientFlags(fs, c)
}

func registerClientFlags(fs *pflag.FlagSet, c *Config) {
	fs.String("settings", c.SettingsFile, "JSON or YAML settings file")
	fs.Duration("probe-timeout", c.ProbeTimeout, "deadline of a single outbound HTTP request")
}

// Init applies the settings file, environment variables and changed flags to c, in that order.
func Init(c *Config, fs *pflag.FlagSet) error {
	if fs != nil && fs.Changed("settings") {
		c.SettingsFile, _ = fs.GetString("settings")
	}
	if c.SettingsFile != "" {
		if err := loadSettings(c, c.SettingsFile); err != nil {
			return err
		}
	}

	if err := applyEnv(c); err != nil {
		return err
	}

	if fs != nil {
		if err := applyFlags(c, fs); err != nil {
			return err
		}
	}

	return c.validate()
}

func loadSettings(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrReadConfig, path, err)
	}

	var s settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrParseConfig, path, err)
	}

	setString(&c.ConfigFile, s.ConfigFile)
	setString(&c.BindAddr, s.BindAddr)
	setString(&c.StaticDir, s.StaticDir)
	if s.Port != nil {
		c.Port = *s.Port
	}
	if s.Modern != nil {
		c.Modern = *s.Modern
	}
	if s.Silent != nil {
		c.Silent = *s.Silent
	}
	if s.Concurrency != nil {
		c.Concurrency = *s.Concurrency
	}
	if err := setDuration(&c.ProbeTimeout, "probe_timeout", s.ProbeTimeout); err != nil {
		return err
	}
	return setDuration(&c.ValidateTimeout, "validate_timeout", s.ValidateTimeout)
}

func applyEnv(c *Config) error {
	if val, exist := os.LookupEnv(EnvConfigFile); exist {
		c.ConfigFile = val
	}
	if val, exist := os.LookupEnv(EnvBindAddr); exist {
		c.BindAddr = val
	}
	if val, exist := os.LookupEnv(EnvStaticDir); exist {
		c.StaticDir = val
	}
	if val, exist := os.LookupEnv(EnvPort); exist {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvPort, val)
		}
		c.Port = port
	}
	if val, exist := os.LookupEnv(EnvModern); exist {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvModern, val)
		}
		c.Modern = b
	}
	if val, exist := os.LookupEnv(EnvSilent); exist {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvSilent, val)
		}
		c.Silent = b
	}
	return nil
}

// applyFlags overrides c with the flags the user actually set.
func applyFlags(c *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "config":
			c.ConfigFile, err = fs.GetString(f.Name)
		case "bind":
			c.BindAddr, err = fs.GetString(f.Name)
		case "port":
			c.Port, err = fs.GetInt(f.Name)
		case "modern":
			c.Modern, err = fs.GetBool(f.Name)
		case "silent":
			c.Silent, err = fs.GetBool(f.Name)
		case "validate":
			c.Validate, err = fs.GetBool(f.Name)
		case "check":
			c.Check, err = fs.GetBool(f.Name)
		case "static-dir":
			c.StaticDir, err = fs.GetString(f.Name)
		case "concurrency":
			c.Concurrency, err = fs.GetInt(f.Name)
		case "probe-timeout":
			c.ProbeTimeout, err = fs.GetDuration(f.Name)
		case "validate-timeout":
			c.ValidateTimeout, err = fs.GetDuration(f.Name)
		}
	})
	return err
}

func (c *Config) validate() error {
	if c.ConfigFile == "" {
		return fmt.Errorf("%w: empty config path", ErrInvalidValue)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidValue, c.Port)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidValue, c.Concurrency)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe timeout must be positive, got %s", ErrInvalidValue, c.ProbeTimeout)
	}
	if c.ValidateTimeout < 0 {
		return fmt.Errorf("%w: negative validate timeout %s", ErrInvalidValue, c.ValidateTimeout)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, name string, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, *v)
	}
	*dst = d
	return nil
}
