package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the supplylens runtime configuration.
type Config struct {
	DataFile     string   `mapstructure:"data_file" yaml:"data_file"`
	SchemaFile   string   `mapstructure:"schema_file" yaml:"schema_file"`
	ListenAddr   string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CacheEnabled bool     `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	TopN         int      `mapstructure:"top_n" yaml:"top_n"`
	OutputFormat string   `mapstructure:"output_format" yaml:"output_format"`
	Widgets      []string `mapstructure:"widgets" yaml:"widgets"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DataFile:     "supply_chain_data.csv",
		ListenAddr:   ":8080",
		CacheEnabled: true,
		OutputFormat: "pretty",
		Widgets:      []string{},
	}
}

// Keys lists the settable config keys in display order.
var Keys = []string{"data_file", "schema_file", "listen_addr", "cache_enabled", "top_n", "output_format", "widgets"}

// Set parses val and assigns it to the field named by key.
// widgets takes a comma-separated list; an empty value clears it.
func Set(c *Config, key, val string) error {
	switch key {
	case "data_file":
		c.DataFile = val
	case "schema_file":
		c.SchemaFile = val
	case "listen_addr":
		c.ListenAddr = val
	case "cache_enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for cache_enabled: %v", val)
		}
		c.CacheEnabled = b
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for top_n: %v", val)
		}
		c.TopN = i
	case "output_format":
		switch val {
		case "json", "pretty", "csv":
			c.OutputFormat = val
		default:
			return fmt.Errorf("invalid output_format: %s (use json|pretty|csv)", val)
		}
	case "widgets":
		c.Widgets = []string{}
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Widgets = append(c.Widgets, name)
			}
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Save writes c to cfgFile, or to ~/.supplylens/supplylens.yaml when empty.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "supplylens.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load reads configuration from defaults, an optional config file and
// SUPPLYLENS_* environment variables.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SUPPLYLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("schema_file", d.SchemaFile)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("cache_enabled", d.CacheEnabled)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("widgets", d.Widgets)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		if dir, err := defaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("supplylens")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.TopN < 0 {
		return nil, fmt.Errorf("top_n must be >= 0, got %d", c.TopN)
	}
	switch c.OutputFormat {
	case "json", "pretty", "csv":
	default:
		return nil, fmt.Errorf("unsupported output_format %q (use json|pretty|csv)", c.OutputFormat)
	}
	return &c, nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".supplylens"), nil
}
