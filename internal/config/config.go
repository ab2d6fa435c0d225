package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

// Package is one unit of extraction work: which package to extract, where
// its rustdoc JSON comes from, and the selection filter.
type Package struct {
	Name       string           `mapstructure:"name"`
	Version    string           `mapstructure:"version"`
	JSONPath   string           `mapstructure:"json_path"`
	ModulePath string           `mapstructure:"module_path"`
	Kind       rustdoc.ItemKind `mapstructure:"kind"`
}

type Config struct {
	OutputPath string    `mapstructure:"output_path"`
	Packages   []Package `mapstructure:"packages"`
}

// cacheBase returns the base cache directory for rustdown.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/rustdown as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "rustdown")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "rustdown")
	}
	return filepath.Join(os.TempDir(), "rustdown")
}

// DBPath returns the path to the page-index database file.
func DBPath() string {
	return filepath.Join(cacheBase(), "index.db")
}

// JSONCacheDir returns the path to the rustdoc JSON cache directory.
func JSONCacheDir() string {
	return filepath.Join(cacheBase(), "json")
}

// PageStoreDir returns the path to the content-addressed page archive.
func PageStoreDir() string {
	return filepath.Join(cacheBase(), "pages")
}

func initializeViper(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("rustdown")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "rustdown"))
		} else if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rustdown"))
		}
	}

	viper.SetDefault("output_path", "docs")

	viper.SetEnvPrefix("RUSTDOWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// stringToItemKindHookFunc validates item-kind strings while decoding, so a
// typo in the selection config fails at startup rather than mid-extraction.
func stringToItemKindHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(rustdoc.ItemKind("")) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return rustdoc.ParseItemKind(data.(string))
		}
		return data, nil
	}
}

// Load reads and validates the extraction configuration. file may be empty,
// in which case the usual config search paths apply.
func Load(file string) (*Config, error) {
	if err := initializeViper(file); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToItemKindHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if len(c.Packages) == 0 {
		return fmt.Errorf("at least one [[packages]] entry is required")
	}
	for i := range c.Packages {
		pkg := &c.Packages[i]
		if pkg.Name == "" {
			return fmt.Errorf("packages[%d]: name must not be empty", i)
		}
		if pkg.Kind == "" {
			pkg.Kind = rustdoc.KindFunction
		}
	}
	return nil
}
