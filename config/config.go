// Package config loads the HTTP transport configuration from YAML or
// JSON files.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// RateLimit configures the built-in rate-limit interceptor. Zero RPS
// disables it.
type RateLimit struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Etcd configures endpoint announcement. Empty endpoints disable it.
type Etcd struct {
	Endpoints []string `mapstructure:"endpoints"`
	TTL       int64    `mapstructure:"ttl"`
}

// Config is the complete transport configuration.
type Config struct {
	// Listen is the local bind address, e.g. ":8080".
	Listen string `mapstructure:"listen"`

	// Advertise is the routable address announced to the registry.
	// Differs from Listen because ":8080" is not routable.
	Advertise string `mapstructure:"advertise"`

	// Service is the name the endpoint is announced under.
	Service string `mapstructure:"service"`

	// Path is the HTTP request path serving XML-RPC calls.
	Path string `mapstructure:"path"`

	// Flavor selects the response encoding: "xml" or "json".
	Flavor string `mapstructure:"flavor"`

	// Extensions enables the i8 protocol extension; without it 64-bit
	// integers truncate to 32 bits on the wire.
	Extensions bool `mapstructure:"extensions"`

	RateLimit RateLimit `mapstructure:"rate_limit"`
	Etcd      Etcd      `mapstructure:"etcd"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Listen:  ":8080",
		Service: "xmlrpc",
		Path:    "/xmlrpc",
		Flavor:  "xml",
		Etcd:    Etcd{TTL: 10},
	}
}

// Load reads a YAML or JSON configuration file, with Default values for
// anything the file omits. The type is inferred from the extension.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}

	def := Default()
	v.SetDefault("listen", def.Listen)
	v.SetDefault("service", def.Service)
	v.SetDefault("path", def.Path)
	v.SetDefault("flavor", def.Flavor)
	v.SetDefault("etcd.ttl", def.Etcd.TTL)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
