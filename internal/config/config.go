// Package config resolves process configuration from (in increasing
// precedence) built-in defaults, an optional TOML file, and CLI flags.
//
// Generalized from concurrent/seckill/conf.go, which decoded a TOML file
// into a package-level global with LoadConfig/Conf. This version threads
// a *Config value through instead, layers flags on top of the file the way
// tools/l4/main.go and network/http/main.go's flag.FlagSet usage already
// establishes as this codebase's CLI convention, and returns defaults when
// no file is given instead of requiring one.
package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"

	"proxylab/internal/cache"
)

// Config holds every value the proxy needs at startup.
type Config struct {
	Port       string `toml:"port"`
	CacheSize  int    `toml:"cache_size"`
	ObjectSize int    `toml:"object_size"`
	LogLevel   string `toml:"log_level"`
}

func defaults() Config {
	return Config{
		CacheSize:  cache.MaxCacheSize,
		ObjectSize: cache.MaxObjectSize,
		LogLevel:   "info",
	}
}

// Load parses args (typically os.Args[1:]) into a Config. The listen port
// is the sole required positional argument, matching "proxy <port>";
// -cache-size, -object-size, and -log-level override either the
// compiled-in defaults or whatever -config's TOML file set.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("proxy", flag.ContinueOnError)

	configFile := fs.String("config", "", "optional TOML config file")
	cacheSize := fs.Int("cache-size", 0, "cache byte budget (default 1MiB)")
	objectSize := fs.Int("object-size", 0, "max cached object size in bytes (default 100KiB)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error, fatal")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := defaults()

	if *configFile != "" {
		if _, err := toml.DecodeFile(*configFile, &cfg); err != nil {
			return nil, fmt.Errorf("config: cannot read %s: %w", *configFile, err)
		}
	}

	if fs.NArg() != 1 {
		return nil, fmt.Errorf("usage: proxy [-config file] [-cache-size n] [-object-size n] [-log-level level] <port>")
	}
	cfg.Port = fs.Arg(0)

	if *cacheSize != 0 {
		cfg.CacheSize = *cacheSize
	}
	if *objectSize != 0 {
		cfg.ObjectSize = *objectSize
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	return &cfg, nil
}
