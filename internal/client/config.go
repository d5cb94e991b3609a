package client

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL = "http://localhost:5001/api"

	configPathEnv = "TODONE_CLIENT_CONFIG"
	serverURLEnv  = "TODONE_SERVER_URL"
)

type Config struct {
	ServerURL string        `toml:"server_url"`
	Timeout   time.Duration `toml:"timeout"`
	// Filter is the filter the UI starts with.
	Filter string `toml:"filter"`
}

func DefaultConfig() Config {
	return Config{
		ServerURL: DefaultServerURL,
		Timeout:   DefaultTimeout,
		Filter:    FilterAll.String(),
	}
}

// LoadConfig builds the client configuration from, in increasing priority:
// defaults, the TOML config file, the environment and the command line.
//
// The config file is the -config flag, else $TODONE_CLIENT_CONFIG, else
// todone/client.toml under the user config directory if it exists.
func LoadConfig(flags *flag.FlagSet, args []string) (Config, error) {
	var (
		configPath string
		serverURL  string
		timeout    time.Duration
		filter     string
	)
	flags.StringVar(&configPath, "config", "", "path to the TOML config file")
	flags.StringVar(&serverURL, "server", DefaultServerURL, "base URL of the task API")
	flags.DurationVar(&timeout, "timeout", DefaultTimeout, "request timeout")
	flags.StringVar(&filter, "filter", FilterAll.String(), "initial filter: all, active or completed")

	err := flags.Parse(args)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	path, required := configFilePath(configPath)
	if path != "" {
		err = loadConfigFile(&cfg, path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(serverURLEnv); v != "" {
		cfg.ServerURL = v
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			cfg.ServerURL = serverURL
		case "timeout":
			cfg.Timeout = timeout
		case "filter":
			cfg.Filter = filter
		}
	})

	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configFilePath reports the config file to read and whether it must exist.
func configFilePath(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if v := os.Getenv(configPathEnv); v != "" {
		return v, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "todone", "client.toml"), false
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	_, err := ParseFilter(c.Filter)
	return err
}
