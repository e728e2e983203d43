package hue

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dpatterbee/hue/src/store/guilddb"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds everything needed to start the bot.
//
// Sources, lowest precedence first: the .env file, creds.yml, the environment, flags.
type Config struct {
	Token         string        `yaml:"token" env:"DISCORD_TOKEN"`
	ExtraOwners   []string      `yaml:"extra_owners" env:"EXTRA_OWNERS" envSeparator:","`
	DataDir       string        `yaml:"data_dir" env:"HUE_DATA_DIR"`
	SettingsDB    string        `yaml:"settings_db" env:"HUE_SETTINGS_DB"`
	Prefix        string        `yaml:"prefix" env:"HUE_PREFIX"`
	LogLevel      string        `yaml:"log_level" env:"HUE_LOG_LEVEL"`
	ColorCooldown time.Duration `yaml:"color_cooldown" env:"HUE_COLOR_COOLDOWN"`
}

const (
	defaultPrefix   = "%"
	defaultCooldown = time.Second
	maxPrefixLength = 10
)

func loadConfig(args []string) (Config, error) {
	fl := flag.NewFlagSet("hue", flag.ContinueOnError)

	token := fl.String("t", "", "Discord Bot Token")
	dataDir := fl.String("d", "", "Directory holding guild data")
	logLevel := fl.String("l", "", "Log level")
	credsPath := fl.String("c", "./creds.yml", "YAML credentials file")
	envPath := fl.String("e", ".env", "dotenv file")

	if err := fl.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrapf(err, "reading %s", *envPath)
	}

	var cfg Config

	dat, err := os.ReadFile(*credsPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(dat, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", *credsPath)
		}
	case !os.IsNotExist(err):
		return Config{}, errors.Wrapf(err, "reading %s", *credsPath)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}

	if *token != "" {
		cfg.Token = *token
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if cfg.Token == "" {
		return Config{}, errors.New("No Discord token provided")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = guilddb.DefaultRoot
	}
	if cfg.SettingsDB == "" {
		cfg.SettingsDB = filepath.Join(cfg.DataDir, "settings.db")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if len(cfg.Prefix) > maxPrefixLength {
		return Config{}, errors.Errorf("prefix %q is longer than %d characters", cfg.Prefix, maxPrefixLength)
	}
	if cfg.ColorCooldown == 0 {
		cfg.ColorCooldown = defaultCooldown
	}

	return cfg, nil
}
