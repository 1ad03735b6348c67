package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration, resolved from flags,
// environment variables (LIBRESHELF_*), an optional config file and
// defaults, in that order of precedence.
type Config struct {
	DBPath          string `mapstructure:"db_path"`
	Addr            string `mapstructure:"addr"`
	LogFile         string `mapstructure:"log_file"`
	AdminUser       string `mapstructure:"admin_user"`
	DefaultLoanDays int    `mapstructure:"default_loan_days"`
}

// SetDefaults registers the configuration defaults with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "libreshelf.sqlite3")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_file", "")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("default_loan_days", 14)
}

// Load reads configuration into a Config. If cfgFile is non-empty it
// must exist; otherwise a libreshelf.yaml in the working directory is
// used when present.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("LIBRESHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("libreshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}
