package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings are the application options, separate from the quote session
type Settings struct {
	Log      LogSettings     `mapstructure:"log"`
	Web      WebSettings     `mapstructure:"web"`
	Export   ExportSettings  `mapstructure:"export"`
	Report   ReportSettings  `mapstructure:"report"`
	Profiles ProfileSettings `mapstructure:"profiles"`
	Redis    RedisSettings   `mapstructure:"redis"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type WebSettings struct {
	Addr string `mapstructure:"addr"`
}

type ExportSettings struct {
	Dir string `mapstructure:"dir"`
}

type ReportSettings struct {
	Lang     string `mapstructure:"lang"`      // CN or EN
	Currency string `mapstructure:"currency"`  // Symbol printed before amounts
	FontFile string `mapstructure:"font_file"` // UTF-8 TrueType font for Chinese text in PDFs
}

type ProfileSettings struct {
	Backend string `mapstructure:"backend"` // "file" or "redis"
	File    string `mapstructure:"file"`
	Key     string `mapstructure:"key"`
}

type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadSettings reads settings from an optional YAML file, a .env file and
// INSUREPRO_* environment variables, in increasing priority.
func LoadSettings(filename string) (*Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	setSettingDefaults(v)

	v.SetEnvPrefix("INSUREPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read settings %s: %w", filename, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

func setSettingDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("web.addr", "localhost:0")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("report.lang", "CN")
	v.SetDefault("report.currency", DefaultCurrency)
	v.SetDefault("report.font_file", "")
	v.SetDefault("profiles.backend", "file")
	v.SetDefault("profiles.file", "insurepro_profiles.json")
	v.SetDefault("profiles.key", ProfilesRecordName)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// DefaultSettings returns the built-in defaults without reading files or the environment
func DefaultSettings() *Settings {
	v := viper.New()
	setSettingDefaults(v)
	var s Settings
	_ = v.Unmarshal(&s)
	return &s
}

func (s *Settings) validate() error {
	switch s.Profiles.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("profiles.backend must be file or redis (got %q)", s.Profiles.Backend)
	}
	switch strings.ToUpper(s.Report.Lang) {
	case "CN", "EN":
	default:
		return fmt.Errorf("report.lang must be CN or EN (got %q)", s.Report.Lang)
	}
	return nil
}

// ComparisonOptions returns report options from the settings
func (s *Settings) ComparisonOptions() ComparisonOptions {
	return ComparisonOptions{
		Lang:     ParseLang(s.Report.Lang),
		Currency: s.Report.Currency,
	}
}
