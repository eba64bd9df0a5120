// Package config loads fedrill settings from defaults, an optional YAML
// file, FEDRILL_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read by Load. A double underscore
// separates nesting levels: FEDRILL_SERVER__ADDR sets server.addr.
const EnvPrefix = "FEDRILL_"

// Config is the full application configuration.
type Config struct {
	// DB is the SQLite path; empty resolves to the default data directory.
	DB string `koanf:"db"`
	// Catalog is a question bank file; empty uses the embedded bank.
	Catalog string       `koanf:"catalog"`
	Quiz    QuizConfig   `koanf:"quiz"`
	Server  ServerConfig `koanf:"server"`
	Log     LogConfig    `koanf:"log"`
}

type QuizConfig struct {
	Size          int    `koanf:"size" validate:"min=1,max=500"`
	Mode          string `koanf:"mode" validate:"oneof=random adaptive"`
	HistoryWindow int    `koanf:"history_window" validate:"min=1"`
	ReviewLimit   int    `koanf:"review_limit" validate:"min=1"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	AllowOrigins    []string      `koanf:"allow_origins" validate:"dive,required"`
	// AdminToken is the bearer secret for admin routes; empty disables them.
	AdminToken      string        `koanf:"admin_token" validate:"omitempty,min=16"`
	UserCookie      string        `koanf:"user_cookie" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Mode     string `koanf:"mode" validate:"oneof=development production"`
	Level    string `koanf:"level" validate:"oneof=debug info warn error"`
	HashIDs  bool   `koanf:"hash_ids"`
	HashSalt string `koanf:"hash_salt"`
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"db":                      "",
		"catalog":                 "",
		"quiz.size":               10,
		"quiz.mode":               "adaptive",
		"quiz.history_window":     100,
		"quiz.review_limit":       20,
		"server.addr":             "127.0.0.1:8080",
		"server.allow_origins":    []string{},
		"server.admin_token":      "",
		"server.user_cookie":      "fd_uid",
		"server.shutdown_timeout": "10s",
		"log.mode":                "development",
		"log.level":               "info",
		"log.hash_ids":            true,
		"log.hash_salt":           "",
	}
}

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{
	"server.allow_origins": true,
}

// Options selects the sources for Load.
type Options struct {
	// File is an optional YAML file. A missing file is an error only when
	// set explicitly.
	File string
	// Flags is parsed command-line state; only flags named in FlagKeys
	// are read.
	Flags *pflag.FlagSet
	// FlagKeys maps flag names to config keys, e.g. "size" -> "quiz.size".
	FlagKeys map[string]string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load merges all sources and validates the result.
func Load(opts Options) (*Config, error) {
	ko := koanf.New(".")

	for k, v := range Defaults() {
		if err := ko.Set(k, v); err != nil {
			return nil, fmt.Errorf("set default %s: %w", k, err)
		}
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := ko.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.File, err)
		}
	}

	if err := ko.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil && len(opts.FlagKeys) > 0 {
		p := posflag.ProviderWithFlag(opts.Flags, ".", ko, func(f *pflag.Flag) (string, any) {
			key, ok := opts.FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := ko.Load(p, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := ko.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FEDRILL_QUIZ__HISTORY_WINDOW to quiz.history_window.
func envKey(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AdminAuthorized reports whether token matches the configured admin
// token. It is always false when no token is configured.
func (c ServerConfig) AdminAuthorized(token string) bool {
	if c.AdminToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.AdminToken)) == 1
}
