package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/Veraticus/pocketbook/internal/common"
)

// Viper keys.
const (
	KeyDatabasePath  = "database.path"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	KeyDisplayLocale = "display.locale"
)

// EnvPrefix prefixes every environment override, e.g. POCKETBOOK_DATABASE_PATH.
const EnvPrefix = "POCKETBOOK"

// EnvKeyReplacer maps nested keys onto environment names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Settings is the resolved runtime configuration.
type Settings struct {
	Locale       language.Tag
	DatabasePath string
	LogLevel     string
	LogFormat    string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDisplayLocale, "en")
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves Settings from v. Precedence follows viper: flags bound to
// v, then POCKETBOOK_* environment variables, then the config file, then
// defaults.
func Load(v *viper.Viper) (*Settings, error) {
	settings := &Settings{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
	}

	if settings.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	locale := v.GetString(KeyDisplayLocale)
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", common.ErrInvalidConfig, KeyDisplayLocale, locale, err)
	}
	settings.Locale = tag

	return settings, nil
}
