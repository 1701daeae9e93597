package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type (
	StorageConfig struct {
		Driver string
		Path   string // json file or sqlite database
		DSN    string // postgres connection string
	}

	Config struct {
		Env     string
		AppName string
		Build   string
		Debug   bool
		Seed    bool

		Storage    StorageConfig
		RosterPath string
		LogFile    string // log entries are appended here instead of stderr

		RollbarToken     string
		SendgridAPIKey   string
		defaultFromEmail string
	}
)

// NewConfig reads the configuration for the current ENV (DEV by default).
// An optional dotenv file is loaded first; `dotEnvPath` overrides the default config/.env.<env> location.
func NewConfig(dotEnvPath ...string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Rollbook")
	v.SetDefault("build", "dev")
	v.SetDefault("seed", true)
	v.SetDefault("storage.driver", DriverJSON)
	v.SetDefault("storage.path", "data.json")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("roster.path", "students.csv")
	v.SetDefault("log.file", "")
	v.SetDefault("rollbar.token", "")
	v.SetDefault("sendgrid.apiKey", "")
	v.SetDefault("defaultFromEmail", "Rollbook <noreply@localhost>")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("seed", false)
	}

	// load .env if it exists (ignore if it does not)
	path := filepath.Join("config", ".env."+strings.ToLower(env))
	if len(dotEnvPath) > 0 && dotEnvPath[0] != "" {
		path = dotEnvPath[0]
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	// DEV_STORAGE_DRIVER, PROD_ROLLBAR_TOKEN, etc..
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:     env,
		AppName: v.GetString("appName"),
		Build:   v.GetString("build"),
		Debug:   v.GetBool("debug"),
		Seed:    v.GetBool("seed"),
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("storage.driver")),
			Path:   v.GetString("storage.path"),
			DSN:    v.GetString("storage.dsn"),
		},
		RosterPath:       v.GetString("roster.path"),
		LogFile:          v.GetString("log.file"),
		RollbarToken:     v.GetString("rollbar.token"),
		SendgridAPIKey:   v.GetString("sendgrid.apiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
	switch conf.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	return conf, nil
}

// DefaultFromEmail parses the configured sender address, falling back to noreply@localhost.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (c *Config) IsTest() bool { return c.Env == "TEST" }
