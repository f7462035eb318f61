package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaultSecretKey is only meant for local development.
const defaultSecretKey = "dev-only-4q#h2)w9&zs+!dance-course-creator$k7m@c(x1"

type (
	DatabaseConfig struct {
		Engine     string // sqlite3 | postgres
		Name       string // file path for sqlite3
		Host       string
		Port       string
		User       string
		Password   string
		DisableTLS bool
	}

	ServerConfig struct {
		Address            string
		Host               string
		CORSAllowOrigins   []string
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
		JWTExpirationDelta time.Duration
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		Database     DatabaseConfig
		Server       ServerConfig
	}
)

func (c DatabaseConfig) Address() string {
	if c.Port == "" {
		return c.Host
	}
	return c.Host + ":" + c.Port
}

// IsSQLite reports whether the configured engine is the embedded one.
func (c DatabaseConfig) IsSQLite() bool {
	return c.Engine == "sqlite3" || c.Engine == "sqlite"
}

// UsesDefaultSecret reports whether tokens are signed with the development key.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == defaultSecretKey
}

// NewConfig reads the app configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed with the ENV name, e.g. DEV_SECRETKEY or PROD_DATABASE_ENGINE.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "DanceCourseCreator")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", defaultSecretKey)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("database.engine", "sqlite3")
	conf.SetDefault("database.name", "dancecourse.db")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "")
	conf.SetDefault("database.user", "")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.corsAllowOrigins", "*")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	secretKey := conf.GetString("secretKey")
	if secretKey == "" {
		secretKey = defaultSecretKey
	}

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		SecretKey:    secretKey,
		RollbarToken: conf.GetString("rollbarToken"),
		Database: DatabaseConfig{
			Engine:     conf.GetString("database.engine"),
			Name:       conf.GetString("database.name"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetString("database.port"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),
		},
		Server: ServerConfig{
			Address:            conf.GetString("server.address"),
			Host:               conf.GetString("server.host"),
			CORSAllowOrigins:   SplitList(conf.GetString("server.corsAllowOrigins")),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:     conf.GetBool("server.disableReqLogs"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
	}
}
