package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-connections/nat"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/marktlinn/kvstore/utils"
)

// Config is built once at process start and handed to constructors by value.
type Config struct {
	// Store selects the data-access backend: "mysql" or "memory".
	Store    string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// ConnectAttempts and ConnectDelay bound the startup connection retry.
	ConnectAttempts int
	ConnectDelay    time.Duration
}

type LogConfig struct {
	Level string
}

// Default mirrors the parameters the service has always shipped with.
func Default() Config {
	return Config{
		Store: "mysql",
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Database: DatabaseConfig{
			Host:            "mysql-service",
			Port:            3306,
			User:            "dbuser",
			Password:        "dbpassword",
			Name:            "keyvaluedb",
			ConnectAttempts: utils.DefaultRetryPolicy.MaxAttempts,
			ConnectDelay:    utils.DefaultRetryPolicy.Delay,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the optional TOML file at path, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	port := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok {
			return nil
		}
		p, err := nat.ParsePort(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = p
		return nil
	}

	str("STORE_BACKEND", &cfg.Store)
	str("HTTP_HOST", &cfg.HTTP.Host)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	str("LOG_LEVEL", &cfg.Log.Level)

	if err := port("HTTP_PORT", &cfg.HTTP.Port); err != nil {
		return err
	}
	if err := port("DB_PORT", &cfg.Database.Port); err != nil {
		return err
	}

	if v, ok := lookup("DB_CONNECT_ATTEMPTS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("DB_CONNECT_ATTEMPTS: %w", err)
		}
		cfg.Database.ConnectAttempts = n
	}
	if v, ok := lookup("DB_CONNECT_DELAY"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("DB_CONNECT_DELAY: %w", err)
		}
		cfg.Database.ConnectDelay = d
	}
	return nil
}

func (c Config) validate() error {
	switch c.Store {
	case "mysql", "memory":
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store)
	}
	for name, p := range map[string]int{"http port": c.HTTP.Port, "database port": c.Database.Port} {
		if _, err := nat.ParsePort(strconv.Itoa(p)); err != nil || p == 0 {
			return fmt.Errorf("invalid %s %d", name, p)
		}
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("connect attempts must be at least 1, got %d", c.Database.ConnectAttempts)
	}
	if c.Database.ConnectDelay < 0 {
		return fmt.Errorf("connect delay must not be negative, got %s", c.Database.ConnectDelay)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Addr is the host:port of the database endpoint.
func (d DatabaseConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// DSN renders the MySQL data source name. Times are parsed into time.Time.
func (d DatabaseConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = d.Addr()
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

func (d DatabaseConfig) RetryPolicy() utils.RetryPolicy {
	return utils.RetryPolicy{
		MaxAttempts: d.ConnectAttempts,
		Delay:       d.ConnectDelay,
	}
}
