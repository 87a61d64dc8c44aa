package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"

	"github.com/marktlinn/kvstore/api"
	"github.com/marktlinn/kvstore/config"
	"github.com/marktlinn/kvstore/store"
)

var log = logrus.New()

func initLogger(level string) {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// buildStore connects to the configured backend and makes sure the record table exists.
func buildStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch store.Kind(cfg.Store) {
	case store.MEMORY:
		log.Warn("using in-memory store; records are lost on restart")
		return store.NewInMemoryRecordStore(), nil

	case store.MYSQL:
		log.Infof("Connecting to database at %s", cfg.Database.Addr())
		s, err := store.Connect(ctx, mysql.Open(cfg.Database.DSN()), cfg.Database.RetryPolicy(), log)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("initialize database: %w", err)
		}
		log.Info("Database initialized successfully")
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store)
	}
}

// signalContext returns a Context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		initLogger("info")
		log.Fatalf("Failed to load config: %v", err)
	}
	initLogger(cfg.Log.Level)

	ctx, cancel := signalContext()
	defer cancel()

	log.Info("Starting application...")
	s, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer s.Close()

	if n, err := s.Count(ctx); err != nil {
		log.Warnf("could not count records: %v", err)
	} else {
		log.Infof("store holds %d records", n)
	}

	kvApi := api.Api{
		Address: cfg.HTTP.Host,
		Port:    cfg.HTTP.Port,
		Store:   s,
		Logger:  log,
	}
	if err := kvApi.Start(ctx); err != nil {
		log.Errorf("failed to start server: %v", err)
		s.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
