package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/certchain/admin-console/config"
	"github.com/certchain/admin-console/internal/backend"
	"github.com/certchain/admin-console/internal/console"
	"github.com/certchain/admin-console/internal/session"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	log.Info("console service init...")
	defer log.Info("console service stop")

	ctx, cancelCancel := context.WithCancel(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if err := godotenv.Load(".env"); err != nil {
		var pathError *fs.PathError
		if !errors.As(err, &pathError) {
			log.Fatalf("parsing .env file: %v", err)
		}
	}

	cfg := loadConfig()

	opt := badger.DefaultOptions(cfg.SessionDir)
	db, err := badger.Open(opt)
	if err != nil {
		log.Fatalf("failed to open session store %v", err)
	}
	defer db.Close()

	sess, err := session.New(db)
	if err != nil {
		log.Fatalf("failed to restore session %v", err)
	}
	if sess.Authenticated() {
		log.Info("session token restored")
	}

	client := backend.NewClient(cfg.Backend.URL)
	server := console.NewServer(client, sess, cfg)

	go func() {
		if err := server.Start(cfg.ConsoleConf); err != nil && (!errors.Is(err, http.ErrServerClosed)) {
			log.WithError(err).Fatal("shutting down the server")
		}
	}()

	waiting := make(chan struct{})
	go func() {
		defer close(waiting)
		select {
		case <-quit:
			log.Info("Gracefully stopping…")
			cancelCancel()

			if err := server.Stop(); err != nil {
				log.WithError(err).Fatal()
			}
		case <-ctx.Done():
			return
		}
	}()
	<-waiting
	log.Info("🏁 finished.")
}

func loadConfig() config.Config {
	cfg := config.Config{}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		yamlFile, err := os.ReadFile(configPath)
		if err != nil {
			log.Fatalf("yamlFile.Get err #%v .path: %s", err, configPath)
		}
		if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
			log.Fatalf("unmarshal: %v", err)
		}
	}

	if url := os.Getenv("BACKEND_URL"); url != "" {
		cfg.Backend.URL = url
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = backend.DefaultBaseURL
	}
	if cfg.ConsoleConf.Host == "" {
		cfg.ConsoleConf.Host = "0.0.0.0"
	}
	if cfg.ConsoleConf.Port == "" {
		cfg.ConsoleConf.Port = "8081"
	}
	if cfg.Explorer.TxURL == "" {
		cfg.Explorer.TxURL = "https://sepolia.etherscan.io/tx/%s"
	}
	if cfg.Explorer.AddressURL == "" {
		cfg.Explorer.AddressURL = "https://sepolia.etherscan.io/address/%s"
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = "session-data"
	}
	return cfg
}
