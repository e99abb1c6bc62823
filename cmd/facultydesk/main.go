package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/facultydesk/facultydesk/internal/auth"
	"github.com/facultydesk/facultydesk/internal/config"
	"github.com/facultydesk/facultydesk/internal/server"
	"github.com/facultydesk/facultydesk/internal/sheets"
	"github.com/facultydesk/facultydesk/internal/status"
)

var (
	addr    = flag.String("addr", "", "Listen address (overrides ADDR)")
	envfile = flag.String("env", "", "Path to a .env file")
	dev     = flag.Bool("dev", false, "Enable development mode")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	if *addr != "" {
		cfg.Addr = *addr
	}

	if *dev {
		cfg.DevMode = true
	}

	log, err := logger(cfg.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := sheets.NewClient(ctx, cfg.Credentials)
	if err != nil {
		log.Fatal("sheets client", zap.Error(err))
	}

	aggregator := status.NewAggregator(client, config.RequiredTabs, nil, log)
	builder := status.NewBuilder(aggregator, cfg.Faculty, log)
	sessions := auth.NewSessions(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPasswordHash)

	srv := server.New(cfg, sessions, builder, log)

	log.Info("starting",
		zap.Int("faculty", len(cfg.Faculty)),
		zap.String("serviceAccount", cfg.ServiceAccountEmail))

	if err := srv.Run(ctx); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func logger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
