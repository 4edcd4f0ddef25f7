package main

import (
	"context"
	"fmt"
	"os"

	"zignasa/internal/admin"
	"zignasa/internal/config"
	"zignasa/internal/db"
	"zignasa/internal/metrics"
	"zignasa/internal/team"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
)

func main() {
	_ = godotenv.Load()

	root := admin.NewRootCommand(openStore)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (admin.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	m, err := metrics.New(otel.Meter("zignasactl"))
	if err != nil {
		return nil, nil, err
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return team.NewRepository(database, m), database.Close, nil
}
