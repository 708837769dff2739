// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/olegiv/pbfund-go/internal/auth"
	"github.com/olegiv/pbfund-go/internal/config"
	"github.com/olegiv/pbfund-go/internal/logging"
	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/registry"
	"github.com/olegiv/pbfund-go/internal/scoring"
	"github.com/olegiv/pbfund-go/internal/store"
	"github.com/olegiv/pbfund-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	area := flag.String("area", "", "Filter the scoreboard by committee area")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "pbfund - participatory budgeting fund workflow\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PBFUND_DB_PATH           SQLite database path (default: ./data/pbfund.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PBFUND_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PBFUND_LOG_LEVEL         Log level: debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PBFUND_SCORE_THRESHOLD   Green band cutoff, 0 < t <= 100 (default: 65)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PBFUND_DO_SEED           Seed demo data on first use (default: true)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Println(info)
		os.Exit(0)
	}

	if err := run(*area); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(area string) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	st := store.New(db)

	// Upgrade logger to also write WARN and ERROR logs to the audit event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	auditHandler := logging.NewAuditHandler(textHandler, st)
	logger = slog.New(auditHandler)
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	// Seed demo data
	ctx := context.Background()
	if cfg.DoSeed {
		if err := st.Seed(ctx); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Wire the workflow components. The gateway is constructed here so a
	// future serving surface finds everything ready; the report below only
	// needs the registry and the engine.
	_ = auth.NewGateway(st, auth.NewProtection(auth.DefaultProtectionConfig()))
	reg := registry.New(st)
	engine := scoring.NewEngine(st, cfg.ScoreThreshold)

	return printScoreboard(ctx, os.Stdout, reg, engine, area)
}

// printScoreboard writes the committee scoreboard: one line per application
// with its final-score average, scorer count and RAG band.
func printScoreboard(ctx context.Context, out io.Writer, reg *registry.Registry, engine *scoring.Engine, area string) error {
	apps, err := reg.List(ctx, area)
	if err != nil {
		return fmt.Errorf("listing applications: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REF\tPROJECT\tAREA\tSTATUS\tAVG\tSCORES\tBAND")

	for _, app := range apps {
		avg, count, err := engine.Aggregate(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("aggregating %s: %w", app.Ref, err)
		}

		band := "-"
		avgText := "-"
		if count > 0 {
			band = string(engine.Band(avg))
			avgText = fmt.Sprintf("%.1f", avg)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			app.Ref, app.ProjectTitle, app.Area, app.Status, avgText, count, band)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing scoreboard: %w", err)
	}

	slog.Info("scoreboard printed",
		"applications", len(apps),
		"area", areaLabel(area),
		"threshold", engine.Threshold())
	return nil
}

func areaLabel(area string) string {
	if area == "" {
		return model.AreaFilterAll
	}
	return area
}
