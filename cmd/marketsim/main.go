// Command marketsim runs the task market: one publisher buying from the
// configured companies against stochastic consumer demand, settled on the
// final day.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/talgya/task-market/internal/config"
	"github.com/talgya/task-market/internal/engine"
	"github.com/talgya/task-market/internal/persistence"
	"github.com/talgya/task-market/internal/report"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a TOML config file (optional)")
		days       = flag.Int("days", 0, "Override the horizon in days")
		capital    = flag.Int("capital", -1, "Override the daily capital allowance")
		seed       = flag.Int64("seed", -1, "Override the random seed (0 = random)")
		dbPath     = flag.String("db", persistence.MemoryDSN, "SQLite path to export the run to")
		xlsxPath   = flag.String("xlsx", "", "Write a workbook of the run to this path")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	slog.SetDefault(newLogger(*logLevel))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *days > 0 {
		cfg.Simulation.Days = *days
	}
	if *capital >= 0 {
		cfg.Simulation.InitialCapital = *capital
	}
	if *seed >= 0 {
		cfg.Simulation.Seed = *seed
	}

	if err := run(cfg, *dbPath, *xlsxPath); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, dbPath, xlsxPath string) error {
	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(cfg)
	if err != nil {
		return err
	}
	result, err := sim.Run()
	if err != nil {
		return err
	}

	analysis := report.Analyze(result, cfg.Damage.AvgProfitPerTask)
	report.Log(analysis)

	// ── Store ─────────────────────────────────────────────────────────
	store, err := persistence.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.SaveRun(result); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	runID := result.RunID.String()
	if mae, err := store.ForecastError(runID); err == nil {
		slog.Info("stored forecast error", "run_id", runID, "mean_abs_error", fmt.Sprintf("%.2f", mae))
	} else {
		slog.Warn("forecast error query failed", "error", err)
	}
	if totals, err := store.CompanyTotals(runID); err == nil {
		for _, t := range totals {
			slog.Debug("stored company totals",
				"company", t.CompanyID,
				"produced", t.Produced,
				"defects", t.Defects,
				"damage", t.Damage,
				"penalty", t.Penalty,
			)
		}
	} else {
		slog.Warn("company totals query failed", "error", err)
	}

	// ── Workbook ──────────────────────────────────────────────────────
	if xlsxPath != "" {
		if err := report.WriteWorkbook(xlsxPath, result); err != nil {
			return err
		}
		slog.Info("workbook written", "path", xlsxPath)
	}

	fmt.Printf("\nRun %s complete: %d days, seed %d, profit %d, efficiency %.1f%%.\n",
		runID, len(result.Days), result.Seed, analysis.TotalProfit, analysis.EfficiencyPercent)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// newLogger uses a text handler on a terminal and JSON otherwise.
func newLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
