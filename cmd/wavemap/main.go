// Command wavemap generates a terrain map by constraint propagation
// and optionally renders it to PNG, archives it to SQLite, and serves
// the archive over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/wavemap/internal/api"
	"github.com/talgya/wavemap/internal/persistence"
	"github.com/talgya/wavemap/internal/render"
	"github.com/talgya/wavemap/internal/solver"
	"github.com/talgya/wavemap/internal/terrain"
)

func main() {
	width := flag.Int("width", 200, "grid width in cells")
	height := flag.Int("height", 100, "grid height in cells")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	preseed := flag.Bool("preseed", false, "narrow initial domains from simplex elevation")
	attempts := flag.Int("attempts", 3, "fresh grids to try before giving up on contradiction")
	scale := flag.Int("scale", 5, "PNG pixels per cell")
	out := flag.String("out", "map.png", "output PNG path (empty = skip)")
	dbPath := flag.String("db", "", "SQLite run archive path (empty = skip)")
	port := flag.Int("port", 0, "HTTP API port (0 = disabled, requires -db)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	catalog := terrain.Default()

	// ── Solve (restart on contradiction with a fresh grid) ────────────
	var (
		eng     *solver.Engine
		outcome string
		steps   int
		elapsed time.Duration
	)

	runSeed := *seed
	for attempt := 1; attempt <= *attempts; attempt++ {
		cfg := solver.Config{
			Width:   *width,
			Height:  *height,
			Catalog: catalog,
			Seed:    runSeed,
		}
		if *preseed {
			cfg.Preseed = solver.DefaultPreseed()
		}

		var err error
		eng, err = solver.New(cfg)
		if err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		slog.Info("solving", "attempt", attempt, "seed", eng.Seed(),
			"cells", humanize.Comma(int64(*width**height)))

		start := time.Now()
		steps = 0
		outcome = "complete"

	loop:
		for {
			switch res := eng.Step(); res.Kind {
			case solver.StepCommitted:
				steps++
			case solver.StepComplete:
				break loop
			case solver.StepContradiction:
				outcome = "contradiction"
				slog.Warn("contradiction", "i", res.I, "j", res.J, "steps", steps)
				break loop
			}
		}
		elapsed = time.Since(start)

		if outcome == "complete" {
			break
		}
		// No backtracking across committed cells: the only recourse is
		// a fresh grid with a new seed.
		runSeed = eng.Seed() + 1
	}

	slog.Info("solve finished",
		"outcome", outcome,
		"committed", humanize.Comma(int64(steps)),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	// ── Render ────────────────────────────────────────────────────────
	if *out != "" {
		if err := render.WritePNG(*out, eng.Grid(), catalog, *scale); err != nil {
			slog.Error("render failed", "error", err)
			os.Exit(1)
		}
		slog.Info("map rendered", "path", *out)
	}

	// ── Archive ───────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		run := persistence.Run{
			ID:         persistence.NewRunID(),
			Seed:       eng.Seed(),
			Width:      *width,
			Height:     *height,
			Outcome:    outcome,
			Steps:      steps,
			DurationMS: elapsed.Milliseconds(),
		}
		if err := db.SaveRun(run, eng.Grid()); err != nil {
			slog.Error("archive failed", "error", err)
			os.Exit(1)
		}
		slog.Info("run archived", "id", run.ID, "db", *dbPath)
	}

	if outcome != "complete" {
		fmt.Println("Solve dead-ended after all attempts; partial map kept.")
		os.Exit(2)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if *port > 0 {
		if db == nil {
			slog.Error("-port requires -db")
			os.Exit(1)
		}

		srv := &api.Server{DB: db, Catalog: catalog, Port: *port}
		srv.Start()
		fmt.Printf("Archive API: http://localhost:%d/api/v1/runs\n", *port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
	}
}
