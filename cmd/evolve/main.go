// Package main provides the lorcana-evolve CLI: loads a card catalog and a
// set of meta decks, then runs the genetic algorithm to produce a champion
// 60-card deck and its per-matchup win rates.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
	"github.com/signalnine/lorcana-evolve/fitness"
	"github.com/signalnine/lorcana-evolve/ga"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:  "lorcana-evolve",
		Usage: "evolve a Lorcana deck against a meta by genetic algorithm",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Required: true, Usage: "path to the card catalog CSV"},
			&cli.StringFlag{Name: "meta-decks", Required: true, Usage: "path to a JSON file listing meta decks as card-name arrays"},
			&cli.IntFlag{Name: "population-size", Value: 40},
			&cli.IntFlag{Name: "generations", Value: 50},
			&cli.IntFlag{Name: "games-per-matchup", Value: 20},
			&cli.IntFlag{Name: "max-turns", Value: 50},
			&cli.IntFlag{Name: "workers", Value: 4},
			&cli.IntFlag{Name: "elite-count", Value: 4},
			&cli.IntFlag{Name: "saturation-generations", Value: 10},
			&cli.Int64Flag{Name: "seed", Value: 1},
			&cli.StringFlag{Name: "output", Usage: "path to write the champion deck JSON (stdout if empty)"},
			&cli.BoolFlag{Name: "verbose"},
			&cli.BoolFlag{Name: "version"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("version") {
		fmt.Printf("lorcana-evolve %s (built %s)\n", Version, BuildTime)
		return nil
	}

	logger := newLogger(cmd.Bool("verbose"))
	defer logger.Sync() //nolint:errcheck

	cat, err := loadCatalog(cmd.String("catalog"), logger)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	metaDecks, err := loadMetaDecks(cmd.String("meta-decks"), cat)
	if err != nil {
		return fmt.Errorf("loading meta decks: %w", err)
	}

	fitnessCfg := fitness.DefaultConfig()
	fitnessCfg.GamesPerMatchup = int(cmd.Int("games-per-matchup"))
	fitnessCfg.MaxTurns = int(cmd.Int("max-turns"))
	fitnessCfg.Workers = int(cmd.Int("workers"))
	evaluator := fitness.NewEvaluator(cat, metaDecks, fitnessCfg, logger)

	gaCfg := ga.DefaultConfig()
	gaCfg.PopulationSize = int(cmd.Int("population-size"))
	gaCfg.Generations = int(cmd.Int("generations"))
	gaCfg.EliteCount = int(cmd.Int("elite-count"))
	gaCfg.SaturationGenerations = int(cmd.Int("saturation-generations"))
	gaCfg.Seed = cmd.Int64("seed")

	bar := progressbar.Default(int64(gaCfg.Generations), "evolving")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupt received, stopping after the current generation")
		cancel()
	}()

	var lastReport ga.GenerationReport
	observer := func(r ga.GenerationReport) {
		lastReport = r
		bar.Describe(fmt.Sprintf("gen %d best=%.3f eta=%s", r.Generation, r.BestFitness, formatDuration(r.ETA)))
		_ = bar.Add(1)
	}

	optimizer := ga.NewOptimizer(cat, evaluator, gaCfg, observer, logger)

	best, bestFitness, err := optimizer.Run(runCtx)
	if err != nil {
		return fmt.Errorf("running genetic algorithm: %w", err)
	}

	return writeChampion(cmd.String("output"), best, bestFitness, lastReport, cat)
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

func loadCatalog(path string, logger *zap.SugaredLogger) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, warnings, err := catalog.LoadCSV(f, catalog.DefaultLoadOptions())
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Debugw("catalog load warning", "row", w.Row, "card", w.Name, "reason", w.Reason)
	}
	return cat, nil
}

// metaDecksFile is the on-disk shape of the meta-decks input: a list of
// decks, each a list of card names (spec §6).
type metaDecksFile struct {
	Decks [][]string `json:"decks"`
}

func loadMetaDecks(path string, cat *catalog.Catalog) ([]deck.Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file metaDecksFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing meta decks JSON: %w", err)
	}

	decks := make([]deck.Deck, 0, len(file.Decks))
	for i, names := range file.Decks {
		d, err := resolveDeck(names, cat)
		if err != nil {
			return nil, fmt.Errorf("meta deck %d: %w", i, err)
		}
		if errs := deck.Validate(d, cat); len(errs) > 0 {
			return nil, fmt.Errorf("meta deck %d is illegal: %v", i, errs[0])
		}
		decks = append(decks, d)
	}
	return decks, nil
}

func resolveDeck(names []string, cat *catalog.Catalog) (deck.Deck, error) {
	d := make(deck.Deck, 0, len(names))
	for _, name := range names {
		matches := cat.ByName(name)
		if len(matches) == 0 {
			return nil, fmt.Errorf("unknown card name %q", name)
		}
		d = append(d, matches[0].ID)
	}
	return d.Sorted(), nil
}

type championOutput struct {
	Cards        []string           `json:"cards"`
	Fitness      float64            `json:"fitness"`
	MatchupWins  []matchupWinOutput `json:"matchup_win_rates"`
}

type matchupWinOutput struct {
	MetaDeckIndex int     `json:"meta_deck_index"`
	WinRate       float64 `json:"win_rate"`
}

func writeChampion(path string, best deck.Deck, bestFitness float64, report ga.GenerationReport, cat *catalog.Catalog) error {
	names := make([]string, 0, len(best))
	for _, id := range best {
		if def, ok := cat.ByID(id); ok {
			names = append(names, def.Name)
		}
	}

	out := championOutput{Cards: names, Fitness: bestFitness}
	for _, m := range report.Matchups {
		out.MatchupWins = append(out.MatchupWins, matchupWinOutput{MetaDeckIndex: m.MetaDeckIndex, WinRate: m.WinRate()})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding champion deck: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(sanitizeFilename(path), data, 0o644)
}

// sanitizeFilename strips characters that are awkward in a shell-typed
// output path, leaving the rest of the path untouched.
func sanitizeFilename(path string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\x00', '\n', '\r':
			return -1
		default:
			return r
		}
	}, path)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "?"
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
