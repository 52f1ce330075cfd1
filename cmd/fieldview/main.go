// Command fieldview is a terminal preview of a wave field. Sectors are
// generated as the view pans over them.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lawnchairsociety/wavefield/internal/config"
	"github.com/lawnchairsociety/wavefield/internal/logger"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

func main() {
	configPath := flag.String("config", "data/wavefield.yaml", "Path to generator config file")
	loggingPath := flag.String("logging", "data/logging.yaml", "Path to logging config file")
	tilesetPath := flag.String("tileset", "", "Path to tileset file (overrides config)")
	seed := flag.Int64("seed", 0, "Generation seed (overrides config, 0 = use config)")
	flag.Parse()

	// The terminal belongs to the view, so only file logging is kept
	logConfig, err := logger.LoadConfig(*loggingPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load logging config: %v\n", err)
	}
	console := false
	logConfig.ConsoleEnabled = &console
	if !logConfig.FileEnabled {
		logConfig.Level = "ERROR"
	}
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
	}
	if *tilesetPath != "" {
		cfg.Tileset = *tilesetPath
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	logger.Info("Field view started", "tileset", cfg.Tileset, "seed", cfg.Seed)
	newViewer(screen, generator, cfg.Seed).run(screen)
}

func newGenerator(cfg *config.GeneratorConfig) (*wfc.Generator, error) {
	tileset, err := wfc.LoadTileset(cfg.Tileset)
	if err != nil {
		return nil, err
	}
	catalog, err := wfc.NewCatalog(tileset)
	if err != nil {
		return nil, err
	}
	field, err := wfc.NewField(catalog, wfc.FieldConfig{
		SectorWidth:  cfg.Sector.Width,
		SectorHeight: cfg.Sector.Height,
		CellWidth:    cfg.Cell.Width,
		CellHeight:   cfg.Cell.Height,
	})
	if err != nil {
		return nil, err
	}
	return wfc.NewGenerator(field, cfg.Seed, cfg.MaxRetries), nil
}
