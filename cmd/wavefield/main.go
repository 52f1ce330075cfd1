// Command wavefield generates sectors of a wave function collapse tile field,
// optionally persisting them, dumping them to YAML and serving them to
// renderers over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/wavefield/internal/config"
	"github.com/lawnchairsociety/wavefield/internal/feed"
	"github.com/lawnchairsociety/wavefield/internal/logger"
	"github.com/lawnchairsociety/wavefield/internal/store"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

func main() {
	configPath := flag.String("config", "data/wavefield.yaml", "Path to generator config file")
	loggingPath := flag.String("logging", "data/logging.yaml", "Path to logging config file")
	tilesetPath := flag.String("tileset", "", "Path to tileset file (overrides config)")
	seed := flag.Int64("seed", 0, "Generation seed (overrides config, 0 = use config)")
	areaFlag := flag.String("area", "0,0", "Sectors to generate: x,y or minX,minY,maxX,maxY")
	output := flag.String("out", "", "Write render records of every sector to this YAML file")
	persist := flag.Bool("store", false, "Load and save sectors using the configured store")
	fresh := flag.Bool("fresh", false, "Discard stored sectors in the area before generating")
	serve := flag.Bool("serve", false, "Serve the render feed after generating (overrides config)")
	flag.Parse()

	logConfig, err := logger.LoadConfig(*loggingPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load logging config: %v\n", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Warning("Failed to load generator config, using defaults", "error", err)
	}
	if *tilesetPath != "" {
		cfg.Tileset = *tilesetPath
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *serve {
		cfg.Feed.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	bounds, err := parseArea(*areaFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", cfg.Seed)
	} else {
		logger.Info("Using seed", "seed", cfg.Seed)
	}

	if err := run(cfg, bounds, *output, *persist, *fresh); err != nil {
		logger.Error("Generation failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.GeneratorConfig, bounds area, output string, persist, fresh bool) error {
	start := time.Now()

	tileset, err := wfc.LoadTileset(cfg.Tileset)
	if err != nil {
		return err
	}
	catalog, err := wfc.NewCatalog(tileset)
	if err != nil {
		return err
	}

	field, err := wfc.NewField(catalog, fieldConfig(cfg))
	if err != nil {
		return err
	}
	generator := wfc.NewGenerator(field, cfg.Seed, cfg.MaxRetries)

	var st *store.Store
	if persist {
		st, err = store.OpenWithConfig(storeConfig(cfg.Store))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	loaded, generated := 0, 0
	for row := int64(bounds.MinY); row <= int64(bounds.MaxY); row++ {
		for col := int64(bounds.MinX); col <= int64(bounds.MaxX); col++ {
			x, y := int32(col), int32(row)
			if st != nil && fresh {
				if err := st.DeleteSector(catalog.Name(), x, y); err != nil {
					return err
				}
			}
			if st != nil && !fresh {
				_, err := st.LoadSector(field, x, y)
				if err == nil {
					loaded++
					continue
				}
				if !errors.Is(err, store.ErrSectorNotFound) {
					logger.Warning("Stored sector unusable, regenerating", "x", x, "y", y, "error", err)
				}
			}

			sector, err := generator.Generate(x, y)
			if err != nil {
				return err
			}
			generated++
			if st != nil {
				if err := st.SaveSector(catalog, sector); err != nil {
					return err
				}
			}
		}
	}

	if output != "" {
		if err := WriteFieldYAMLFile(field, cfg.Seed, output); err != nil {
			return err
		}
		logger.Info("Wrote render dump", "path", output)
	}

	logger.Always("Field ready",
		"tileset", catalog.Name(),
		"sectors", bounds.Count(),
		"generated", generated,
		"loaded", loaded,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if !cfg.Feed.Enabled {
		return nil
	}
	return serveFeed(generator, st, cfg)
}

// serveFeed blocks until SIGINT or SIGTERM
func serveFeed(generator *wfc.Generator, st *store.Store, cfg *config.GeneratorConfig) error {
	server := feed.NewServer(generator, &cfg.Feed)
	if st != nil {
		server.SetStore(st)
	}

	if len(cfg.Feed.AllowedOrigins) == 0 {
		logger.Info("Feed CORS policy: same-origin only")
	} else {
		logger.Info("Feed CORS policy", "allowed_origins", cfg.Feed.AllowedOrigins)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Feed.Address)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func fieldConfig(cfg *config.GeneratorConfig) wfc.FieldConfig {
	return wfc.FieldConfig{
		SectorWidth:  cfg.Sector.Width,
		SectorHeight: cfg.Sector.Height,
		CellWidth:    cfg.Cell.Width,
		CellHeight:   cfg.Cell.Height,
	}
}

func storeConfig(cfg config.StoreConfig) store.Config {
	pg := cfg.Postgres
	return store.Config{
		Driver:     cfg.Driver,
		SQLitePath: cfg.Path,
		Postgres: store.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: pg.ConnMaxLifetime,
		},
	}
}
