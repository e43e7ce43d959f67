package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corpfin/dashboard/internal/api"
	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/config"
	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/logging"
	"github.com/corpfin/dashboard/internal/metrics"
	"github.com/corpfin/dashboard/internal/ml"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/storage"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/corpfin/dashboard/internal/training"
	"github.com/corpfin/dashboard/internal/web"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "dashboard.config.xml", "XML configuration file, created with defaults if missing")
	port := flag.Int("port", 8501, "listen port")
	address := flag.String("address", "0.0.0.0", "bind address")
	headless := flag.Bool("headless", true, "do not print the browser hint on startup")
	cors := flag.Bool("cors", false, "enable CORS")
	xsrf := flag.Bool("xsrf", false, "require an XSRF token on state-changing requests")
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Warning: failed to read .env: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags set on the command line win over the file and the environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "address":
			cfg.Server.BindAddress = *address
		case "headless":
			cfg.Server.Headless = *headless
		case "cors":
			cfg.Server.EnableCORS = *cors
		case "xsrf":
			cfg.Server.EnableXSRF = *xsrf
		}
	})

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)

	if err := run(cfg, *configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules := dataset.DefaultRules()
	if cfg.Dataset.RulesFile != "" {
		parsed, err := dataset.ParseRules(cfg.Dataset.RulesFile)
		if err != nil {
			return err
		}
		rules = parsed
	}
	loader := dataset.NewLoader(rules)

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	cache := dataset.NewCache(loader, activeDatasetPath(fileStore, cfg.Dataset.Path))
	m := metrics.New()

	source, err := store.New(cfg.Dataset.Backend, cache, cfg.Storage.DuckDBFile,
		store.WithThreads(cfg.Advanced.DuckDBThreads),
		store.WithMemoryLimit(cfg.Advanced.DuckDBMemoryLimit))
	if err != nil {
		return err
	}
	defer source.Close()

	trainer := training.NewManager(ml.Config{
		Trees:    cfg.Model.Trees,
		MaxDepth: cfg.Model.MaxDepth,
		Seed:     cfg.Model.Seed,
		TestSize: cfg.Model.TestSize,
		Workers:  cfg.Model.Workers,
	}, m)
	defer trainer.Close()

	// Warm the cache so the first page view does not pay for the CSV parse
	reload := func() {
		ds, err := cache.Get(ctx)
		if err != nil {
			slog.Error("failed to load dataset", "path", cache.Path(), "error", err)
			return
		}
		m.SetDatasetRows(ds.Len())
	}
	cache.Subscribe(func(version int64) {
		trainer.Reset()
		m.DatasetReloaded()
		go reload()
	})
	reload()

	if cfg.Dataset.Watch {
		watcher, err := dataset.NewWatcher(cache)
		if err != nil {
			slog.Warn("dataset watching disabled", "error", err)
		} else {
			defer watcher.Close()
			if err := watcher.Add(cfg.GetUploadDir()); err != nil {
				slog.Warn("failed to watch uploads", "error", err)
			}
			go watcher.Run(ctx)
		}
	}

	scheduler := cron.New()
	if err := trainer.ScheduleCleanup(scheduler, cfg.CleanupInterval(), cfg.JobMaxAge()); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	renderer := charts.NewRenderer(charts.Theme{
		Background: cfg.Theme.PanelColor,
		Text:       cfg.Theme.TextColor,
	}, cfg.Theme.AssetsHost)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   splitOrigins(cfg.Server.AllowOrigins),
		EnableXSRF:     cfg.Server.EnableXSRF,
		BodyLimit:      cfg.Server.BodyLimit,
		Metrics:        m,
	})

	handlers := api.NewHandlers(&api.Dependencies{
		Source:    source,
		Loader:    loader,
		Activator: cache,
		Store:     fileStore,
		Trainer:   trainer,
		Renderer:  renderer,
		Metrics:   m,
		Page: api.PageSettings{
			Title: cfg.App.PageTitle,
			Icon:  cfg.App.PageIcon,
			Theme: web.Theme{
				Primary:             cfg.Theme.PrimaryColor,
				Background:          cfg.Theme.BackgroundColor,
				SecondaryBackground: cfg.Theme.SecondaryBackgroundColor,
				Text:                cfg.Theme.TextColor,
				Panel:               cfg.Theme.PanelColor,
			},
			SidebarExpanded: cfg.App.InitialSidebarState != "collapsed",
			Wide:            cfg.App.Layout == "wide",
			XSRF:            cfg.Server.EnableXSRF,
		},
		Version:     Version,
		UploadLimit: cfg.Storage.MaxUploadSize,
	})
	api.RegisterRoutes(e, handlers)

	if err := web.RegisterStaticRoutes(e); err != nil {
		return fmt.Errorf("failed to register static routes: %w", err)
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg, configPath, cache.Path())

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// activeDatasetPath prefers the upload marked active over the configured file.
func activeDatasetPath(fileStore storage.Store, fallback string) string {
	list, err := fileStore.List(0)
	if err != nil {
		return fallback
	}
	for _, info := range list {
		if info.Status != models.DatasetStatusActive {
			continue
		}
		if path, err := fileStore.GetFilePath(info.ID); err == nil {
			slog.Info("serving uploaded dataset", "id", info.ID, "name", info.Name)
			return path
		}
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func printBanner(cfg *config.AppConfig, configPath, datasetPath string) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Corporate Financial Analysis Dashboard          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Backend:    %-45s║\n", cfg.Dataset.Backend)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Dataset:   %-46s║\n", datasetPath)
	if cfg.Server.PublicURL != "" {
		fmt.Printf("║  Public:    https://%-37s║\n", cfg.Server.PublicURL)
	}
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if !cfg.Server.Headless {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
