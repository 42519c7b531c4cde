package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lab1702/shiparena/config"
	"github.com/lab1702/shiparena/game"
	"github.com/lab1702/shiparena/journal"
	"github.com/lab1702/shiparena/server"
	"github.com/lab1702/shiparena/strategy"
	"github.com/lab1702/shiparena/telemetry"
	"github.com/lab1702/shiparena/tui"
)

//go:embed static/*
var staticFiles embed.FS

const serviceName = "shiparena"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if err != nil && !errors.Is(err, tui.ErrQuit) {
		log.Printf("Arena failed: %v", err)
		os.Exit(1)
	}
	log.Println("Arena stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	arena, err := cfg.Arena()
	if err != nil {
		return err
	}
	seed, err := cfg.ResolveSeed()
	if err != nil {
		return err
	}

	var screen tcell.Screen
	if !cfg.Headless {
		screen, err = openScreen()
		if err != nil {
			log.Printf("Terminal view unavailable, running headless: %v", err)
		} else {
			defer screen.Fini()
		}
	}

	// While the terminal view is up, stdout belongs to the screen
	var mirror io.Writer = os.Stdout
	if screen != nil {
		mirror = nil
	}
	events, err := openEventLogger(cfg.LogFile, mirror)
	if err != nil {
		return err
	}
	defer events.Close()
	if screen != nil {
		log.SetOutput(events.Writer())
		defer log.SetOutput(os.Stderr)
	}

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	sinks := game.MultiSink{events}
	var store *journal.Store
	if cfg.JournalPath != "" {
		store, err = journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sessionID, err := store.StartSession(ctx, arena, seed)
		if err != nil {
			return err
		}
		log.Printf("Journaling events to %s (session %s)", cfg.JournalPath, sessionID)
		sinks = append(sinks, store)
	}

	engine, err := game.NewEngine(arena, cfg.Rules(), rand.New(rand.NewSource(seed)), sinks)
	if err != nil {
		return err
	}
	if err := registerStrategies(engine, cfg, seed); err != nil {
		return err
	}
	if engine.Len() == 0 {
		return fmt.Errorf("no ships registered: add scripts to %q or pass -builtins %s",
			cfg.StrategyDir, strings.Join(strategy.BuiltinNames(), ","))
	}
	log.Printf("Starting arena %dx%d at %d ticks/s with %d ships (seed %d)",
		arena.Width, arena.Height, arena.TicksPerSecond, engine.Len(), seed)

	scheduler := server.NewScheduler(engine, cfg.MaxTicks)
	hub := server.NewServer(scheduler)
	if store != nil {
		hub.SetHistory(store)
	}

	mux := http.NewServeMux()
	hub.Routes(mux)

	// Serve the spectator page from the static subdirectory
	fsys, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}
	mux.Handle("/", http.FileServer(http.FS(fsys)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Reaching the tick limit ends the session
		defer cancel()
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("Spectator server running at http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		return nil
	})
	if screen != nil {
		view := tui.New(screen, scheduler)
		scheduler.AddObserver(view)
		g.Go(func() error {
			return view.Run(gctx)
		})
	}

	err = g.Wait()
	logStandings(scheduler)
	return err
}

func openScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

func openEventLogger(path string, mirror io.Writer) (*server.EventLogger, error) {
	if path != "" {
		return server.OpenEventLogger(path, mirror)
	}
	if mirror == nil {
		mirror = io.Discard
	}
	return server.NewEventLogger(mirror), nil
}

// registerStrategies adds the Lua scripts from the strategy directory and
// then the configured built-ins. A script that fails to load is logged and
// skipped; an unknown built-in is a configuration error.
func registerStrategies(engine *game.Engine, cfg config.Config, seed int64) error {
	if cfg.StrategyDir != "" {
		entries, err := strategy.LoadDir(cfg.StrategyDir)
		if err != nil {
			log.Printf("Some strategies in %s were not loaded: %v", cfg.StrategyDir, err)
		}
		for _, entry := range entries {
			if _, err := engine.Register(entry.Name, entry.Strategy); err != nil {
				log.Printf("Failed to register %s: %v", entry.Name, err)
				continue
			}
			log.Printf("Registered %s from %s", entry.Name, cfg.StrategyDir)
		}
	}

	for i, kind := range cfg.Builtins {
		s, err := strategy.Builtin(kind, rand.New(rand.NewSource(seed+int64(i)+1)))
		if err != nil {
			return err
		}
		name, err := engine.Register(uniqueName(engine, strings.ToLower(strings.TrimSpace(kind))), s)
		if err != nil {
			return fmt.Errorf("register built-in %s: %w", kind, err)
		}
		log.Printf("Registered built-in %s as %s", kind, name)
	}
	return nil
}

// uniqueName returns base, or base-N for the first N not already in use
func uniqueName(engine *game.Engine, base string) string {
	name := base
	for n := 2; ; n++ {
		if _, taken := engine.Ship(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}

func logStandings(scheduler *server.Scheduler) {
	log.Printf("Final standings after tick %d:", scheduler.Tick())
	for i, entry := range scheduler.Scoreboard() {
		log.Printf("  %d. %s score %d health %d", i+1, entry.Name, entry.Score, entry.Health)
	}
}
