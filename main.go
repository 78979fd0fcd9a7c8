// Command merge2048 plays the sliding-tile merge game in a terminal.
//
// Commands:
//  1. "play" (default): plays one game with keyboard input (w,a,s,d; q quits)
//  2. "configs": lists the game configurations found in the config directory
//  3. "validate": checks every configuration file and reports problems
//
// Flags control the config directory, debug logging and an optional
// Prometheus metrics endpoint. A .env file in the working directory is
// loaded before flags are read.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/merge2048/game/config"
	"github.com/wricardo/merge2048/game/engine"
	"github.com/wricardo/merge2048/game/service"
	"github.com/wricardo/merge2048/game/session"
	"github.com/wricardo/merge2048/transport/terminal"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "merge2048"
)

// Session housekeeping
const (
	cleanupInterval = time.Hour
	sessionMaxAge   = 24 * time.Hour
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree reading keys from in and writing to out
func newApp(in io.Reader, out io.Writer) *cli.Command {
	play := func(ctx context.Context, cmd *cli.Command) error {
		return runPlay(ctx, cmd, in, out)
	}

	return &cli.Command{
		Name:    AppName,
		Usage:   "slide and merge numbered tiles on a square board",
		Version: Version,
		Reader:  in,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("MERGE2048_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve Prometheus metrics on this address, e.g. :9090",
				Sources: cli.EnvVars("METRICS_ADDR"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: play,
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "play one game (default)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "configuration to play (default: classic)",
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "random seed for spawns, overriding the configuration",
					},
				},
				Action: play,
			},
			{
				Name:  "configs",
				Usage: "list available configurations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runConfigs(ctx, cmd, out)
				},
			},
			{
				Name:  "validate",
				Usage: "validate every configuration file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runValidate(cmd, out)
				},
			},
		},
	}
}

func setupLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	// Keep the board readable; info logs only show with --debug
	log.SetLevel(log.WarnLevel)
}

// services bundles the managers behind the game service
type services struct {
	configs  *config.Manager
	sessions *session.Manager
	game     service.GameService
	metrics  *service.Metrics
	registry *prometheus.Registry
}

// initializeServices wires session/config managers, metrics and the game service.
// A non-zero seed replaces every configuration's seed.
func initializeServices(configDir string, seed uint64) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(session.WithRand(func(cfg *engine.GameConfig) engine.Rand {
		if seed != 0 {
			return engine.NewRand(seed)
		}
		return engine.NewRand(cfg.Seed)
	}))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(registry, sessionManager.Count)

	return &services{
		configs:  configManager,
		sessions: sessionManager,
		game:     service.NewGameService(sessionManager, configManager, service.WithMetrics(metrics)),
		metrics:  metrics,
		registry: registry,
	}, nil
}

func runPlay(ctx context.Context, cmd *cli.Command, in io.Reader, out io.Writer) error {
	svc, err := initializeServices(cmd.String("config-dir"), cmd.Uint64("seed"))
	if err != nil {
		return err
	}

	if addr := cmd.String("metrics-addr"); addr != "" {
		shutdown := serveMetrics(addr, svc.registry)
		defer shutdown()
	}

	go sessionCleanupRoutine(ctx, svc.sessions, cleanupInterval, sessionMaxAge)

	state, err := terminal.NewPlayer(svc.game, in, out).Play(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"score": state.Score, "max_tile": state.MaxTile, "moves": state.MoveCount}).Info("game finished")
	return nil
}

func runConfigs(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	svc, err := initializeServices(cmd.String("config-dir"), 0)
	if err != nil {
		return err
	}

	configs, err := svc.game.ListConfigs(ctx)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintf(out, "No configurations in %s, the built-in classic game will be used\n", cmd.String("config-dir"))
		return nil
	}

	defaultName := svc.configs.GetDefault().Name
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBOARD\tSPAWN\tDESCRIPTION")
	for _, c := range configs {
		name := c.Name
		if name == defaultName {
			name += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%s\n", c.ConfigID, name, c.BoardSize, c.BoardSize, c.SpawnCount, c.Description)
	}
	return tw.Flush()
}

func runValidate(cmd *cli.Command, out io.Writer) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	results, err := manager.ValidateDir()
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(out, "ok    %s", r.File)
			if len(r.Notes) > 0 {
				fmt.Fprintf(out, " (%s)", strings.Join(r.Notes, "; "))
			}
			fmt.Fprintln(out)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s\n", r.File)
		for _, e := range r.Errors {
			fmt.Fprintf(out, "      - %s\n", e)
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d configurations invalid", failed, len(results)), 1)
	}
	fmt.Fprintf(out, "%d configurations valid\n", len(results))
	return nil
}

// serveMetrics exposes the registry on addr until the returned func is called
func serveMetrics(addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server failed: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warnf("metrics server shutdown: %v", err)
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.WithField("removed", removed).Debug("session cleanup")
			}
		}
	}
}
