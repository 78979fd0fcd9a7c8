// Command analyze plays seeded random-move games for each configuration in
// the configs directory and prints score and tile statistics, a quick way to
// compare how long boards of different sizes and spawn rates survive.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/merge2048/game/config"
	"github.com/wricardo/merge2048/game/engine"
)

// Summary aggregates the games played for one configuration
type Summary struct {
	Config    string
	Games     int
	GamesOver int
	AvgScore  float64
	MaxScore  int
	MaxTile   int
	AvgMoves  float64
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "play random games per configuration and report statistics",
		ArgsUsage: "[CONFIG...]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 100,
				Usage: "games to play per configuration",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "base random seed; game i uses seed+i",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 100000,
				Usage: "stop a game after this many moves",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, out)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
	}

	games := cmd.Int("games")
	if games < 1 {
		return fmt.Errorf("--games must be at least 1, got %d", games)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		cfg, err := manager.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}

		summary, err := simulate(cfg, games, cmd.Uint64("seed"), cmd.Int("max-moves"))
		if err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}

		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", name)
		printSummary(out, summary, cfg)
	}
	return nil
}

func printSummary(w io.Writer, s *Summary, cfg *engine.GameConfig) {
	fmt.Fprintf(w, "Name: %s\n", s.Config)
	fmt.Fprintf(w, "Board: %d x %d, %d spawn(s) per turn from [%d, %d)\n",
		cfg.BoardSize, cfg.BoardSize, cfg.SpawnCount, cfg.SpawnRange.Min, cfg.SpawnRange.Max)
	fmt.Fprintf(w, "Games: %d (%d reached game over)\n", s.Games, s.GamesOver)
	fmt.Fprintf(w, "Score: avg %.1f, max %d\n", s.AvgScore, s.MaxScore)
	fmt.Fprintf(w, "Max Tile: %d\n", s.MaxTile)
	fmt.Fprintf(w, "Moves: avg %.1f\n", s.AvgMoves)
}

// simulate plays games random games. Game i spawns from seed+i and picks its
// moves from an independent source, so a seed always yields the same summary.
func simulate(cfg *engine.GameConfig, games int, seed uint64, maxMoves int) (*Summary, error) {
	summary := &Summary{Config: cfg.Name, Games: games}
	totalScore, totalMoves := 0, 0

	for i := 0; i < games; i++ {
		gameSeed := seed + uint64(i)
		state, err := playRandom(cfg, engine.NewRand(gameSeed), engine.NewRand(^gameSeed), maxMoves)
		if err != nil {
			return nil, err
		}

		log.WithFields(log.Fields{
			"config": cfg.Name,
			"game":   i,
			"score":  state.Score,
			"moves":  state.MoveCount,
		}).Debug("game simulated")

		totalScore += state.Score
		totalMoves += state.MoveCount
		summary.MaxScore = max(summary.MaxScore, state.Score)
		summary.MaxTile = max(summary.MaxTile, state.MaxTile)
		if state.GameOver {
			summary.GamesOver++
		}
	}

	summary.AvgScore = float64(totalScore) / float64(games)
	summary.AvgMoves = float64(totalMoves) / float64(games)
	return summary, nil
}

// playRandom plays one game choosing uniformly among the moves that change
// the board, until game over or maxMoves
func playRandom(cfg *engine.GameConfig, spawn, policy engine.Rand, maxMoves int) (*engine.GameState, error) {
	game, err := engine.NewEngine(cfg, spawn)
	if err != nil {
		return nil, err
	}

	for moves := 0; moves < maxMoves && !game.IsGameOver(); moves++ {
		possible := game.GetPossibleMoves()
		if len(possible) == 0 {
			break
		}
		if _, err := game.Move(possible[policy.IntN(len(possible))]); err != nil {
			return nil, err
		}
	}

	return game.GetState(), nil
}
