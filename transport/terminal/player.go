package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/wricardo/merge2048/game/engine"
	"github.com/wricardo/merge2048/game/service"
)

// Player drives one game from a keyboard
type Player struct {
	svc service.GameService
	in  io.Reader
	out io.Writer
}

// NewPlayer creates a player reading keys from in and drawing to out
func NewPlayer(svc service.GameService, in io.Reader, out io.Writer) *Player {
	return &Player{svc: svc, in: in, out: out}
}

// Play starts a session with the named configuration and runs it until the
// game is over, the player quits or input ends. It returns the final state.
func (p *Player) Play(ctx context.Context, configName string) (*engine.GameState, error) {
	keys, out, restore, err := openKeys(p.in, p.out)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer restore()

	info, err := p.svc.CreateSession(ctx, configName)
	if err != nil {
		return nil, err
	}
	defer p.svc.DeleteSession(context.WithoutCancel(ctx), info.ID)

	fmt.Fprintln(out, "Welcome to merge2048 ~")
	state := info.GameState
	render(out, state)

	for !state.GameOver {
		fmt.Fprint(out, "Input direction (w,a,s,d; q to quit): ")

		key, err := keys.ReadKey()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return state, nil
		}
		if err != nil {
			return state, fmt.Errorf("failed to read key: %w", err)
		}
		fmt.Fprintln(out, key)

		if key == KeyQuit {
			fmt.Fprintf(out, "Bye! Score %d\n", state.Score)
			return state, nil
		}

		dir, ok := ParseKey(key)
		if !ok {
			fmt.Fprintf(out, "Invalid input %q!\n", key)
			continue
		}

		result, err := p.svc.Move(ctx, info.ID, dir.String())
		if err != nil {
			return state, err
		}
		log.WithFields(log.Fields{
			"session":   info.ID,
			"direction": dir.String(),
			"traces":    len(result.Traces),
		}).Debug("shift")

		if !result.Success {
			fmt.Fprintln(out, "Invalid move!")
			continue
		}

		state = result.GameState
		render(out, state)
	}

	fmt.Fprintf(out, "Game over! Score %d, max tile %d, %d moves\n", state.Score, state.MaxTile, state.MoveCount)
	return state, nil
}

func render(w io.Writer, state *engine.GameState) {
	fmt.Fprint(w, state.Rendered)
	fmt.Fprintf(w, "Score: %d  Moves: %d\n", state.Score, state.MoveCount)
}
