package engine

// Core holds the slide/merge rules. It has no state and may be shared.
type Core struct{}

// NewCore returns the rule engine
func NewCore() Core {
	return Core{}
}

// line returns the positions of line i ordered from the edge the
// direction points at toward the opposite edge.
func line(size, i int, d Direction) []Position {
	positions := make([]Position, size)
	for j := 0; j < size; j++ {
		switch d {
		case Left:
			positions[j] = Position{Row: i, Col: j}
		case Right:
			positions[j] = Position{Row: i, Col: size - 1 - j}
		case Up:
			positions[j] = Position{Row: j, Col: i}
		case Down:
			positions[j] = Position{Row: size - 1 - j, Col: i}
		}
	}
	return positions
}

type lineTile struct {
	pos   Position
	value int
}

// reduceLine compacts and merges one line front-to-back. It returns the new
// values in traversal order, the traces and the total merged value.
func reduceLine(b *Board, positions []Position) ([]int, []Trace, int) {
	tiles := make([]lineTile, 0, len(positions))
	for _, p := range positions {
		if v := b.at(p); v != Empty {
			tiles = append(tiles, lineTile{pos: p, value: v})
		}
	}

	out := make([]int, len(positions))
	var traces []Trace
	gained := 0
	dst := 0
	for i := 0; i < len(tiles); dst++ {
		t := tiles[i]
		to := positions[dst]

		// A merged tile is written once and never compared again.
		if i+1 < len(tiles) && tiles[i+1].value == t.value {
			sum := t.value + tiles[i+1].value
			out[dst] = sum
			gained += sum
			traces = append(traces, Trace{
				From:   []Position{t.pos, tiles[i+1].pos},
				To:     to,
				Value:  sum,
				Merged: true,
			})
			i += 2
			continue
		}

		out[dst] = t.value
		if t.pos != to {
			traces = append(traces, Trace{From: []Position{t.pos}, To: to, Value: t.value})
		}
		i++
	}
	return out, traces, gained
}

// Shift slides every line of the board toward the given edge, merging equal
// neighbours once per pass, and returns what moved. An empty result means the
// move changed nothing; the board is then left untouched.
func (Core) Shift(b *Board, d Direction) []Trace {
	if !d.Valid() {
		return nil
	}

	type update struct {
		positions []Position
		values    []int
	}

	var traces []Trace
	var updates []update
	gained := 0
	for i := 0; i < b.size; i++ {
		positions := line(b.size, i, d)
		values, lineTraces, lineGained := reduceLine(b, positions)
		if len(lineTraces) == 0 {
			continue
		}
		traces = append(traces, lineTraces...)
		updates = append(updates, update{positions: positions, values: values})
		gained += lineGained
	}

	if len(traces) == 0 {
		return nil
	}

	for _, u := range updates {
		for j, p := range u.positions {
			b.cells[p.Row][p.Col] = u.values[j]
		}
	}
	b.moveCount++
	b.score += gained
	return traces
}

// IsGameOver reports whether the board is full and no two orthogonal
// neighbours are equal. It scans the grid directly and never mutates it.
func (Core) IsGameOver(b *Board) bool {
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			v := b.cells[r][c]
			if v == Empty {
				return false
			}
			if c+1 < b.size && b.cells[r][c+1] == v {
				return false
			}
			if r+1 < b.size && b.cells[r+1][c] == v {
				return false
			}
		}
	}
	return true
}
