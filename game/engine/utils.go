package engine

// MaxTile returns the largest tile on the board, or Empty if there is none
func MaxTile(b *Board) int {
	highest := Empty
	for _, row := range b.cells {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

// TileCount counts the occupied cells
func TileCount(b *Board) int {
	count := 0
	for _, row := range b.cells {
		for _, v := range row {
			if v != Empty {
				count++
			}
		}
	}
	return count
}

// TileValues returns the multiset of tile values as value -> occurrences
func TileValues(b *Board) map[int]int {
	values := make(map[int]int)
	for _, row := range b.cells {
		for _, v := range row {
			if v != Empty {
				values[v]++
			}
		}
	}
	return values
}

// CountMerges counts the merge traces in a shift result
func CountMerges(traces []Trace) int {
	merges := 0
	for _, t := range traces {
		if t.Merged {
			merges++
		}
	}
	return merges
}
