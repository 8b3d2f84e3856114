package life

const (
	DemoWorld   = "MundoDemo"
	DemoPattern = "PatronDemo"
)

// DefaultWorlds returns the seed dataset of the worlds store. The demo world
// holds a glider, a blinker and a block.
func DefaultWorlds() []World {
	space := [][]byte{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0},
		{0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0},
		{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	return []World{
		{
			Name:         DemoWorld,
			Constants:    []int{2, 3, 3},
			Distribution: CellsOf(space),
		},
	}
}

// DefaultPatterns returns the seed dataset of the patterns store.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name: DemoPattern,
			Scheme: []Row{
				{0, 0, 0, 0},
				{1, 0, 1, 0},
				{0, 0, 0, 1},
				{0, 1, 1, 1},
				{0, 0, 0, 0},
			},
		},
	}
}
