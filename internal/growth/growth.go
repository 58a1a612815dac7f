// Package growth maps goal progress onto the six-stage growth visual shown
// on the dashboard: a seed that sprouts and grows until it blossoms.
package growth

type Level int

const (
	LevelSeed Level = iota
	LevelSprout
	LevelSeedling
	LevelSapling
	LevelTree
	LevelBlossom
)

// Stage is what the dashboard renders for a level.
type Stage struct {
	Level   Level  `json:"level"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

var stages = [...]Stage{
	LevelSeed:     {Level: LevelSeed, Name: "seed", Icon: "🌰", Message: "Plant the seed of your heart"},
	LevelSprout:   {Level: LevelSprout, Name: "sprout", Icon: "🌱", Message: "A small sprout has appeared"},
	LevelSeedling: {Level: LevelSeedling, Name: "seedling", Icon: "🌿", Message: "It is growing"},
	LevelSapling:  {Level: LevelSapling, Name: "sapling", Icon: "🌲", Message: "It is growing up strong"},
	LevelTree:     {Level: LevelTree, Name: "tree", Icon: "🌳", Message: "It has grown tall"},
	LevelBlossom:  {Level: LevelBlossom, Name: "blossom", Icon: "🌸", Message: "It has burst into bloom"},
}

// StageFor returns the stage for the given progress. Zero points is always
// a seed; otherwise percentage picks the band, each band including its
// upper bound (exactly 10% is still a sprout).
func StageFor(totalPoints int, percentage float64) Stage {
	switch {
	case totalPoints <= 0:
		return stages[LevelSeed]
	case percentage <= 10:
		return stages[LevelSprout]
	case percentage <= 30:
		return stages[LevelSeedling]
	case percentage <= 60:
		return stages[LevelSapling]
	case percentage <= 90:
		return stages[LevelTree]
	default:
		return stages[LevelBlossom]
	}
}

// Stages lists every stage in growth order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages[:])
	return out
}
