package cache

import "strings"

// Keyer generates cache keys.
type Keyer interface {
	// CollisionKey is the key of a collision count for one order and flip
	// state of a dataset.
	CollisionKey(datasetHash string, order, flipped []string) string

	// OptimizeKey is the key of an optimizer result.
	OptimizeKey(datasetHash string, opts OptimizeKeyOpts) string
}

// OptimizeKeyOpts are the optimizer inputs that affect its result.
type OptimizeKeyOpts struct {
	Order         []string `json:"order"`
	Flipped       []string `json:"flipped"`
	Temperature   float64  `json:"temperature"`
	Ratio         float64  `json:"ratio"`
	Auto          bool     `json:"auto"`
	Seed          uint64   `json:"seed"`
	FlipFrequency float64  `json:"flip_frequency"`
	KeepTogether  bool     `json:"keep_together"`
	Gap           float64  `json:"gap"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CollisionKey returns "collisions:<hash>".
func (DefaultKeyer) CollisionKey(datasetHash string, order, flipped []string) string {
	return hashKey("collisions", datasetHash, strings.Join(order, ","), strings.Join(flipped, ","))
}

// OptimizeKey returns "optimize:<hash>".
func (DefaultKeyer) OptimizeKey(datasetHash string, opts OptimizeKeyOpts) string {
	return hashKey("optimize", datasetHash, opts)
}
