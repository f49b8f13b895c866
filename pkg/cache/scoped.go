package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The server uses it to keep each API client's cache entries apart:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CollisionKey generates a prefixed collision key.
func (k *ScopedKeyer) CollisionKey(datasetHash string, order, flipped []string) string {
	return k.prefix + k.inner.CollisionKey(datasetHash, order, flipped)
}

// OptimizeKey generates a prefixed optimizer key.
func (k *ScopedKeyer) OptimizeKey(datasetHash string, opts OptimizeKeyOpts) string {
	return k.prefix + k.inner.OptimizeKey(datasetHash, opts)
}
