package cache

// ScopedKeyer wraps a Keyer with a prefix so separate projects or
// tenants sharing one backend (a single Redis instance, a common cache
// directory) never read each other's entries.
//
// Example usage:
//
//	// Per-project namespace
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:atlas:")
//
//	// Shared namespace
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key
// produced by inner. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MatrixKey generates a prefixed key for a generated matrix.
func (k *ScopedKeyer) MatrixKey(source string, opts MatrixKeyOpts) string {
	return k.prefix + k.inner.MatrixKey(source, opts)
}

// LayoutKey generates a prefixed key for an optimized layout.
func (k *ScopedKeyer) LayoutKey(matrixHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(matrixHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
