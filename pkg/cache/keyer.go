package cache

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always give the same key.
type Keyer interface {
	// LayoutKey is the key of a layout result for a graph and options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey is the key of a rendered artifact for a layout result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the graph that change a layout.
// OptionsHash is the hash of the serialized layout options.
type LayoutKeyOpts struct {
	OptionsHash string `json:"options_hash"`
	Version     string `json:"version,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the layout that change an
// artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer builds "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the graph hash together with the options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey hashes the result hash together with the format.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
