package cache

// Keyer derives cache keys for the three cacheable pipeline stages.
// Keys embed every option that changes the stage's output, so two runs
// with different parameters never collide.
type Keyer interface {
	// MatrixKey identifies a generated similarity matrix.
	MatrixKey(source string, opts MatrixKeyOpts) string

	// LayoutKey identifies an optimized layout for a matrix.
	LayoutKey(matrixHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered artifact for a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// MatrixKeyOpts are the generator parameters that shape a matrix.
type MatrixKeyOpts struct {
	Nodes    int    `json:"nodes"`
	Clusters int    `json:"clusters"`
	Seed     uint64 `json:"seed"`
}

// LayoutKeyOpts are the optimizer parameters that shape a layout.
type LayoutKeyOpts struct {
	Strategy     string  `json:"strategy"`
	Dimensions   int     `json:"dimensions"`
	Iterations   int     `json:"iterations"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Depth        float64 `json:"depth"`

	// Mapper carries a canonical fingerprint of tuned mapper
	// parameters. Empty when the strategy's defaults apply.
	Mapper string `json:"mapper,omitempty"`
}

// ArtifactKeyOpts are the export parameters that shape an artifact.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	ShowEdges     bool    `json:"show_edges"`
	EdgeThreshold float64 `json:"edge_threshold"`
	Labels        bool    `json:"labels"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MatrixKey generates a key for a generated similarity matrix.
func (k *DefaultKeyer) MatrixKey(source string, opts MatrixKeyOpts) string {
	return hashKey("matrix", source, opts)
}

// LayoutKey generates a key for an optimized layout.
func (k *DefaultKeyer) LayoutKey(matrixHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", matrixHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
