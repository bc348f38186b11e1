package pipeline

import (
	"testing"

	"github.com/kverran/starmap/pkg/export"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/similarity"
	"github.com/kverran/starmap/pkg/source"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"csv", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"dot", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"exponential", false},
		{"linear", false},
		{"powerLaw", false},
		{"POWERLAW", false}, // strategies resolve case-insensitively
		{"gravity", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStrategy(tt.strategy)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.strategy, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing source and node count
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing source/nodes should fail")
	}

	// Negative node count
	opts = Options{Nodes: -3}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Negative node count should fail")
	}

	// Negative cluster count
	opts = Options{Nodes: 10, Clusters: -1}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Negative cluster count should fail")
	}

	// Valid with file source
	opts = Options{Source: "scores.json"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid file options should pass: %v", err)
	}

	// Valid with generator
	opts = Options{Nodes: 10}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid generator options should pass: %v", err)
	}
}

func TestOptionsGeneratorDefaults(t *testing.T) {
	opts := Options{Nodes: 30}
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatalf("ValidateForLoad failed: %v", err)
	}

	if opts.Clusters != source.DefaultClusters {
		t.Errorf("Clusters should be %d, got %d", source.DefaultClusters, opts.Clusters)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if opts.Logger == nil {
		t.Error("Logger default not applied")
	}
}

func TestOptionsIsGenerated(t *testing.T) {
	opts := Options{Nodes: 10}
	if !opts.IsGenerated() {
		t.Error("Empty source should select the generator")
	}

	opts.Source = "scores.csv"
	if opts.IsGenerated() {
		t.Error("A file source should not select the generator")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Strategy != string(DefaultStrategy) {
		t.Errorf("Strategy should be %s, got %s", DefaultStrategy, opts.Strategy)
	}
	if opts.Dimensions != graph.Dims2D {
		t.Errorf("Dimensions should be 2, got %d", opts.Dimensions)
	}
	if opts.Iterations != DefaultIterations {
		t.Errorf("Iterations should be %d, got %d", DefaultIterations, opts.Iterations)
	}
	if opts.LearningRate != DefaultLearningRate {
		t.Errorf("LearningRate should be %v, got %v", DefaultLearningRate, opts.LearningRate)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %f, got %f", DefaultHeight, opts.Height)
	}
	if opts.Depth != 0 {
		t.Errorf("Depth should stay 0 for 2D, got %f", opts.Depth)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
}

func TestSetLayoutDefaultsFillsDepthFor3D(t *testing.T) {
	opts := Options{Dimensions: graph.Dims3D}
	opts.SetLayoutDefaults()

	if opts.Depth != DefaultDepth {
		t.Errorf("Depth should be %f for 3D, got %f", DefaultDepth, opts.Depth)
	}
}

func TestValidateForLayout(t *testing.T) {
	opts := Options{Strategy: "gravity"}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Unknown strategy should fail")
	}

	opts = Options{Dimensions: 5}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Dimensions outside 2..3 should fail")
	}

	opts = Options{Strategy: "spring", Dimensions: 3}
	if err := opts.ValidateForLayout(); err != nil {
		t.Errorf("Valid layout options should pass: %v", err)
	}
}

func TestValidateForLayoutMapper(t *testing.T) {
	// Parameter-only mapper inherits the named strategy.
	opts := Options{Strategy: "powerLaw", Mapper: &similarity.Mapper{Exponent: 0.75}}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("parameter-only mapper should pass: %v", err)
	}
	if opts.Mapper.Strategy != similarity.StrategyPowerLaw {
		t.Errorf("Mapper.Strategy = %q, want powerLaw", opts.Mapper.Strategy)
	}
	if opts.Mapper.Scale == 0 {
		t.Error("mapper defaults should be filled")
	}

	// A mapper with its own strategy wins over the plain name.
	opts = Options{Strategy: "linear", Mapper: &similarity.Mapper{Strategy: similarity.StrategySpring}}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("mapper strategy should pass: %v", err)
	}
	if opts.Strategy != string(similarity.StrategySpring) {
		t.Errorf("Strategy = %q, want spring", opts.Strategy)
	}
}

func TestValidateForIndex(t *testing.T) {
	tests := []struct {
		preset  string
		wantErr bool
	}{
		{"", false}, // empty selects the default config
		{"fast", false},
		{"precise", false},
		{"memoryEfficient", false},
		{"FAST", false}, // presets resolve case-insensitively
		{"turbo", true},
	}

	for _, tt := range tests {
		opts := Options{Preset: tt.preset}
		err := opts.ValidateForIndex()
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateForIndex(%q) error = %v, wantErr %v", tt.preset, err, tt.wantErr)
		}
	}
}

func TestSetExportDefaults(t *testing.T) {
	opts := Options{}
	opts.SetExportDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.EdgeThreshold != export.DefaultEdgeThreshold {
		t.Errorf("EdgeThreshold should be %v, got %v", export.DefaultEdgeThreshold, opts.EdgeThreshold)
	}
}

func TestValidateForExport(t *testing.T) {
	opts := Options{Formats: []string{"pdf"}}
	if err := opts.ValidateForExport(); err == nil {
		t.Error("Unsupported format should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Nodes: 10}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalStrategy := opts.Strategy
	originalIterations := opts.Iterations
	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Strategy != originalStrategy {
		t.Error("Strategy changed on second call")
	}
	if opts.Iterations != originalIterations {
		t.Error("Iterations changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestLayoutKeyOptsCanonical(t *testing.T) {
	// A zero options value and an explicitly defaulted one must key
	// identically, or equal runs would recompute needlessly.
	zero := Options{Nodes: 10}
	explicit := Options{
		Nodes:        10,
		Strategy:     string(DefaultStrategy),
		Dimensions:   graph.Dims2D,
		Iterations:   DefaultIterations,
		LearningRate: DefaultLearningRate,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Seed:         DefaultSeed,
	}

	zero.SetLayoutDefaults()
	explicit.SetLayoutDefaults()

	if zero.LayoutKeyOpts() != explicit.LayoutKeyOpts() {
		t.Errorf("key opts differ:\n%+v\n%+v", zero.LayoutKeyOpts(), explicit.LayoutKeyOpts())
	}
}

func TestLayoutKeyOptsMapperFingerprint(t *testing.T) {
	plain := Options{Nodes: 10}
	tuned := Options{Nodes: 10, Mapper: &similarity.Mapper{Exponent: 3}}

	if err := plain.ValidateForLayout(); err != nil {
		t.Fatalf("plain options failed: %v", err)
	}
	if err := tuned.ValidateForLayout(); err != nil {
		t.Fatalf("tuned options failed: %v", err)
	}

	if plain.LayoutKeyOpts().Mapper != "" {
		t.Error("default mapper should not fingerprint")
	}
	if tuned.LayoutKeyOpts().Mapper == "" {
		t.Error("tuned mapper should fingerprint into the key")
	}
	if plain.LayoutKeyOpts() == tuned.LayoutKeyOpts() {
		t.Error("tuned mapper must change the layout key")
	}
}
