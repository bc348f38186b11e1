package similarity

import (
	"math"
	"strings"

	"github.com/kverran/starmap/pkg/errors"
)

// =============================================================================
// Strategies
// =============================================================================

// Strategy names a similarity-to-distance mapping function.
type Strategy string

// Supported mapping strategies.
const (
	StrategyExponential Strategy = "exponential"
	StrategyLinear      Strategy = "linear"
	StrategyLogarithmic Strategy = "logarithmic"
	StrategySpring      Strategy = "spring"
	StrategyThreshold   Strategy = "threshold"
	StrategyPowerLaw    Strategy = "powerLaw"
)

// Strategies returns all supported strategies in a fixed order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyExponential,
		StrategyLinear,
		StrategyLogarithmic,
		StrategySpring,
		StrategyThreshold,
		StrategyPowerLaw,
	}
}

// ParseStrategy resolves a strategy name case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if strings.EqualFold(name, string(s)) {
			return s, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMapper,
		"unknown mapping strategy %q (valid: exponential, linear, logarithmic, spring, threshold, powerLaw)", name)
}

// =============================================================================
// Mapper
// =============================================================================

// Default mapper parameters, applied by [Mapper.ValidateAndSetDefaults]
// for fields left at zero.
const (
	DefaultMaxDistance    = 100.0
	DefaultExponent       = 2.0
	DefaultRestLength     = 100.0
	DefaultSpringConstant = 1.0
	DefaultThreshold      = 0.5
	DefaultCloseDistance  = 10.0
	DefaultFarDistance    = 100.0
	DefaultScale          = 100.0

	// logEpsilon keeps the logarithmic strategy away from log(0).
	logEpsilon = 1e-3

	// powerLawBias keeps the power-law base away from exactly zero.
	powerLawBias = 0.01
)

// Mapper converts a similarity score in [0,1] into a target spatial
// distance. It is a plain serializable configuration: a strategy tag
// plus the numeric parameters the strategies read. Fields irrelevant to
// the selected strategy are ignored.
//
// Distances are computed by [Mapper.Distance], which for a fixed config
// is a deterministic pure function of the score.
type Mapper struct {
	Strategy Strategy `json:"strategy" toml:"strategy"`

	// MaxDistance is the distance for similarity 0 under the
	// exponential, linear, and logarithmic strategies.
	MaxDistance float64 `json:"max_distance,omitempty" toml:"max_distance"`

	// Exponent shapes the exponential and powerLaw curves.
	Exponent float64 `json:"exponent,omitempty" toml:"exponent"`

	// RestLength and SpringConstant parameterize the spring strategy.
	RestLength     float64 `json:"rest_length,omitempty" toml:"rest_length"`
	SpringConstant float64 `json:"spring_constant,omitempty" toml:"spring_constant"`

	// Threshold, CloseDistance, and FarDistance parameterize the
	// threshold step function.
	Threshold     float64 `json:"threshold,omitempty" toml:"threshold"`
	CloseDistance float64 `json:"close_distance,omitempty" toml:"close_distance"`
	FarDistance   float64 `json:"far_distance,omitempty" toml:"far_distance"`

	// Scale is the powerLaw magnitude.
	Scale float64 `json:"scale,omitempty" toml:"scale"`
}

// NewMapper returns a mapper for the given strategy with all parameters
// at their defaults.
func NewMapper(s Strategy) Mapper {
	m := Mapper{Strategy: s}
	_ = m.ValidateAndSetDefaults()
	return m
}

// DefaultMapper returns the exponential mapper with default parameters.
func DefaultMapper() Mapper {
	return NewMapper(StrategyExponential)
}

// ValidateAndSetDefaults fills zero-valued parameters with their
// defaults and validates the result. An empty strategy defaults to
// exponential. Safe to call multiple times.
func (m *Mapper) ValidateAndSetDefaults() error {
	if m.Strategy == "" {
		m.Strategy = StrategyExponential
	}
	parsed, err := ParseStrategy(string(m.Strategy))
	if err != nil {
		return err
	}
	m.Strategy = parsed

	if m.MaxDistance == 0 {
		m.MaxDistance = DefaultMaxDistance
	}
	if m.Exponent == 0 {
		m.Exponent = DefaultExponent
	}
	if m.RestLength == 0 {
		m.RestLength = DefaultRestLength
	}
	if m.SpringConstant == 0 {
		m.SpringConstant = DefaultSpringConstant
	}
	if m.Threshold == 0 {
		m.Threshold = DefaultThreshold
	}
	if m.CloseDistance == 0 {
		m.CloseDistance = DefaultCloseDistance
	}
	if m.FarDistance == 0 {
		m.FarDistance = DefaultFarDistance
	}
	if m.Scale == 0 {
		m.Scale = DefaultScale
	}

	switch {
	case m.MaxDistance < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "max distance must be positive, got %g", m.MaxDistance)
	case m.Exponent < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "exponent must be positive, got %g", m.Exponent)
	case m.RestLength < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "rest length must be positive, got %g", m.RestLength)
	case m.SpringConstant < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "spring constant must be positive, got %g", m.SpringConstant)
	case m.Threshold < 0 || m.Threshold > 1:
		return errors.New(errors.ErrCodeInvalidMapper, "threshold must be in [0,1], got %g", m.Threshold)
	case m.CloseDistance < 0 || m.FarDistance < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "threshold distances must be positive")
	case m.Scale < 0:
		return errors.New(errors.ErrCodeInvalidMapper, "scale must be positive, got %g", m.Scale)
	}
	return nil
}

// Distance maps a similarity score to a target distance. The score is
// clamped into [0,1] first.
//
// Every strategy except threshold is monotonically non-increasing in the
// score: identical nodes map to the strategy's minimum distance and
// unrelated nodes to its maximum. The spring strategy can return a
// negative distance when SpringConstant*score exceeds 1; that reads as
// "want overlap" and is deliberately not clamped here. Consumers that
// need non-negative targets floor the result themselves.
func (m Mapper) Distance(score float64) float64 {
	s := clamp01(score)
	switch m.Strategy {
	case StrategyLinear:
		return m.MaxDistance * (1 - s)
	case StrategyLogarithmic:
		// ln(s+eps)/ln(eps) runs 1 -> ~0 as s runs 0 -> 1, dipping
		// slightly below zero at s=1; clamp that tail.
		return math.Max(m.MaxDistance*(math.Log(s+logEpsilon)/math.Log(logEpsilon)), 0)
	case StrategySpring:
		return m.RestLength * (1 - s*m.SpringConstant)
	case StrategyThreshold:
		if s >= m.Threshold {
			return m.CloseDistance
		}
		return m.FarDistance
	case StrategyPowerLaw:
		return m.Scale * math.Pow(1-s+powerLawBias, m.Exponent)
	default:
		// StrategyExponential, and the fallback for the zero Mapper.
		return m.MaxDistance * (1 - math.Pow(s, m.Exponent))
	}
}
