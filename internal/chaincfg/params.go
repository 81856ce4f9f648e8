// Package chaincfg holds the per-network consensus parameters consumed by the
// proof-of-work engine.
package chaincfg

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/florincoin/floretarget/pkg/util"
)

// ErrInvalidParams is wrapped by every error returned from Params.Validate.
var ErrInvalidParams = errors.New("invalid chain params")

// ClampMode selects how the measured timespan is bounded during a retarget.
type ClampMode string

const (
	// ClampTwoSided bounds the timespan to [MinActualTimespan, MaxActualTimespan].
	ClampTwoSided ClampMode = "two-sided"

	// ClampLegacy reproduces the historical rule that compared against the
	// minimum bound twice, pinning every retarget to MinActualTimespan.
	ClampLegacy ClampMode = "legacy"
)

// ParseClampMode converts a config string to a ClampMode. Empty selects
// ClampTwoSided.
func ParseClampMode(s string) (ClampMode, error) {
	switch ClampMode(s) {
	case "", ClampTwoSided:
		return ClampTwoSided, nil
	case ClampLegacy:
		return ClampLegacy, nil
	default:
		return "", fmt.Errorf("unknown clamp mode %q", s)
	}
}

// Epoch is one retargeting regime, active from ActivationHeight until the next
// epoch's activation height.
type Epoch struct {
	ActivationHeight int32

	// AveragingWindow is the number of blocks whose elapsed time is measured.
	AveragingWindow int64

	// Interval is the number of blocks between recalculations.
	Interval int64

	// TargetTimespan is the expected duration of the averaging window in
	// seconds (AveragingWindow * TargetSpacing).
	TargetTimespan int64

	// MaxAdjustUp is the largest per-retarget difficulty increase in percent.
	MaxAdjustUp int64

	// MaxAdjustDown is the largest per-retarget difficulty decrease in percent.
	MaxAdjustDown int64
}

// Params is the consensus parameter record of one network.
type Params struct {
	Name string

	// PowLimit is the highest (easiest) permitted target.
	PowLimit *uint256.Int

	// PowLimitBits is PowLimit in compact form. Filled in by Validate when zero.
	PowLimitBits uint32

	// TargetSpacing is the nominal number of seconds between blocks.
	TargetSpacing int64

	// AllowMinDifficultyBlocks enables the test network rule that accepts a
	// PowLimit block once production has stalled for two spacings.
	AllowMinDifficultyBlocks bool

	// NoRetargeting keeps the parent target on every block.
	NoRetargeting bool

	ClampMode ClampMode

	// Epochs is ordered by ActivationHeight; the first activates at height 0.
	Epochs []Epoch
}

// Validate checks the invariants of the record and derives PowLimitBits.
func (p *Params) Validate() error {
	if p.PowLimit == nil || p.PowLimit.IsZero() {
		return fmt.Errorf("%w %s: pow limit must be non-zero", ErrInvalidParams, p.Name)
	}
	if p.TargetSpacing <= 0 {
		return fmt.Errorf("%w %s: target spacing must be positive", ErrInvalidParams, p.Name)
	}
	if _, err := ParseClampMode(string(p.ClampMode)); err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidParams, p.Name, err)
	}
	if len(p.Epochs) == 0 {
		return fmt.Errorf("%w %s: no epochs", ErrInvalidParams, p.Name)
	}
	if p.Epochs[0].ActivationHeight != 0 {
		return fmt.Errorf("%w %s: first epoch must activate at height 0", ErrInvalidParams, p.Name)
	}

	for i, e := range p.Epochs {
		if i > 0 && e.ActivationHeight < p.Epochs[i-1].ActivationHeight {
			return fmt.Errorf("%w %s: epoch %d activates at %d, before epoch %d",
				ErrInvalidParams, p.Name, i+1, e.ActivationHeight, i)
		}
		if e.AveragingWindow < 1 || e.Interval < 1 {
			return fmt.Errorf("%w %s: epoch %d window and interval must be at least 1",
				ErrInvalidParams, p.Name, i+1)
		}
		if e.TargetTimespan != e.AveragingWindow*p.TargetSpacing {
			return fmt.Errorf("%w %s: epoch %d timespan %d != window %d * spacing %d",
				ErrInvalidParams, p.Name, i+1, e.TargetTimespan, e.AveragingWindow, p.TargetSpacing)
		}
		if e.MaxAdjustUp < 0 || e.MaxAdjustUp > 100 || e.MaxAdjustDown < 0 {
			return fmt.Errorf("%w %s: epoch %d adjustment limits out of range",
				ErrInvalidParams, p.Name, i+1)
		}
	}

	limitBits := util.TargetToCompact(p.PowLimit)
	if p.PowLimitBits == 0 {
		p.PowLimitBits = limitBits
	} else if p.PowLimitBits != limitBits {
		return fmt.Errorf("%w %s: pow limit bits 0x%08x do not encode pow limit (0x%08x)",
			ErrInvalidParams, p.Name, p.PowLimitBits, limitBits)
	}
	return nil
}

// WithClampMode returns a copy of the params using mode.
func (p *Params) WithClampMode(mode ClampMode) *Params {
	cp := *p
	cp.Epochs = append([]Epoch(nil), p.Epochs...)
	cp.ClampMode = mode
	return &cp
}

// ParamsForNetwork returns the built-in record for a network name.
func ParamsForNetwork(name string) (*Params, error) {
	switch name {
	case "main", "mainnet":
		return MainNetParams, nil
	case "test", "testnet":
		return TestNetParams, nil
	case "regtest":
		return RegTestParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}
