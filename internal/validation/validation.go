// Package validation accepts or rejects block headers against the target the
// proof-of-work engine requires of them.
package validation

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/florincoin/floretarget/internal/blockindex"
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/internal/metrics"
	"github.com/florincoin/floretarget/internal/pow"
	"github.com/florincoin/floretarget/internal/types"
)

// Rules reported in ValidationError.Rule and the rejection metric.
const (
	RuleOrphan = "orphan"
	RuleBits   = "bits"
	RulePoW    = "pow"
)

// ValidationError represents a header validation failure.
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("header validation failed: %s", e.Reason)
}

// Validator validates headers against an index holding their ancestors.
type Validator struct {
	chain  blockindex.Reader
	params *chaincfg.Params
	logger *zap.Logger
}

// NewValidator creates a new header validator.
func NewValidator(chain blockindex.Reader, params *chaincfg.Params, logger *zap.Logger) *Validator {
	return &Validator{
		chain:  chain,
		params: params,
		logger: logger,
	}
}

// ValidateHeader checks a header before it is indexed. A header that breaks a
// rule yields a *ValidationError. Errors from the engine, such as a retarget
// window reaching past the indexed chain, are returned wrapped.
func (v *Validator) ValidateHeader(header *types.BlockHeader) error {
	// 1. Parent exists (unless genesis)
	var parent *blockindex.Node
	if !header.IsGenesis() {
		p, ok := v.chain.Get(header.PrevBlock)
		if !ok {
			return v.reject(header, RuleOrphan, fmt.Sprintf("parent %s not found", header.PrevBlockHex()))
		}
		parent = p
	}

	// 2. Declared bits match the engine. The root carries whatever target it
	// was mined at.
	if parent != nil {
		required, err := pow.NextWorkRequired(v.chain, parent, int64(header.Timestamp), v.params)
		if err != nil {
			return fmt.Errorf("required work for %s: %w", header.HashHex(), err)
		}
		if header.Bits != required {
			return v.reject(header, RuleBits, fmt.Sprintf(
				"bits 0x%08x at height %d, expected 0x%08x", header.Bits, parent.Height+1, required))
		}
		v.recordTarget(parent, header)
	}

	// 3. PoW check
	if !pow.CheckProofOfWork(header.PowHash(), header.Bits, v.params) {
		return v.reject(header, RulePoW, fmt.Sprintf("proof of work does not meet bits 0x%08x", header.Bits))
	}

	metrics.HeadersValidated.Inc()
	return nil
}

func (v *Validator) reject(header *types.BlockHeader, rule, reason string) error {
	metrics.HeadersRejected.WithLabelValues(rule).Inc()
	v.logger.Debug("header rejected",
		zap.String("hash", header.HashHex()),
		zap.String("rule", rule),
		zap.String("reason", reason),
	)
	return &ValidationError{Rule: rule, Reason: reason}
}

// recordTarget counts how the accepted target was arrived at.
func (v *Validator) recordTarget(parent *blockindex.Node, header *types.BlockHeader) {
	next := parent.Height + 1
	rules := v.params.SelectEpoch(next)
	if int64(next)%rules.Interval == 0 {
		metrics.Retargets.WithLabelValues(strconv.Itoa(rules.Index + 1)).Inc()
		return
	}

	if v.params.AllowMinDifficultyBlocks &&
		header.Bits == v.params.PowLimitBits &&
		int64(header.Timestamp) > parent.Time()+2*v.params.TargetSpacing {
		metrics.MinDifficultyGrants.Inc()
		v.logger.Debug("minimum difficulty granted",
			zap.Int32("height", next),
			zap.Int64("gap", int64(header.Timestamp)-parent.Time()),
		)
	}
}
