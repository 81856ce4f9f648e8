package chaincfg

import (
	"github.com/florincoin/floretarget/pkg/util"
)

const (
	// targetSpacing is 40 seconds on every network.
	targetSpacing = 40

	heightEpoch2 = 208440
	heightEpoch3 = 426000
)

// florincoinEpochs is the retarget schedule shared by the built-in networks:
// 90-block windows, then 15-block windows, then per-block retargets over a
// 6-block window.
var florincoinEpochs = []Epoch{
	{
		ActivationHeight: 0,
		AveragingWindow:  90,
		Interval:         90,
		TargetTimespan:   90 * targetSpacing,
		MaxAdjustUp:      75,
		MaxAdjustDown:    300,
	},
	{
		ActivationHeight: heightEpoch2,
		AveragingWindow:  15,
		Interval:         15,
		TargetTimespan:   15 * targetSpacing,
		MaxAdjustUp:      10,
		MaxAdjustDown:    40,
	},
	{
		ActivationHeight: heightEpoch3,
		AveragingWindow:  6,
		Interval:         1,
		TargetTimespan:   6 * targetSpacing,
		MaxAdjustUp:      1,
		MaxAdjustDown:    3,
	},
}

// MainNetParams defines the main network.
var MainNetParams = mustValidate(&Params{
	Name:          "main",
	PowLimit:      util.MustHexToTarget("00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	TargetSpacing: targetSpacing,
	ClampMode:     ClampTwoSided,
	Epochs:        florincoinEpochs,
})

// TestNetParams defines the public test network. It allows minimum
// difficulty blocks after a stall.
var TestNetParams = mustValidate(&Params{
	Name:                     "test",
	PowLimit:                 util.MustHexToTarget("00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	TargetSpacing:            targetSpacing,
	AllowMinDifficultyBlocks: true,
	ClampMode:                ClampTwoSided,
	Epochs:                   florincoinEpochs,
})

// RegTestParams defines the regression test network. Targets never change.
var RegTestParams = mustValidate(&Params{
	Name:                     "regtest",
	PowLimit:                 util.MustHexToTarget("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	TargetSpacing:            targetSpacing,
	AllowMinDifficultyBlocks: true,
	NoRetargeting:            true,
	ClampMode:                ClampTwoSided,
	Epochs:                   florincoinEpochs,
})

func mustValidate(p *Params) *Params {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}
