package chaincfg

// EpochRules is the retargeting regime governing one block height, with the
// timespan bounds derived from the epoch's adjustment limits.
type EpochRules struct {
	Epoch

	// Index is the zero-based position of the epoch in Params.Epochs.
	Index int

	MinActualTimespan int64
	MaxActualTimespan int64
}

// SelectEpoch returns the rules for the block at height: the last epoch whose
// activation height is at or below it. Heights before the first activation
// fall into the first epoch.
func (p *Params) SelectEpoch(height int32) EpochRules {
	idx := 0
	for i := len(p.Epochs) - 1; i > 0; i-- {
		if height >= p.Epochs[i].ActivationHeight {
			idx = i
			break
		}
	}

	e := p.Epochs[idx]
	return EpochRules{
		Epoch:             e,
		Index:             idx,
		MinActualTimespan: e.TargetTimespan * (100 - e.MaxAdjustUp) / 100,
		MaxActualTimespan: e.TargetTimespan * (100 + e.MaxAdjustDown) / 100,
	}
}
