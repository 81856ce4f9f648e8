package florincoind

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/florincoin/floretarget/internal/types"
)

// FetchHeaders downloads best-chain headers for heights from through to, in
// height order. A negative to means the node's current height. limiter paces
// the per-height requests; nil disables pacing.
func FetchHeaders(ctx context.Context, src HeaderSource, from, to int64, limiter *rate.Limiter, logger *zap.Logger) ([]types.BlockHeader, error) {
	if to < 0 {
		count, err := src.GetBlockCount(ctx)
		if err != nil {
			return nil, err
		}
		to = count
	}
	if from < 0 || from > to {
		return nil, fmt.Errorf("invalid height range %d..%d", from, to)
	}

	progress := rate.Sometimes{Interval: 5 * time.Second}
	headers := make([]types.BlockHeader, 0, to-from+1)
	for height := from; height <= to; height++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		hash, err := src.GetBlockHash(ctx, height)
		if err != nil {
			return nil, err
		}
		h, err := src.GetBlockHeader(ctx, hash)
		if err != nil {
			return nil, err
		}
		// A reorg while fetching leaves the range unlinked.
		if n := len(headers); n > 0 && h.PrevBlock != headers[n-1].Hash() {
			return nil, fmt.Errorf("header at height %d does not extend height %d", height, height-1)
		}
		headers = append(headers, *h)

		progress.Do(func() {
			logger.Info("fetching headers",
				zap.Int64("height", height),
				zap.Int64("target", to),
			)
		})
	}
	return headers, nil
}
