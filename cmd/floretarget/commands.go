package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/florincoin/floretarget/internal/blockindex"
	"github.com/florincoin/floretarget/internal/chaincfg"
	"github.com/florincoin/floretarget/internal/config"
	"github.com/florincoin/floretarget/internal/florincoind"
	"github.com/florincoin/floretarget/internal/headerfile"
	"github.com/florincoin/floretarget/internal/metrics"
	"github.com/florincoin/floretarget/internal/pow"
	"github.com/florincoin/floretarget/internal/types"
	"github.com/florincoin/floretarget/internal/validation"
	"github.com/florincoin/floretarget/internal/version"
	"github.com/florincoin/floretarget/pkg/util"
)

// progressInterval throttles import progress logs.
const progressInterval = 5 * time.Second

var (
	errUsage       = errors.New("usage")
	errInvalidWork = errors.New("proof of work does not meet target")
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	// source overrides the node configured in cfg.Node.
	source florincoind.HeaderSource
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "params":
		return a.params()
	case "replay":
		return a.replay(ctx, args)
	case "next":
		return a.next(ctx, args)
	case "check":
		return a.check(args)
	case "fetch":
		return a.fetch(ctx, args)
	case "decode":
		return a.decode(args)
	case "version":
		fmt.Fprintf(a.out, "floretarget %s\n", version.GetVersionString())
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *app) params() error {
	p, err := a.cfg.ChainParams()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "network:       %s\n", p.Name)
	fmt.Fprintf(a.out, "pow limit:     %s (bits 0x%08x)\n", p.PowLimit.Hex(), p.PowLimitBits)
	fmt.Fprintf(a.out, "spacing:       %ds\n", p.TargetSpacing)
	fmt.Fprintf(a.out, "clamp:         %s\n", p.ClampMode)
	fmt.Fprintf(a.out, "min difficulty blocks: %t, retargeting: %t\n\n", p.AllowMinDifficultyBlocks, !p.NoRetargeting)

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EPOCH\tFROM\tWINDOW\tINTERVAL\tTIMESPAN\tUP%\tDOWN%\tMIN\tMAX")
	for i, e := range p.Epochs {
		rules := p.SelectEpoch(e.ActivationHeight)
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			i+1, e.ActivationHeight, e.AveragingWindow, e.Interval, e.TargetTimespan,
			e.MaxAdjustUp, e.MaxAdjustDown, rules.MinActualTimespan, rules.MaxActualTimespan)
	}
	return w.Flush()
}

func (a *app) replay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	headersFile := fs.String("headers", "", "header dump to replay")
	if err := fs.Parse(args); err != nil || *headersFile == "" {
		return errUsage
	}

	p, headers, err := a.loadDump(*headersFile)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	v := validation.NewValidator(store, p, a.logger)
	tip, err := importHeaders(ctx, store, v, headers, p, a.logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "validated %d headers, tip %s at height %d (%s), bits 0x%08x, difficulty %.8g\n",
		len(headers), util.HashToHex(tip.Hash()), tip.Height, tip.Header.Time().UTC().Format(time.RFC3339),
		tip.Bits(), pow.Difficulty(tip.Bits(), p))
	return nil
}

func (a *app) next(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("next", flag.ContinueOnError)
	headersFile := fs.String("headers", "", "header dump ending at the parent block")
	candidateTime := fs.Int64("time", 0, "timestamp of the candidate block (default now)")
	if err := fs.Parse(args); err != nil || *headersFile == "" {
		return errUsage
	}
	if *candidateTime == 0 {
		*candidateTime = time.Now().Unix()
	}

	p, headers, err := a.loadDump(*headersFile)
	if err != nil {
		return err
	}
	store := blockindex.NewMemStore()
	tip, err := importHeaders(ctx, store, nil, headers, p, a.logger)
	if err != nil {
		return err
	}

	bits, err := pow.NextWorkRequired(store, tip, *candidateTime, p)
	if err != nil {
		return fmt.Errorf("required work above height %d: %w", tip.Height, err)
	}
	target, _, _ := util.CompactToTarget(bits)
	fmt.Fprintf(a.out, "height %d bits %s target %s difficulty %.8g\n",
		tip.Height+1, util.CompactToHex(bits), target.Hex(), pow.Difficulty(bits, p))

	rules := p.SelectEpoch(tip.Height + 1)
	if int64(tip.Height+1)%rules.Interval == 0 {
		window := store.GetAncestors(tip.Hash(), int(rules.AveragingWindow)+1)
		first := window[len(window)-1]
		fmt.Fprintf(a.out, "retarget in epoch %d: heights %d..%d took %ds of %ds\n",
			rules.Index+1, first.Height, tip.Height, tip.Time()-first.Time(), rules.TargetTimespan)
	}
	return nil
}

func (a *app) decode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	bitsHex := fs.String("bits", "", "compact target in hex")
	difficulty := fs.Float64("difficulty", 0, "difficulty relative to the pow limit")
	if err := fs.Parse(args); err != nil || (*bitsHex == "") == (*difficulty == 0) {
		return errUsage
	}

	p, err := a.cfg.ChainParams()
	if err != nil {
		return err
	}

	var bits uint32
	if *bitsHex != "" {
		if bits, err = util.ParseCompactHex(*bitsHex); err != nil {
			return err
		}
	} else {
		bits = util.TargetToCompact(util.DifficultyToTarget(*difficulty, p.PowLimit))
	}

	target, negative, overflow := util.CompactToTarget(bits)
	_, valid := util.ValidTarget(bits, p.PowLimit)
	fmt.Fprintf(a.out, "bits       %s (canonical %s)\n", util.CompactToHex(bits), util.CompactToHex(util.CanonicalCompact(bits)))
	fmt.Fprintf(a.out, "target     %s\n", target.Hex())
	fmt.Fprintf(a.out, "negative   %t\noverflow   %t\nvalid      %t\n", negative, overflow, valid)
	fmt.Fprintf(a.out, "difficulty %.8g\n", pow.Difficulty(bits, p))
	fmt.Fprintf(a.out, "work       %s\n", pow.CalcWork(bits).Dec())
	return nil
}

func (a *app) check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	hashHex := fs.String("hash", "", "proof-of-work hash in display order")
	bitsHex := fs.String("bits", "", "compact target in hex")
	if err := fs.Parse(args); err != nil || *hashHex == "" || *bitsHex == "" {
		return errUsage
	}

	hash, err := util.HexToHash(*hashHex)
	if err != nil {
		return err
	}
	bits, err := util.ParseCompactHex(*bitsHex)
	if err != nil {
		return err
	}
	p, err := a.cfg.ChainParams()
	if err != nil {
		return err
	}

	if !pow.CheckProofOfWork(hash, bits, p) {
		fmt.Fprintf(a.out, "invalid\n")
		return errInvalidWork
	}
	fmt.Fprintf(a.out, "valid\n")
	return nil
}

func (a *app) fetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	outFile := fs.String("out", "", "header dump to write")
	from := fs.Int64("from", 0, "first height")
	to := fs.Int64("to", -1, "last height (default node tip)")
	if err := fs.Parse(args); err != nil || *outFile == "" {
		return errUsage
	}

	p, err := a.cfg.ChainParams()
	if err != nil {
		return err
	}

	src := a.source
	if src == nil {
		src = florincoind.NewRPCClient(a.cfg.Node.RPCURL, a.cfg.Node.RPCUser, a.cfg.Node.RPCPassword)
	}
	var limiter *rate.Limiter
	if a.cfg.Node.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(a.cfg.Node.RateLimit), 1)
	}

	headers, err := florincoind.FetchHeaders(ctx, src, *from, *to, limiter, a.logger)
	if err != nil {
		return err
	}
	if err := headerfile.WriteFile(*outFile, p.Name, headers); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d headers (heights %d..%d) to %s\n",
		len(headers), *from, *from+int64(len(headers))-1, *outFile)
	return nil
}

func (a *app) loadDump(path string) (*chaincfg.Params, []types.BlockHeader, error) {
	p, err := a.cfg.ChainParams()
	if err != nil {
		return nil, nil, err
	}
	dump, err := headerfile.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if dump.Network != p.Name {
		return nil, nil, fmt.Errorf("dump is for network %q, configured network is %q", dump.Network, p.Name)
	}
	if len(dump.Headers) == 0 {
		return nil, nil, fmt.Errorf("dump %s holds no headers", path)
	}
	return p, dump.BlockHeaders(), nil
}

func (a *app) openStore() (blockindex.Store, error) {
	switch a.cfg.Index.Backend {
	case config.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(a.cfg.Index.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		return blockindex.NewBoltStore(a.cfg.Index.Path, a.logger)
	default:
		return blockindex.NewMemStore(), nil
	}
}

// importHeaders adds headers to store in order, validating each one first when
// v is set. Headers already in the store are skipped. The store tip and chain
// gauges are moved to the last header.
func importHeaders(ctx context.Context, store blockindex.Store, v *validation.Validator, headers []types.BlockHeader, p *chaincfg.Params, logger *zap.Logger) (*blockindex.Node, error) {
	progress := rate.Sometimes{Interval: progressInterval}
	work := new(uint256.Int)

	var tip *blockindex.Node
	for i := range headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		h := &headers[i]
		n, ok := store.Get(h.Hash())
		if !ok {
			if v != nil {
				if err := v.ValidateHeader(h); err != nil {
					return nil, fmt.Errorf("header %d (%s): %w", i, h.HashHex(), err)
				}
			}
			var err error
			if n, err = store.Add(*h); err != nil {
				return nil, err
			}
		}
		tip = n
		work.Add(work, pow.CalcWork(n.Bits()))

		progress.Do(func() {
			logger.Info("importing headers",
				zap.Int32("height", n.Height),
				zap.Int("remaining", len(headers)-i-1),
			)
		})
	}

	if err := store.SetTip(tip.Hash()); err != nil {
		return nil, err
	}

	chainWork, _ := new(big.Float).SetInt(work.ToBig()).Float64()
	metrics.ChainHeight.Set(float64(tip.Height))
	metrics.ChainDifficulty.Set(pow.Difficulty(tip.Bits(), p))
	metrics.ChainWork.Set(chainWork)

	logger.Info("headers imported",
		zap.Int("count", len(headers)),
		zap.Int32("height", tip.Height),
		zap.String("tip", util.HashToHex(tip.Hash())),
		zap.String("work", work.Dec()),
	)
	return tip, nil
}
