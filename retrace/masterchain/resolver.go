package masterchain

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/backend"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// Resolver finds the first masterchain block that commits to a shard block.
// Nothing is cached: the chain head moves between calls.
type Resolver struct {
	chains map[models.Network]backend.ChainSource
	logger *logrus.Logger
}

func NewResolver(chains map[models.Network]backend.ChainSource, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{chains: chains, logger: logger}
}

// Resolve returns the smallest masterchain seqno m in [1, head] whose shard
// configuration has the block's shard at or past ref.Seqno. A block whose
// seqno equals the attested one counts as included.
func (r *Resolver) Resolve(ctx context.Context, ref models.ShardBlockRef, network models.Network) (models.McSeqnoResult, error) {
	if ref.Workchain == -1 {
		return models.McSeqnoResult{McSeqno: ref.Seqno}, nil
	}
	chain, ok := r.chains[network]
	if !ok || chain == nil {
		return models.McSeqnoResult{}, models.BackendError{Code: 503, Message: fmt.Sprintf("no chain source configured for %s", network)}
	}

	head, err := chain.ChainHead(ctx)
	if err != nil {
		return models.McSeqnoResult{}, err
	}
	top := func(mcSeqno uint32) (uint32, bool, error) {
		table, err := chain.ShardConfig(ctx, mcSeqno, ref.Workchain)
		if err != nil {
			return 0, false, err
		}
		seqno, found := topSeqno(table, ref.Workchain, ref.Shard)
		return seqno, found, nil
	}

	headTop, found, err := top(head)
	if err != nil {
		return models.McSeqnoResult{}, err
	}
	if !found {
		return models.McSeqnoResult{}, models.NotIncludedError{Block: ref, Reason: fmt.Sprintf("shard %s is absent from workchain %d", ref.Shard, ref.Workchain)}
	}
	if headTop < ref.Seqno {
		return models.McSeqnoResult{}, models.NotIncludedError{Block: ref, Reason: fmt.Sprintf("masterchain head %d only reaches seqno %d", head, headTop)}
	}

	lo, hi := uint32(1), head
	queried := 1
	for lo < hi {
		mid := lo + (hi-lo)/2
		seqno, found, err := top(mid)
		if err != nil {
			return models.McSeqnoResult{}, err
		}
		queried++
		if found && seqno >= ref.Seqno {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	r.logger.WithFields(logrus.Fields{
		"workchain": ref.Workchain,
		"shard":     ref.Shard.String(),
		"seqno":     ref.Seqno,
		"mc_seqno":  lo,
		"queried":   queried,
	}).Debug("resolved masterchain seqno")
	return models.McSeqnoResult{McSeqno: lo}, nil
}
