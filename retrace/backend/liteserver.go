package backend

import (
	"context"
	"fmt"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/ratelimit"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
)

// liteAPI is the part of ton.APIClient the chain source needs.
type liteAPI interface {
	GetMasterchainInfo(ctx context.Context) (*ton.BlockIDExt, error)
	LookupBlock(ctx context.Context, workchain int32, shard int64, seqno uint32) (*ton.BlockIDExt, error)
	GetBlockShardsInfo(ctx context.Context, master *ton.BlockIDExt) ([]*ton.BlockIDExt, error)
}

// LiteChain reads the masterchain head and shard configuration straight
// from liteservers.
type LiteChain struct {
	api     liteAPI
	limiter *ratelimit.Limiter
}

// NewLiteChain connects to the liteservers listed in a global config, e.g.
// https://ton.org/global.config.json.
func NewLiteChain(ctx context.Context, configUrl string, limiter *ratelimit.Limiter) (*LiteChain, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configUrl); err != nil {
		return nil, fmt.Errorf("failed to connect to liteservers from %s: %w", configUrl, err)
	}
	return &LiteChain{api: ton.NewAPIClient(pool), limiter: limiter}, nil
}

func (l *LiteChain) ChainHead(ctx context.Context) (uint32, error) {
	if err := l.limiter.Acquire(ctx); err != nil {
		return 0, err
	}
	master, err := l.api.GetMasterchainInfo(ctx)
	if err != nil {
		return 0, models.BackendError{Code: 502, Message: fmt.Sprintf("failed to get masterchain info: %v", err)}
	}
	return master.SeqNo, nil
}

func (l *LiteChain) ShardConfig(ctx context.Context, mcSeqno uint32, workchain int32) (models.ShardSeqnoTable, error) {
	if err := l.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	master, err := l.api.LookupBlock(ctx, -1, int64(models.MasterchainShard), mcSeqno)
	if err != nil {
		return nil, models.BackendError{Code: 502, Message: fmt.Sprintf("failed to lookup masterchain block %d: %v", mcSeqno, err)}
	}
	if workchain == -1 {
		return models.ShardSeqnoTable{{Workchain: -1, Shard: models.MasterchainShard, Seqno: master.SeqNo}}, nil
	}
	shards, err := l.api.GetBlockShardsInfo(ctx, master)
	if err != nil {
		return nil, models.BackendError{Code: 502, Message: fmt.Sprintf("failed to get shards of masterchain block %d: %v", mcSeqno, err)}
	}
	table := models.ShardSeqnoTable{}
	for _, blk := range shards {
		if blk.Workchain != workchain {
			continue
		}
		table = append(table, models.ShardSeqno{Workchain: blk.Workchain, Shard: models.ShardId(blk.Shard), Seqno: blk.SeqNo})
	}
	return table, nil
}
