package backend

import (
	"context"
	"fmt"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// TransactionSource returns models.TransactionNotFoundError when the
// transaction is confirmed absent and models.BackendError when the source
// could not answer.
type TransactionSource interface {
	// LookupTransaction finds a transaction by hash. A zero lt matches any.
	LookupTransaction(ctx context.Context, hash models.Hash, lt uint64) (*models.TransactionData, error)
	FetchTransaction(ctx context.Context, loc models.TxLocator) (*models.TransactionData, error)
}

// ChainSource exposes the masterchain head and the shard configuration
// attested by a masterchain block.
type ChainSource interface {
	ChainHead(ctx context.Context) (uint32, error)
	ShardConfig(ctx context.Context, mcSeqno uint32, workchain int32) (models.ShardSeqnoTable, error)
}

type Backend interface {
	TransactionSource
	ChainSource
}

type combined struct {
	TransactionSource
	ChainSource
}

// Combine serves transactions and chain data from different sources, e.g.
// the index database for transactions and liteservers for the shard tree.
func Combine(txs TransactionSource, chain ChainSource) Backend {
	return combined{TransactionSource: txs, ChainSource: chain}
}

// Networks holds one backend per network.
type Networks map[models.Network]Backend

func (n Networks) Get(network models.Network) (Backend, error) {
	b, ok := n[network]
	if !ok || b == nil {
		return nil, models.BackendError{Code: 503, Message: fmt.Sprintf("no backend configured for %s", network)}
	}
	return b, nil
}

func notFound(ref string, network models.Network) error {
	return models.TransactionNotFoundError{Ref: ref, Networks: []models.Network{network}}
}

func (n Networks) Chains() map[models.Network]ChainSource {
	res := make(map[models.Network]ChainSource, len(n))
	for network, b := range n {
		res[network] = b
	}
	return res
}
