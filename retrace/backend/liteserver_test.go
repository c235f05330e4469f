package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/xssnick/tonutils-go/ton"
)

type fakeLiteAPI struct {
	head   uint32
	shards map[uint32][]*ton.BlockIDExt
}

func (f *fakeLiteAPI) GetMasterchainInfo(ctx context.Context) (*ton.BlockIDExt, error) {
	return &ton.BlockIDExt{Workchain: -1, Shard: int64(models.MasterchainShard), SeqNo: f.head}, nil
}

func (f *fakeLiteAPI) LookupBlock(ctx context.Context, workchain int32, shard int64, seqno uint32) (*ton.BlockIDExt, error) {
	if seqno > f.head {
		return nil, errors.New("block is not applied")
	}
	return &ton.BlockIDExt{Workchain: workchain, Shard: shard, SeqNo: seqno}, nil
}

func (f *fakeLiteAPI) GetBlockShardsInfo(ctx context.Context, master *ton.BlockIDExt) ([]*ton.BlockIDExt, error) {
	return f.shards[master.SeqNo], nil
}

func TestLiteChain(t *testing.T) {
	api := &fakeLiteAPI{
		head: 100,
		shards: map[uint32][]*ton.BlockIDExt{
			50: {
				{Workchain: 0, Shard: int64(-4611686018427387904), SeqNo: 700},
				{Workchain: 0, Shard: 4611686018427387904, SeqNo: 702},
				{Workchain: 1, Shard: int64(models.MasterchainShard), SeqNo: 3},
			},
		},
	}
	chain := &LiteChain{api: api}
	ctx := context.Background()

	head, err := chain.ChainHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), head)

	table, err := chain.ShardConfig(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "C000000000000000", table[0].Shard.String())
	assert.Equal(t, uint32(702), table[1].Seqno)

	table, err = chain.ShardConfig(ctx, 50, -1)
	require.NoError(t, err)
	assert.Equal(t, models.ShardSeqnoTable{{Workchain: -1, Shard: models.MasterchainShard, Seqno: 50}}, table)

	_, err = chain.ShardConfig(ctx, 101, 0)
	var backendErr models.BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Contains(t, backendErr.Message, "block is not applied")
}

func TestCombine(t *testing.T) {
	txs := NewToncenter("http://127.0.0.1:1", "", models.Mainnet, 0, nil)
	chain := &LiteChain{api: &fakeLiteAPI{head: 7}}
	b := Combine(txs, chain)

	head, err := b.ChainHead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(7), head)

	networks := Networks{models.Mainnet: b}
	got, err := networks.Get(models.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	_, err = networks.Get(models.Testnet)
	assert.ErrorAs(t, err, &models.BackendError{})
}
