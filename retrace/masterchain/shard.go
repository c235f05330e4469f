package masterchain

import "github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"

// A shard id is a prefix terminated by its lowest set bit.
func lowerBit(x uint64) uint64 {
	return x & (^x + 1)
}

// shardsIntersect reports whether one shard prefix contains the other.
func shardsIntersect(a, b models.ShardId) bool {
	x, y := uint64(a), uint64(b)
	z := max(lowerBit(x), lowerBit(y))
	mask := (^z + 1) << 1
	return (x^y)&mask == 0
}

// topSeqno returns the highest seqno among entries overlapping shard.
func topSeqno(table models.ShardSeqnoTable, workchain int32, shard models.ShardId) (uint32, bool) {
	var top uint32
	found := false
	for _, item := range table {
		if item.Workchain != workchain || !shardsIntersect(item.Shard, shard) {
			continue
		}
		if !found || item.Seqno > top {
			top = item.Seqno
		}
		found = true
	}
	return top, found
}
