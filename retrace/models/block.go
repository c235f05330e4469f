package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MasterchainShard is the only shard of workchain -1.
const MasterchainShard ShardId = -9223372036854775808

type ShardId int64 // @name ShardId

func (v ShardId) String() string {
	return fmt.Sprintf("%X", uint64(v))
}

// ParseShardId accepts a signed decimal (the wire form), a 0x-prefixed hex
// value or the 16-digit hex prefix explorers print.
func ParseShardId(value string) (ShardId, error) {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "0x") || len(lower) == 16 {
		if shard, err := strconv.ParseUint(strings.TrimPrefix(lower, "0x"), 16, 64); err == nil {
			return ShardId(shard), nil
		}
	}
	if shard, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ShardId(shard), nil
	}
	return 0, FormatError{Input: value, Reason: "invalid shard id"}
}

// MarshalJSON writes the shard as a signed decimal string.
func (v ShardId) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(v), 10))
}

func (v *ShardId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = ShardId(n)
		return nil
	}
	// the wire form is decimal even when it happens to be 16 digits long
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = ShardId(n)
		return nil
	}
	res, err := ParseShardId(s)
	if err != nil {
		return err
	}
	*v = res
	return nil
}

// ShardBlockRef identifies one shardchain block.
type ShardBlockRef struct {
	Workchain int32   `json:"workchain"`
	Seqno     uint32  `json:"seqno"`
	Shard     ShardId `json:"shard"`
	RootHash  Hash    `json:"rootHash"`
	FileHash  Hash    `json:"fileHash"`
} // @name ShardBlockRef

type McSeqnoResult struct {
	McSeqno uint32 `json:"mcSeqno"`
} // @name McSeqnoResult

// ShardSeqno is one entry of the shard configuration attested by a
// masterchain block: the latest block of that shard.
type ShardSeqno struct {
	Workchain int32
	Shard     ShardId
	Seqno     uint32
}

type ShardSeqnoTable []ShardSeqno
