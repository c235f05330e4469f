package emulator

import (
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/vmihailenco/msgpack/v5"
)

const retraceTaskType = "retrace"

// RetraceTask asks the emulator worker to re-execute one transaction on top
// of the account state and config of its masterchain block.
type RetraceTask struct {
	ID              string `msgpack:"id"`
	Account         string `msgpack:"account"`
	Lt              uint64 `msgpack:"lt"`
	Hash            string `msgpack:"hash"`
	McBlockSeqno    uint32 `msgpack:"mc_block_seqno"`
	Testnet         bool   `msgpack:"testnet"`
	StateHashBefore string `msgpack:"state_hash_before"`
	IncludeStack    bool   `msgpack:"include_stack"`
}

type TaskEnvelope struct {
	Type string `msgpack:"type"`
	Task any    `msgpack:"task"`
}

func encodeRetraceTask(enc *msgpack.Encoder, t RetraceTask) error {
	enc.UseArrayEncodedStructs(false) // map-encoding
	return enc.Encode(TaskEnvelope{Type: retraceTaskType, Task: t})
}

func NewRetraceTask(id string, tx *models.TransactionData) RetraceTask {
	return RetraceTask{
		ID:              id,
		Account:         tx.Locator.Address.Raw(),
		Lt:              tx.Locator.Lt,
		Hash:            tx.Locator.Hash.Base64(),
		McBlockSeqno:    tx.McSeqno,
		Testnet:         tx.Locator.Network.IsTestnet(),
		StateHashBefore: tx.StateHashBefore.Base64(),
		IncludeStack:    true,
	}
}

// RawStep is one executed instruction as the worker reports it.
type RawStep struct {
	Instruction string              `msgpack:"instruction"`
	GasBefore   uint64              `msgpack:"gas_before"`
	GasAfter    uint64              `msgpack:"gas_after"`
	StackBefore []models.StackEntry `msgpack:"stack_before"`
	StackAfter  []models.StackEntry `msgpack:"stack_after"`
	Error       *string             `msgpack:"error"`
}

type RawCompute struct {
	Skipped    bool      `msgpack:"skipped"`
	SkipReason string    `msgpack:"skip_reason"`
	Success    bool      `msgpack:"success"`
	ExitCode   int32     `msgpack:"exit_code"`
	GasUsed    uint64    `msgpack:"gas_used"`
	VmSteps    uint32    `msgpack:"vm_steps"`
	Steps      []RawStep `msgpack:"steps"`
}

// RawEmulation is the worker's result. AccountStateBoc is the serialized
// account state after re-execution when the worker includes it.
type RawEmulation struct {
	StateUpdateHash models.Hash `msgpack:"state_update_hash"`
	AccountStateBoc []byte      `msgpack:"account_state_boc,omitempty"`
	Compute         RawCompute  `msgpack:"compute"`
}
