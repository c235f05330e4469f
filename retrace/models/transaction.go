package models

// OnchainCompute is the compute phase as recorded in the block.
type OnchainCompute struct {
	Skipped    bool   `msgpack:"skipped"`
	SkipReason string `msgpack:"skip_reason"`
	Success    bool   `msgpack:"success"`
	ExitCode   int32  `msgpack:"exit_code"`
	VmSteps    uint32 `msgpack:"vm_steps"`
	GasUsed    uint64 `msgpack:"gas_used"`
}

// TransactionData is everything the emulator needs to re-execute a
// transaction plus the recorded outcome it has to reproduce.
type TransactionData struct {
	Locator         TxLocator
	McSeqno         uint32
	Now             uint32
	OrigStatus      string
	EndStatus       string
	StateHashBefore Hash
	// StateHashAfter is the new hash of the transaction's state update.
	StateHashAfter Hash
	Compute        *OnchainCompute
}
