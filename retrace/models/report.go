package models

import (
	"encoding/json"
)

// UnknownInstruction is what the emulator reports for an opcode its
// disassembler could not decode.
const UnknownInstruction = "unknown instruction"

type StackEntry struct {
	Type  string `json:"type" msgpack:"type"`
	Value string `json:"value" msgpack:"value"`
} // @name StackEntry

type StepLog struct {
	Index        uint32       `json:"index"`
	Instruction  string       `json:"instruction"`
	GasRemaining uint64       `json:"gasRemaining,string"`
	StackBefore  []StackEntry `json:"stackBefore"`
	StackAfter   []StackEntry `json:"stackAfter"`
	Error        *string      `json:"error,omitempty"`
} // @name StepLog

type ComputePhaseInfo struct {
	VmSteps  uint32 `json:"vmSteps"`
	Success  bool   `json:"success"`
	ExitCode int32  `json:"exitCode"`
	GasUsed  uint64 `json:"gasUsed,string"`
} // @name ComputePhaseInfo

// EmulationReport is the result of one emulation request. ComputeInfo is nil
// when the compute phase was skipped; otherwise len(ComputeLogs) is
// ComputeInfo.VmSteps-1.
type EmulationReport struct {
	Lt                uint64            `json:"lt,string"`
	StateUpdateHashOk bool              `json:"stateUpdateHashOk"`
	ComputeInfo       *ComputePhaseInfo `json:"computeInfo"`
	SkipReason        string            `json:"skipReason,omitempty"`
	ComputeLogs       []StepLog         `json:"computeLogs"`
} // @name EmulationReport

func (r *EmulationReport) Skipped() bool {
	return r.ComputeInfo == nil
}

// MarshalJSON renders a skipped compute phase as the string "skipped".
func (r EmulationReport) MarshalJSON() ([]byte, error) {
	type plain EmulationReport
	if r.ComputeLogs == nil {
		r.ComputeLogs = []StepLog{}
	}
	if r.ComputeInfo != nil {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		ComputeInfo string `json:"computeInfo"`
	}{plain: plain(r), ComputeInfo: "skipped"})
}
