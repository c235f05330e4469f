package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNetworkRequired is returned in strict mode when the input alone does
// not say which network the transaction belongs to.
var ErrNetworkRequired = errors.New("network must be specified explicitly for this input")

// FormatError is malformed textual input. Never retried.
type FormatError struct {
	Input  string
	Reason string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("invalid format '%s': %s", e.Input, e.Reason)
}

// UnrecognizedLinkError means no dialect in the link table matched.
type UnrecognizedLinkError struct {
	Link string
}

func (e UnrecognizedLinkError) Error() string {
	return fmt.Sprintf("unrecognized transaction link: '%s'", e.Link)
}

// TransactionNotFoundError means every queried backend confirmed absence.
type TransactionNotFoundError struct {
	Ref      string
	Networks []Network
}

func (e TransactionNotFoundError) Error() string {
	nets := make([]string, 0, len(e.Networks))
	for _, n := range e.Networks {
		nets = append(nets, string(n))
	}
	if len(nets) == 0 {
		return fmt.Sprintf("transaction %s not found", e.Ref)
	}
	return fmt.Sprintf("transaction %s not found on %s", e.Ref, strings.Join(nets, ", "))
}

// NotIncludedError means no masterchain block includes the shard block.
type NotIncludedError struct {
	Block  ShardBlockRef
	Reason string
}

func (e NotIncludedError) Error() string {
	return fmt.Sprintf("shard block (%d,%s,%d) is not included in masterchain: %s",
		e.Block.Workchain, e.Block.Shard.String(), e.Block.Seqno, e.Reason)
}

// EmulationBackendError is a transient failure talking to the emulator.
type EmulationBackendError struct {
	Op  string
	Err error
}

func (e EmulationBackendError) Error() string {
	return fmt.Sprintf("emulation backend: %s: %v", e.Op, e.Err)
}

func (e EmulationBackendError) Unwrap() error {
	return e.Err
}

// DecoderIntegrityError means the emulator's trace cannot be trusted, e.g. an
// unknown instruction was reported by a run that succeeded.
type DecoderIntegrityError struct {
	Lt     uint64
	Step   uint32
	Reason string
}

func (e DecoderIntegrityError) Error() string {
	return fmt.Sprintf("decoder integrity violated for tx %d at step %d: %s", e.Lt, e.Step, e.Reason)
}

// BackendError is a transport or server failure of the explorer backend.
type BackendError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e BackendError) Error() string {
	return e.Message
}
