package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/backend"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/emulator"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/links"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

type Stage int

const (
	StageLocated Stage = iota
	StageFetched
	StageEmulated
	StageValidated
	StageReported
)

func (s Stage) String() string {
	switch s {
	case StageLocated:
		return "locate"
	case StageFetched:
		return "fetch"
	case StageEmulated:
		return "emulate"
	case StageValidated:
		return "validate"
	case StageReported:
		return "report"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError is a terminal failure of one emulation request.
type StageError struct {
	Stage Stage
	Err   error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e StageError) Unwrap() error {
	return e.Err
}

type Emulator interface {
	Emulate(ctx context.Context, tx *models.TransactionData) (*emulator.RawEmulation, error)
}

// Runner re-executes transactions and reconciles the result with the chain.
type Runner struct {
	resolver *links.Resolver
	sources  backend.Networks
	emulator Emulator
	logger   *logrus.Logger
}

func NewRunner(resolver *links.Resolver, sources backend.Networks, emu Emulator, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{resolver: resolver, sources: sources, emulator: emu, logger: logger}
}

// EmulateLink resolves input first; see links.Resolver.Parse for testnet.
func (r *Runner) EmulateLink(ctx context.Context, input string, testnet *bool) (*models.EmulationReport, error) {
	loc, err := r.resolver.Parse(ctx, input, testnet)
	if err != nil {
		return nil, StageError{Stage: StageLocated, Err: err}
	}
	return r.Emulate(ctx, loc)
}

func (r *Runner) Emulate(ctx context.Context, loc models.TxLocator) (*models.EmulationReport, error) {
	source, err := r.sources.Get(loc.Network)
	if err != nil {
		return nil, StageError{Stage: StageFetched, Err: err}
	}
	tx, err := source.FetchTransaction(ctx, loc)
	if err != nil {
		return nil, StageError{Stage: StageFetched, Err: err}
	}

	raw, err := r.emulate(ctx, tx)
	if err != nil {
		return nil, StageError{Stage: StageEmulated, Err: err}
	}

	report := &models.EmulationReport{
		Lt:                loc.Lt,
		StateUpdateHashOk: r.validate(tx, raw),
	}
	r.crossCheck(tx, raw)

	if raw.Compute.Skipped {
		report.SkipReason = raw.Compute.SkipReason
		report.ComputeLogs = []models.StepLog{}
		return report, nil
	}
	logs, err := computeLogs(loc.Lt, raw.Compute)
	if err != nil {
		return nil, StageError{Stage: StageReported, Err: err}
	}
	report.ComputeInfo = &models.ComputePhaseInfo{
		VmSteps:  raw.Compute.VmSteps,
		Success:  raw.Compute.Success,
		ExitCode: raw.Compute.ExitCode,
		GasUsed:  raw.Compute.GasUsed,
	}
	report.ComputeLogs = logs
	return report, nil
}

// emulate retries a backend failure once; the client waits on the limiter
// again before the second attempt.
func (r *Runner) emulate(ctx context.Context, tx *models.TransactionData) (*emulator.RawEmulation, error) {
	raw, err := r.emulator.Emulate(ctx, tx)
	if err == nil || !errors.As(err, &models.EmulationBackendError{}) || ctx.Err() != nil {
		return raw, err
	}
	r.logger.WithFields(logrus.Fields{
		"lt":      tx.Locator.Lt,
		"network": tx.Locator.Network,
	}).WithError(err).Warn("emulation failed, retrying")
	return r.emulator.Emulate(ctx, tx)
}

// validate compares the emulated state update with the recorded one. When
// the worker returns the new account state its cell hash must match too.
func (r *Runner) validate(tx *models.TransactionData, raw *emulator.RawEmulation) bool {
	log := r.logger.WithFields(logrus.Fields{"lt": tx.Locator.Lt, "network": tx.Locator.Network})
	ok := raw.StateUpdateHash == tx.StateHashAfter
	if !ok {
		log.WithFields(logrus.Fields{
			"expected": tx.StateHashAfter.Base64(),
			"emulated": raw.StateUpdateHash.Base64(),
		}).Warn("state update hash mismatch")
	}
	if len(raw.AccountStateBoc) == 0 {
		return ok
	}
	state, err := cell.FromBOC(raw.AccountStateBoc)
	if err != nil {
		log.WithError(err).Warn("failed to parse emulated account state")
		return false
	}
	if !bytes.Equal(state.Hash(), tx.StateHashAfter[:]) {
		log.Warn("emulated account state hash does not match the recorded one")
		return false
	}
	return ok
}

// crossCheck logs where the emulated compute phase diverges from the one
// recorded in the block.
func (r *Runner) crossCheck(tx *models.TransactionData, raw *emulator.RawEmulation) {
	onchain := tx.Compute
	if onchain == nil {
		return
	}
	emulated := raw.Compute
	fields := logrus.Fields{}
	if onchain.Skipped != emulated.Skipped {
		fields["skipped"] = fmt.Sprintf("%v != %v", onchain.Skipped, emulated.Skipped)
	} else if !onchain.Skipped {
		if onchain.VmSteps != emulated.VmSteps {
			fields["vm_steps"] = fmt.Sprintf("%d != %d", onchain.VmSteps, emulated.VmSteps)
		}
		if onchain.ExitCode != emulated.ExitCode {
			fields["exit_code"] = fmt.Sprintf("%d != %d", onchain.ExitCode, emulated.ExitCode)
		}
		if onchain.Success != emulated.Success {
			fields["success"] = fmt.Sprintf("%v != %v", onchain.Success, emulated.Success)
		}
	}
	if len(fields) > 0 {
		fields["lt"] = tx.Locator.Lt
		r.logger.WithFields(fields).Warn("emulated compute phase differs from the recorded one")
	}
}
