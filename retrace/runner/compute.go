package runner

import (
	"fmt"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/emulator"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

func stack(entries []models.StackEntry) []models.StackEntry {
	if entries == nil {
		return []models.StackEntry{}
	}
	return entries
}

// computeLogs turns the worker's trace into vmSteps-1 step logs. The VM
// counts an implicit final step; a trace that includes it has it dropped.
func computeLogs(lt uint64, compute emulator.RawCompute) ([]models.StepLog, error) {
	steps := compute.Steps
	vmSteps := int(compute.VmSteps)
	if vmSteps == 0 {
		return nil, models.DecoderIntegrityError{Lt: lt, Reason: "compute phase reports zero vm steps"}
	}

	var carried *string
	switch len(steps) {
	case vmSteps:
		carried = steps[len(steps)-1].Error
		steps = steps[:len(steps)-1]
	case vmSteps - 1:
	default:
		return nil, models.DecoderIntegrityError{Lt: lt, Reason: fmt.Sprintf("trace has %d steps, vm reported %d", len(steps), vmSteps)}
	}

	logs := make([]models.StepLog, 0, len(steps))
	for i, step := range steps {
		if compute.Success && (step.Instruction == models.UnknownInstruction || len(step.Instruction) == 0) {
			return nil, models.DecoderIntegrityError{Lt: lt, Step: uint32(i), Reason: fmt.Sprintf("unresolved instruction %q in a successful run", step.Instruction)}
		}
		logs = append(logs, models.StepLog{
			Index:        uint32(i),
			Instruction:  step.Instruction,
			GasRemaining: step.GasAfter,
			StackBefore:  stack(step.StackBefore),
			StackAfter:   stack(step.StackAfter),
			Error:        step.Error,
		})
	}

	if !compute.Success && len(logs) > 0 {
		// the VM unwinds the stack on a fault
		last := &logs[len(logs)-1]
		if last.Error == nil || len(*last.Error) == 0 {
			last.Error = carried
		}
		if last.Error == nil || len(*last.Error) == 0 {
			msg := fmt.Sprintf("exit code %d", compute.ExitCode)
			last.Error = &msg
		}
		last.StackAfter = []models.StackEntry{}
	}
	return logs, nil
}
