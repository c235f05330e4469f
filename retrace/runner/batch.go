package runner

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// BatchItem is the outcome of one batch input. Exactly one of Report and
// Err is set.
type BatchItem struct {
	Input  string                  `json:"input"`
	Report *models.EmulationReport `json:"report,omitempty"`
	Err    error                   `json:"-"`
}

// EmulateBatch processes inputs in order. A failing item does not stop the
// batch; inputs naming an already emulated transaction reuse its result.
func (r *Runner) EmulateBatch(ctx context.Context, inputs []string, testnet *bool) []BatchItem {
	items := make([]BatchItem, len(inputs))
	done := make(map[string]BatchItem)

	for i, input := range inputs {
		items[i].Input = input
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}
		loc, err := r.resolver.Parse(ctx, input, testnet)
		if err != nil {
			items[i].Err = StageError{Stage: StageLocated, Err: err}
			r.logBatchFailure(i, input, items[i].Err)
			continue
		}
		key := loc.String()
		if prev, ok := done[key]; ok {
			items[i].Report, items[i].Err = prev.Report, prev.Err
			continue
		}
		items[i].Report, items[i].Err = r.Emulate(ctx, loc)
		done[key] = items[i]
		if items[i].Err != nil {
			r.logBatchFailure(i, input, items[i].Err)
		}
	}
	return items
}

func (r *Runner) logBatchFailure(index int, input string, err error) {
	r.logger.WithFields(logrus.Fields{
		"index": index,
		"input": input,
	}).WithError(err).Warn("batch item failed")
}
