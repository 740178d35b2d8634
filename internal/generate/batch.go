package generate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/strmarr/strmarr/internal/library"
)

// Batch pacing: once a batch crosses the size threshold, a randomized
// delay runs before every item after the first so rapid successive
// detail fetches don't trip upstream anti-bot defenses.
const (
	batchDelayThreshold = 5
	batchDelayMin       = 1500 * time.Millisecond
	batchDelayMax       = 4 * time.Second
)

// ItemStatus is the outcome class of one batch item.
type ItemStatus string

const (
	StatusSuccess   ItemStatus = "success"
	StatusFailure   ItemStatus = "failure"
	StatusException ItemStatus = "exception"
)

// BatchItem is one title's outcome within a batch.
type BatchItem struct {
	Name   string     `json:"vod_name"`
	Status ItemStatus `json:"status"`
	Msg    string     `json:"msg,omitempty"`
	Log    []string   `json:"logs"`
}

// BatchResult collects every item outcome plus batch-level log entries.
type BatchResult struct {
	Items []BatchItem `json:"results"`
	Log   []string    `json:"logs"`
}

// Batch generates the given titles strictly in order. Sequential on
// purpose: pacing delays only mean something when requests are serialized,
// and per-item logs stay readable. One item's failure or panic never stops
// the rest of the batch.
func (g *Generator) Batch(ctx context.Context, st *library.Settings, reqs []Request) *BatchResult {
	out := &BatchResult{}
	useDelay := len(reqs) > batchDelayThreshold
	out.Log = append(out.Log, fmt.Sprintf("batch of %d item(s), pacing %s",
		len(reqs), map[bool]string{true: "on", false: "off"}[useDelay]))

	for i, req := range reqs {
		item := BatchItem{Name: req.Name}

		if useDelay && i > 0 {
			delay := batchDelayMin + time.Duration(rand.Int64N(int64(batchDelayMax-batchDelayMin)))
			item.Log = append(item.Log, fmt.Sprintf("pacing delay: %.2fs", delay.Seconds()))
			g.sleep(ctx, delay)
		}

		res := g.generateRecovered(ctx, st, req)
		item.Log = append(item.Log, res.Log...)
		item.Msg = res.Msg
		switch {
		case res.OK:
			item.Status = StatusSuccess
		case res.panicked:
			item.Status = StatusException
		default:
			item.Status = StatusFailure
		}
		out.Items = append(out.Items, item)
	}

	out.Log = append(out.Log, "batch complete")
	return out
}

type recoveredResult struct {
	*Result
	panicked bool
}

// generateRecovered shields the batch from a panicking item.
func (g *Generator) generateRecovered(ctx context.Context, st *library.Settings, req Request) (out recoveredResult) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("generation panicked", "title", req.Name, "panic", r)
			out.panicked = true
			out.Result = &Result{
				Msg: fmt.Sprintf("internal error: %v", r),
				Log: []string{fmt.Sprintf("processing aborted by internal error: %v", r)},
			}
		}
	}()
	out.Result = g.Generate(ctx, st, req)
	return out
}
