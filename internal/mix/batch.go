package mix

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure records a session that could not be mixed.
type Failure struct {
	Session int
	Err     error
}

// Summary reports the outcome of a batch. Every slice is in session order.
type Summary struct {
	Results  []Result
	Failures []Failure
	Skipped  []int // Sessions never attempted because the run was cancelled.
}

// Successful returns the number of sessions mixed.
func (s Summary) Successful() int { return len(s.Results) }

// Failed returns the number of sessions that failed.
func (s Summary) Failed() int { return len(s.Failures) }

// Total returns the number of sessions in the batch.
func (s Summary) Total() int { return len(s.Results) + len(s.Failures) + len(s.Skipped) }

// outcome is the per-slot result filled in by workers.
type outcome struct {
	attempted bool
	result    Result
	err       error
}

// MixAll mixes every session, at most jobs at a time. A failing session is
// logged and recorded, and the batch moves on. When ctx is cancelled no new
// session starts; the unstarted ones are reported as skipped and ctx.Err()
// is returned alongside the partial summary.
func (m *Mixer) MixAll(ctx context.Context, sessions []Session, jobs int) (Summary, error) {
	if jobs < 1 {
		jobs = 1
	}

	outcomes := make([]outcome, len(sessions))
	// Plain group: a failed session must not cancel the others.
	var g errgroup.Group
	g.SetLimit(jobs)

	for i, s := range sessions {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := m.MixSession(ctx, s)
			if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			outcomes[i] = outcome{attempted: true, result: res, err: err}
			if err != nil {
				m.logger.Error("session failed", zap.Int("session", s.Number), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	var sum Summary
	for i, o := range outcomes {
		switch {
		case !o.attempted:
			sum.Skipped = append(sum.Skipped, sessions[i].Number)
		case o.err != nil:
			sum.Failures = append(sum.Failures, Failure{Session: sessions[i].Number, Err: o.err})
		default:
			sum.Results = append(sum.Results, o.result)
		}
	}

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
