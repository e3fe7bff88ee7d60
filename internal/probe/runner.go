package probe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mediaprobe/internal/logging"
)

// FileSink is a per-file Sink whose output is written no later than Commit.
type FileSink interface {
	Sink
	Commit() error
}

// Output hands out one FileSink per input.
type Output interface {
	FileSink(path string) FileSink
}

// Outcome is the result of probing one input.
type Outcome struct {
	Path      string
	Container *Container
	Err       error
	Started   time.Time
	Elapsed   time.Duration
}

// Recorder persists outcomes; failures to record are logged, not returned.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Summary describes a whole run.
type Summary struct {
	Probed   int
	Failed   int
	Skipped  int
	Failures []error
}

// Runner probes a list of inputs.
type Runner struct {
	Prober *Prober
	// Jobs bounds the number of files probed at once; values below 1 mean 1.
	Jobs int
	// KeepGoing continues past failed files and makes the run succeed.
	KeepGoing bool
	Recorder  Recorder
	Logger    *slog.Logger
}

// recordTimeout bounds one history write, lock wait included.
const recordTimeout = 5 * time.Second

type job struct {
	sink    FileSink
	outcome Outcome
	done    chan struct{}
}

// Run probes paths and commits their output in input order. Without
// KeepGoing nothing after the first failed file is committed and the first
// failure is returned.
func (r *Runner) Run(ctx context.Context, paths []string, out Output) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	limit := r.Jobs
	if limit < 1 {
		limit = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var summary Summary
	if limit == 1 {
		// One file at a time: a sink is only created once every earlier
		// file has settled, so sinks may write before Commit.
		for i, path := range paths {
			j := &job{sink: out.FileSink(path), outcome: Outcome{Path: path}}
			r.probe(ctx, j)
			if err := r.settle(ctx, j, &summary, logger); err != nil {
				r.skipRest(&summary, len(paths)-i-1, logger)
				return summary, err
			}
		}
		return summary, nil
	}

	jobs := make([]*job, len(paths))
	for i, path := range paths {
		jobs[i] = &job{sink: out.FileSink(path), outcome: Outcome{Path: path}, done: make(chan struct{})}
	}

	var g errgroup.Group
	g.SetLimit(limit)
	go func() {
		for _, j := range jobs {
			g.Go(func() error {
				defer close(j.done)
				r.probe(ctx, j)
				return nil
			})
		}
	}()

	var first error
	for i, j := range jobs {
		<-j.done
		if first != nil {
			continue
		}
		if err := r.settle(ctx, j, &summary, logger); err != nil {
			first = err
			r.skipRest(&summary, len(jobs)-i-1, logger)
			cancel()
		}
	}
	_ = g.Wait()

	if first != nil {
		return summary, first
	}
	return summary, nil
}

func (r *Runner) probe(ctx context.Context, j *job) {
	if ctx.Err() != nil {
		j.outcome.Err = context.Canceled
		return
	}
	j.outcome.Started = time.Now()
	j.outcome.Container, j.outcome.Err = r.Prober.ProbeFile(ctx, j.outcome.Path, j.sink)
	j.outcome.Elapsed = time.Since(j.outcome.Started)
}

// settle commits and records a finished job. It returns the job's error when
// the run has to stop.
func (r *Runner) settle(ctx context.Context, j *job, summary *Summary, logger *slog.Logger) error {
	if j.outcome.Err == nil {
		if err := j.sink.Commit(); err != nil {
			j.outcome.Err = &FileError{Path: j.outcome.Path, Op: "report", Err: err}
		}
	}
	r.record(ctx, j.outcome, logger)
	if j.outcome.Err == nil {
		summary.Probed++
		return nil
	}
	summary.Failed++
	summary.Failures = append(summary.Failures, j.outcome.Err)
	logger.Error("probe failed",
		logging.String(logging.FieldFile, j.outcome.Path),
		logging.Error(j.outcome.Err),
		logging.String(logging.FieldEventType, "probe_failed"),
	)
	if r.KeepGoing {
		return nil
	}
	return j.outcome.Err
}

func (r *Runner) skipRest(summary *Summary, rest int, logger *slog.Logger) {
	if rest <= 0 {
		return
	}
	summary.Skipped += rest
	logger.Info("stopping after failure", logging.Int("skipped_files", rest))
}

func (r *Runner) record(ctx context.Context, outcome Outcome, logger *slog.Logger) {
	if r.Recorder == nil {
		return
	}
	// Errors from our own cancellation are not worth a history row.
	if errors.Is(outcome.Err, context.Canceled) && ctx.Err() != nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := r.Recorder.Record(recordCtx, outcome); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write_failed",
			logging.String(logging.FieldFile, outcome.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "this probe is missing from history"),
		)
	}
}
