package probe

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"mediaprobe/internal/media"
)

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *countingRecorder) Record(_ context.Context, outcome Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

func pathOpener(failing ...string) OpenFunc {
	return func(_ context.Context, path string) (media.Demuxer, error) {
		for _, f := range failing {
			if path == f {
				return nil, errors.New("unknown format")
			}
		}
		return &fakeDemuxer{
			format:  media.FormatInfo{Name: "fake"},
			streams: []media.StreamInfo{{CodecType: media.CodecTypeAudio}},
			packets: []media.Packet{audioPacket(0, 0, []byte(path))},
		}, nil
	}
}

func TestRunnerCommitsInInputOrder(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e", "f"}
	out := &recordingOutput{}
	recorder := &countingRecorder{}
	runner := &Runner{
		Prober:   NewProber(pathOpener(), &scriptedOpener{}, allShown(), nil),
		Jobs:     4,
		Recorder: recorder,
	}

	summary, err := runner.Run(context.Background(), paths, out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(out.committed, paths) {
		t.Fatalf("committed %v, want %v", out.committed, paths)
	}
	if summary.Probed != len(paths) || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(recorder.outcomes) != len(paths) {
		t.Fatalf("recorded %d outcomes", len(recorder.outcomes))
	}
	for _, o := range recorder.outcomes {
		if o.Container == nil || o.Container.Packets != 1 {
			t.Fatalf("outcome for %s missing counters", o.Path)
		}
	}
}

func TestRunnerStopsAtFirstFailure(t *testing.T) {
	for _, jobs := range []int{1, 3} {
		out := &recordingOutput{}
		runner := &Runner{
			Prober: NewProber(pathOpener("b"), &scriptedOpener{}, allShown(), nil),
			Jobs:   jobs,
		}
		summary, err := runner.Run(context.Background(), []string{"a", "b", "c", "d"}, out)
		var fileErr *FileError
		if !errors.As(err, &fileErr) || fileErr.Path != "b" {
			t.Fatalf("jobs=%d: expected failure for b, got %v", jobs, err)
		}
		if !reflect.DeepEqual(out.committed, []string{"a"}) {
			t.Fatalf("jobs=%d: committed %v, want [a]", jobs, out.committed)
		}
		if summary.Probed != 1 || summary.Failed != 1 || summary.Skipped != 2 {
			t.Fatalf("jobs=%d: unexpected summary %+v", jobs, summary)
		}
	}
}

func TestRunnerSingleJobOpensSinksOneAtATime(t *testing.T) {
	out := &recordingOutput{}
	runner := &Runner{
		Prober: NewProber(pathOpener("b"), &scriptedOpener{}, allShown(), nil),
		Jobs:   1,
	}
	if _, err := runner.Run(context.Background(), []string{"a", "b", "c"}, out); err == nil {
		t.Fatal("expected the failure of b")
	}
	if !reflect.DeepEqual(out.opened, []string{"a", "b"}) {
		t.Fatalf("opened sinks %v, want [a b]", out.opened)
	}
}

type deadlineRecorder struct {
	deadlines []time.Duration
}

func (r *deadlineRecorder) Record(ctx context.Context, _ Outcome) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		r.deadlines = append(r.deadlines, -1)
		return nil
	}
	r.deadlines = append(r.deadlines, time.Until(deadline))
	return ctx.Err()
}

func TestRunnerBoundsHistoryWrites(t *testing.T) {
	recorder := &deadlineRecorder{}
	runner := &Runner{
		Prober:   NewProber(pathOpener(), &scriptedOpener{}, allShown(), nil),
		Recorder: recorder,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := runner.Run(ctx, []string{"a", "b"}, &recordingOutput{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(recorder.deadlines) != 2 {
		t.Fatalf("recorded %d outcomes", len(recorder.deadlines))
	}
	for _, left := range recorder.deadlines {
		if left <= 0 || left > recordTimeout {
			t.Fatalf("history write deadline %v, want within (0, %v]", left, recordTimeout)
		}
	}
}

func TestRunnerKeepGoing(t *testing.T) {
	out := &recordingOutput{}
	runner := &Runner{
		Prober:    NewProber(pathOpener("b", "d"), &scriptedOpener{}, allShown(), nil),
		Jobs:      2,
		KeepGoing: true,
	}
	summary, err := runner.Run(context.Background(), []string{"a", "b", "c", "d"}, out)
	if err != nil {
		t.Fatalf("keep going should not fail the run: %v", err)
	}
	if !reflect.DeepEqual(out.committed, []string{"a", "c"}) {
		t.Fatalf("committed %v", out.committed)
	}
	if summary.Failed != 2 || len(summary.Failures) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !strings.Contains(summary.Failures[1].Error(), "d") {
		t.Fatalf("failures out of order: %v", summary.Failures)
	}
}
