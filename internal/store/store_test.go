package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"mediaprobe/internal/logging"
	"mediaprobe/internal/media"
	"mediaprobe/internal/probe"
	"mediaprobe/internal/store"
	"mediaprobe/internal/testsupport"
	"mediaprobe/internal/units"
)

var _ probe.Recorder = (*store.Store)(nil)

func probedContainer() *probe.Container {
	c := probe.NewContainer("a.wav", media.FormatInfo{Name: "wav", Duration: 2_500_000}, []media.StreamInfo{{CodecType: media.CodecTypeAudio}})
	c.RecordPacket(c.Streams[0], 4096)
	c.RecordPacket(c.Streams[0], 1024)
	c.RecordFrame(c.Streams[0], 4096)
	return c
}

func TestRecordAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	s := testsupport.MustOpenStore(t, cfg)

	ctx := logging.WithRunID(context.Background(), "run-1")
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Record(ctx, probe.Outcome{Path: "a.wav", Container: probedContainer(), Started: started, Elapsed: 1500 * time.Millisecond}); err != nil {
		t.Fatalf("Record ok: %v", err)
	}
	failure := &probe.FileError{Path: "b.bin", Op: "open", Err: errors.New("unknown container format")}
	if err := s.Record(ctx, probe.Outcome{Path: "b.bin", Err: failure, Started: started}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := s.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	failed, ok := entries[0], entries[1]
	if failed.Path != "b.bin" || failed.Status != store.StatusFailed || failed.Error == "" {
		t.Fatalf("unexpected failed entry %+v", failed)
	}
	if failed.FormatName != "" || failed.Duration != nil {
		t.Fatalf("failed probes carry no container data: %+v", failed)
	}
	if ok.RunID != "run-1" || ok.Status != store.StatusOK || ok.FormatName != "wav" {
		t.Fatalf("unexpected ok entry %+v", ok)
	}
	if ok.Packets != 2 || ok.PacketBytes != 5120 || ok.Frames != 1 || ok.Streams != 1 {
		t.Fatalf("unexpected counters %+v", ok)
	}
	if ok.Duration == nil || *ok.Duration != 2500*time.Millisecond {
		t.Fatalf("unexpected duration %v", ok.Duration)
	}
	if !ok.StartedAt.Equal(started) || ok.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected timing %v %v", ok.StartedAt, ok.Elapsed)
	}

	onlyFailed, err := s.List(context.Background(), store.ListOptions{Status: store.StatusFailed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].Path != "b.bin" {
		t.Fatalf("status filter returned %+v", onlyFailed)
	}

	limited, err := s.List(context.Background(), store.ListOptions{Limit: 1, RunID: "run-1"})
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d entries", len(limited))
	}
}

func TestRecordGeneratesRunID(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	c := probedContainer()
	c.Format.Duration = units.NoTimestamp
	if err := s.Record(context.Background(), probe.Outcome{Path: "a.wav", Container: c}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, err := s.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0].RunID == "" {
		t.Fatal("expected a generated run id")
	}
	if entries[0].Duration != nil {
		t.Fatal("unknown durations must stay unset")
	}
}

func TestRecordGivesUpWhileAnotherProcessHoldsTheLock(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	other := flock.New(s.Path() + ".lock")
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = other.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Record(ctx, probe.Outcome{Path: "a.wav", Container: probedContainer()})
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected Record to fail while the lock is held")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Record did not honor the context deadline")
	}

	_ = other.Unlock()
	if err := s.Record(context.Background(), probe.Outcome{Path: "a.wav", Container: probedContainer()}); err != nil {
		t.Fatalf("Record after release: %v", err)
	}
}

func TestGetAndClear(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if err := s.Record(ctx, probe.Outcome{Path: "a.wav", Container: probedContainer()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, err := s.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got, err := s.Get(ctx, entries[0].ID)
	if err != nil || got == nil || got.Path != "a.wav" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	missing, err := s.Get(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("Get missing = %+v, %v", missing, err)
	}

	removed, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	entries, err = s.List(ctx, store.ListOptions{})
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty history, got %d entries (%v)", len(entries), err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.History.Path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = store.Open(context.Background(), cfg.History.Path)
	if !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	if err := first.Record(context.Background(), probe.Outcome{Path: "a.wav"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	second := testsupport.MustOpenStore(t, cfg)
	entries, err := second.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}
