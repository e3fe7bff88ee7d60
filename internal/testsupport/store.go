package testsupport

import (
	"context"
	"testing"

	"mediaprobe/internal/config"
	"mediaprobe/internal/store"
)

// MustOpenStore opens the history database of cfg and closes it when the
// test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), cfg.History.Path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
