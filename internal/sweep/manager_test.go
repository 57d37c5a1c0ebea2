package sweep

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManager_FreshStateStartsAtSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sweep.json")
	m, err := NewManager(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.GetState().NextSeed; got != 100 {
		t.Errorf("next seed = %d, want 100", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not written: %v", err)
	}
}

func TestNextSeeds(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "sweep.json"), 7)
	if err != nil {
		t.Fatal(err)
	}
	first := m.NextSeeds(3)
	second := m.NextSeeds(2)

	want := []uint64{7, 8, 9, 10, 11}
	got := append(first, second...)
	if len(got) != len(want) {
		t.Fatalf("seeds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("seeds = %v, want %v", got, want)
			break
		}
	}
	st := m.GetState()
	if st.Sweeps != 2 || st.NextSeed != 12 {
		t.Errorf("state = %+v", st)
	}
	if st.LastSweep.IsZero() {
		t.Error("last sweep not set")
	}
}

func TestManager_ResumesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	m, err := NewManager(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	m.NextSeeds(5)

	reopened, err := NewManager(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	st := reopened.GetState()
	if st.NextSeed != 6 || st.Sweeps != 1 {
		t.Errorf("reopened state = %+v, want next seed 6 after 1 sweep", st)
	}
	if seeds := reopened.NextSeeds(1); seeds[0] != 6 {
		t.Errorf("seed after restart = %d, want 6", seeds[0])
	}
}

func TestLoadState_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Error("expected error for malformed state")
	}
	if _, err := NewManager(path, 1); err == nil {
		t.Error("expected NewManager to fail on malformed state")
	}
}
