package slotting

import (
	"math"
	"math/rand"
	"testing"
)

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Same key+name produces the same sequence
	a := NewPartitionedRNG(NewRunKey(42)).ForSubsystem(SubsystemSearch)
	b := NewPartitionedRNG(NewRunKey(42)).ForSubsystem(SubsystemSearch)
	for i := 0; i < 5; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d: got %d and %d, want identical", i, x, y)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Draining the construct stream must not shift the search stream
	rngA := NewPartitionedRNG(NewRunKey(42))
	for i := 0; i < 100; i++ {
		rngA.ForSubsystem(SubsystemConstruct).Intn(10)
	}
	got := rngA.ForSubsystem(SubsystemSearch).Float64()
	want := NewPartitionedRNG(NewRunKey(42)).ForSubsystem(SubsystemSearch).Float64()
	if got != want {
		t.Errorf("search stream after construct draws = %v, want %v", got, want)
	}
}

func TestPartitionedRNG_ConstructUsesMasterSeed(t *testing.T) {
	for _, seed := range []int64{0, 42, -1, math.MinInt64} {
		construct := NewPartitionedRNG(NewRunKey(seed)).ForSubsystem(SubsystemConstruct)
		direct := rand.New(rand.NewSource(seed))
		for i := 0; i < 5; i++ {
			if construct.Float64() != direct.Float64() {
				t.Fatalf("seed %d: construct stream diverges from master seed at draw %d", seed, i)
			}
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewRunKey(1))
	if rng.ForSubsystem(SubsystemGenerate) != rng.ForSubsystem(SubsystemGenerate) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if rng.Key() != RunKey(1) {
		t.Errorf("Key() = %v, want 1", rng.Key())
	}
}

func TestSubsystemSearchWorker(t *testing.T) {
	tests := []struct {
		k    int
		want string
	}{
		{0, SubsystemSearch},
		{7, "search_7"},
	}
	for _, tt := range tests {
		if got := SubsystemSearchWorker(tt.k); got != tt.want {
			t.Errorf("SubsystemSearchWorker(%d) = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestFnv1a64_NoCollisionsAcrossSubsystems(t *testing.T) {
	names := []string{SubsystemConstruct, SubsystemSearch, SubsystemGenerate, "search_0", "search_1", ""}
	seen := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if other, ok := seen[h]; ok {
			t.Errorf("hash collision: %q and %q", name, other)
		}
		seen[h] = name
	}
}

func TestSubsystemWorkerNames(t *testing.T) {
	if got := SubsystemConstructWorker(0); got != SubsystemConstruct {
		t.Errorf("SubsystemConstructWorker(0) = %q, want %q", got, SubsystemConstruct)
	}
	if got := SubsystemConstructWorker(3); got != "construct_3" {
		t.Errorf("SubsystemConstructWorker(3) = %q", got)
	}
	if got := SubsystemSearchWorker(0); got != SubsystemSearch {
		t.Errorf("SubsystemSearchWorker(0) = %q, want %q", got, SubsystemSearch)
	}
}
