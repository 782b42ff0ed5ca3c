package demo

import (
	"testing"
	"time"
)

func TestTimestampsBounds(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 1234} {
		times := Timestamps(seed)
		if len(times) < minPosts || len(times) > maxPosts {
			t.Errorf("seed %d: %d timestamps, want %d..%d", seed, len(times), minPosts, maxPosts)
		}
		for _, ts := range times {
			if ts.Location() != time.UTC {
				t.Fatalf("seed %d: timestamp not UTC: %v", seed, ts)
			}
		}
	}
}

func TestTimestampsDeterministic(t *testing.T) {
	a := Timestamps(42)
	b := Timestamps(42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("timestamp %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTimestampsDifferentSeedsDiffer(t *testing.T) {
	a := Timestamps(1)
	b := Timestamps(2)
	if len(a) == len(b) {
		same := true
		for i := range a {
			if !a[i].Equal(b[i]) {
				same = false
				break
			}
		}
		if same {
			t.Error("different seeds produced identical sequences")
		}
	}
}
