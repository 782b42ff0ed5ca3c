package tzshift

import (
	"testing"
	"time"

	"github.com/tweetbeat/tweetbeat/pkg/activity"
)

func sampleStats() activity.Stats {
	var m activity.Matrix
	m[2][14] = 10 // Wednesday 14:00
	m[0][0] = 3   // Monday midnight
	m[6][23] = 7  // Sunday 23:00
	m[4][9] = 5   // Friday 09:00
	return activity.FromMatrix(m)
}

func matrixSum(m activity.Matrix) int {
	sum := 0
	for d := range 7 {
		for h := range 24 {
			sum += m[d][h]
		}
	}
	return sum
}

func TestReprojectIdentity(t *testing.T) {
	src := sampleStats()
	got := Reproject(src, 0)
	if got.Matrix != src.Matrix {
		t.Errorf("offset 0 changed the matrix:\n got %v\nwant %v", got.Matrix, src.Matrix)
	}
	if got.Hourly != src.Hourly || got.Daily != src.Daily {
		t.Errorf("offset 0 changed the marginals")
	}
}

func TestReprojectConservation(t *testing.T) {
	src := sampleStats()
	offsets := []float64{-30, -24, -13.75, -5.5, -1, -0.25, 0, 0.5, 1, 5.5, 9.5, 12, 14, 23, 24, 30, 47.5}
	for _, o := range offsets {
		got := Reproject(src, o)
		if sum := matrixSum(got.Matrix); sum != src.Total {
			t.Errorf("offset %v: matrix sum %d, want %d", o, sum, src.Total)
		}
		if got.Total != src.Total {
			t.Errorf("offset %v: total %d, want %d", o, got.Total, src.Total)
		}
	}
}

func TestReprojectPeriodicity(t *testing.T) {
	src := sampleStats()
	for _, o := range []float64{-10, -5.5, 0, 3, 9.5, 13} {
		a := Reproject(src, o)
		b := Reproject(src, o+24)
		if a.Matrix != b.Matrix || a.Hourly != b.Hourly || a.Daily != b.Daily {
			t.Errorf("offset %v and %v disagree", o, o+24)
		}
	}
}

func TestReprojectDayRolloverForward(t *testing.T) {
	// Wednesday 14:00 + 10h = 24:00 -> wraps to hour 0, Thursday.
	var m activity.Matrix
	m[2][14] = 10
	got := Reproject(activity.FromMatrix(m), 10)

	if got.Matrix[3][0] != 10 {
		t.Errorf("matrix[3][0] = %d, want 10", got.Matrix[3][0])
	}
	if got.Matrix[2][0] != 0 {
		t.Errorf("count stayed on Wednesday: matrix[2][0] = %d", got.Matrix[2][0])
	}
}

func TestReprojectDayRolloverBackward(t *testing.T) {
	// Monday 02:00 - 3h = -1h -> 23:00 Sunday.
	var m activity.Matrix
	m[0][2] = 4
	got := Reproject(activity.FromMatrix(m), -3)

	if got.Matrix[6][23] != 4 {
		t.Errorf("matrix[6][23] = %d, want 4, got matrix %v", got.Matrix[6][23], got.Matrix)
	}
}

func TestReprojectExactBoundaries(t *testing.T) {
	// hour+offset == 24 exactly must roll forward; == 0 exactly must not roll.
	var m activity.Matrix
	m[1][12] = 1
	got := Reproject(activity.FromMatrix(m), 12)
	if got.Matrix[2][0] != 1 {
		t.Errorf("12:00+12h: want matrix[2][0]=1, got %v", got.Matrix)
	}

	var m2 activity.Matrix
	m2[1][12] = 1
	got = Reproject(activity.FromMatrix(m2), -12)
	if got.Matrix[1][0] != 1 {
		t.Errorf("12:00-12h: want matrix[1][0]=1 (same day), got %v", got.Matrix)
	}
}

func TestReprojectFractionalOffsetTruncates(t *testing.T) {
	// 14:00 at +5.5 lands in the 19:00 bucket; 14:00 and 14:30-equivalent
	// sources may collide additively.
	var m activity.Matrix
	m[2][14] = 6
	m[2][19] = 1
	got := Reproject(activity.FromMatrix(m), 5.5)

	if got.Matrix[2][19] != 6 {
		t.Errorf("matrix[2][19] = %d, want 6", got.Matrix[2][19])
	}
	// 19:00 + 5.5 = 24.5 -> hour 0, next day.
	if got.Matrix[3][0] != 1 {
		t.Errorf("matrix[3][0] = %d, want 1", got.Matrix[3][0])
	}
	if got.Total != 7 {
		t.Errorf("total = %d, want 7", got.Total)
	}
}

func TestReprojectLargeOffsets(t *testing.T) {
	// +30 behaves like +6 for hours; day handling is mod-24 folded
	// before the rollover check, so no out-of-range index.
	var m activity.Matrix
	m[2][14] = 10
	got := Reproject(activity.FromMatrix(m), 30)
	if got.Matrix[2][20] != 10 {
		t.Errorf("offset +30: want matrix[2][20]=10, got %v", got.Matrix)
	}

	got = Reproject(activity.FromMatrix(m), -30)
	if got.Matrix[2][8] != 10 {
		t.Errorf("offset -30: want matrix[2][8]=10, got %v", got.Matrix)
	}
}

func TestReprojectMarginalConsistency(t *testing.T) {
	src := sampleStats()
	for _, o := range []float64{-9.5, -4, 0, 2, 5.5, 10, 13.25} {
		got := Reproject(src, o)

		for d := range 7 {
			rowSum := 0
			for h := range 24 {
				rowSum += got.Matrix[d][h]
			}
			if got.Daily[d] != rowSum {
				t.Errorf("offset %v: daily[%d]=%d, row sum %d", o, d, got.Daily[d], rowSum)
			}
		}

		// The hourly marginal is the independent per-hour shift of the
		// source hourly marginal.
		var want [24]int
		for h := range 24 {
			_, nh := shiftBucket(0, h, normalize(o))
			want[nh] += src.Hourly[h]
		}
		if got.Hourly != want {
			t.Errorf("offset %v: hourly = %v, want %v", o, got.Hourly, want)
		}
	}
}

func TestReprojectIdempotent(t *testing.T) {
	src := sampleStats()
	a := Reproject(src, 5.5)
	b := Reproject(src, 5.5)
	if a.Matrix != b.Matrix || a.Hourly != b.Hourly || a.Daily != b.Daily || a.Total != b.Total {
		t.Error("repeated reprojection with the same offset is not bit-identical")
	}
}

func TestLocalClock(t *testing.T) {
	// 2025-06-04 is a Wednesday.
	tests := []struct {
		name     string
		utc      time.Time
		offset   float64
		wantDay  int
		wantHour int
	}{
		{"no offset", time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC), 0, 2, 14},
		{"rolls to Thursday", time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC), 10, 3, 0},
		{"rolls back to Tuesday", time.Date(2025, 6, 4, 2, 0, 0, 0, time.UTC), -3, 1, 23},
		{"fractional zone", time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC), 5.5, 2, 19},
		{"sunday wraps to monday", time.Date(2025, 6, 8, 23, 0, 0, 0, time.UTC), 2, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, hour := LocalClock(tt.utc, tt.offset)
			if day != tt.wantDay || hour != tt.wantHour {
				t.Errorf("LocalClock = (%d, %d), want (%d, %d)", day, hour, tt.wantDay, tt.wantHour)
			}
		})
	}
}
