package activity

import (
	"testing"
	"time"
)

func TestAggregateConservation(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
	}{
		{"empty", nil},
		{"single", []time.Time{time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC)}},
		{"duplicates", []time.Time{
			time.Date(2025, 6, 4, 14, 5, 0, 0, time.UTC),
			time.Date(2025, 6, 4, 14, 5, 0, 0, time.UTC),
			time.Date(2025, 6, 4, 14, 5, 0, 0, time.UTC),
		}},
		{"spread", []time.Time{
			time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 3, 6, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC),
			time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate(tt.times)
			if s.Total != len(tt.times) {
				t.Errorf("Total = %d, want %d", s.Total, len(tt.times))
			}
			sum := 0
			hourSum := 0
			daySum := 0
			for d := range 7 {
				daySum += s.Daily[d]
				for h := range 24 {
					sum += s.Matrix[d][h]
				}
			}
			for h := range 24 {
				hourSum += s.Hourly[h]
			}
			if sum != len(tt.times) || hourSum != len(tt.times) || daySum != len(tt.times) {
				t.Errorf("sums matrix=%d hourly=%d daily=%d, want all %d",
					sum, hourSum, daySum, len(tt.times))
			}
		})
	}
}

func TestWeekdayIsMondayBased(t *testing.T) {
	// 2025-06-02 is a Monday, 2025-06-08 a Sunday.
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC), 2},
		{time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC), 5},
		{time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), 6},
	}
	for _, tt := range tests {
		if got := Weekday(tt.date); got != tt.want {
			t.Errorf("Weekday(%s) = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestAggregateNormalizesToUTC(t *testing.T) {
	// 23:00 on Tuesday in UTC+5 is 18:00 Tuesday UTC.
	loc := time.FixedZone("UTC+5", 5*3600)
	s := Aggregate([]time.Time{time.Date(2025, 6, 3, 23, 0, 0, 0, loc)})
	if s.Matrix[1][18] != 1 {
		t.Errorf("expected matrix[1][18]=1, got %v", s.Matrix)
	}
}

func TestWednesdayScenario(t *testing.T) {
	// 10 posts all at 14:00 UTC on a Wednesday.
	var times []time.Time
	for range 10 {
		times = append(times, time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC))
	}
	s := Aggregate(times)

	if s.Matrix[2][14] != 10 {
		t.Fatalf("matrix[2][14] = %d, want 10", s.Matrix[2][14])
	}
	if s.Hourly[14] != 10 || s.Daily[2] != 10 {
		t.Errorf("marginals hourly[14]=%d daily[2]=%d, want 10/10", s.Hourly[14], s.Daily[2])
	}
	if s.PeakHours[0].Hour != 14 || s.PeakHours[0].Count != 10 {
		t.Errorf("top peak hour = %+v, want {14 10}", s.PeakHours[0])
	}
	if s.PeakDays[0].Day != 2 || s.PeakDays[0].Count != 10 {
		t.Errorf("top peak day = %+v, want {2 10}", s.PeakDays[0])
	}
}

func TestTopHoursTieBreaksByLowerHour(t *testing.T) {
	var hourly [24]int
	hourly[14] = 5
	hourly[9] = 5
	hourly[3] = 2

	top := TopHours(hourly, 3)
	want := []HourCount{{Hour: 9, Count: 5}, {Hour: 14, Count: 5}, {Hour: 3, Count: 2}}
	for i, w := range want {
		if top[i] != w {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], w)
		}
	}
}

func TestEmptyPeakListsAreWellFormed(t *testing.T) {
	s := Aggregate(nil)
	if len(s.PeakHours) != PeakDisplayCount || len(s.PeakDays) != PeakDisplayCount {
		t.Fatalf("peak list lengths %d/%d, want %d", len(s.PeakHours), len(s.PeakDays), PeakDisplayCount)
	}
	for i := range PeakDisplayCount {
		if s.PeakHours[i].Hour != i || s.PeakHours[i].Count != 0 {
			t.Errorf("PeakHours[%d] = %+v, want {%d 0}", i, s.PeakHours[i], i)
		}
		if s.PeakDays[i].Day != i || s.PeakDays[i].Count != 0 {
			t.Errorf("PeakDays[%d] = %+v, want {%d 0}", i, s.PeakDays[i], i)
		}
	}
}
