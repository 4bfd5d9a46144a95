package ledger

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2024-01-15", NewDate(2024, time.January, 15), false},
		{"2024-02-29", NewDate(2024, time.February, 29), false},
		{"not-a-date", Date{}, true},
		{"2024/01/15", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrequencyStep(t *testing.T) {
	start := NewDate(2024, time.January, 15)
	tests := []struct {
		freq Frequency
		n    int
		want Date
	}{
		{Daily, 1, NewDate(2024, time.January, 16)},
		{Weekly, 2, NewDate(2024, time.January, 29)},
		{Monthly, 1, NewDate(2024, time.February, 15)},
		{Monthly, 12, NewDate(2025, time.January, 15)},
		{Quarterly, 2, NewDate(2024, time.July, 15)},
		{Yearly, 3, NewDate(2027, time.January, 15)},
	}
	for _, tt := range tests {
		if got := tt.freq.Step(start, tt.n); got != tt.want {
			t.Errorf("%v.Step(%v, %d) = %v, want %v", tt.freq, start, tt.n, got, tt.want)
		}
	}
}

// A schedule anchored at a month end clamps to the last day of shorter
// months instead of rolling over into the next one.
func TestAddMonthClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		start Date
		n     int
		want  Date
	}{
		{NewDate(2024, time.January, 31), 1, NewDate(2024, time.February, 29)},
		{NewDate(2023, time.January, 31), 1, NewDate(2023, time.February, 28)},
		{NewDate(2024, time.January, 31), 2, NewDate(2024, time.March, 31)},
		{NewDate(2024, time.January, 30), 1, NewDate(2024, time.February, 29)},
		{NewDate(2024, time.March, 31), 1, NewDate(2024, time.April, 30)},
		{NewDate(2024, time.October, 31), 4, NewDate(2025, time.February, 28)},
		{NewDate(2024, time.February, 29), 12, NewDate(2025, time.February, 28)},
		{NewDate(2024, time.January, 15), 1, NewDate(2024, time.February, 15)},
	}
	for _, tt := range tests {
		if got := tt.start.AddMonth(tt.n); got != tt.want {
			t.Errorf("%v.AddMonth(%d) = %v, want %v", tt.start, tt.n, got, tt.want)
		}
	}

	// a monthly series anchored on the 31st hits every month exactly once
	on := NewDate(2024, time.January, 31)
	wants := []Date{
		NewDate(2024, time.February, 29),
		NewDate(2024, time.March, 31),
		NewDate(2024, time.April, 30),
	}
	for i, want := range wants {
		if got := Monthly.Step(on, i+1); got != want {
			t.Errorf("Monthly.Step(%v, %d) = %v, want %v", on, i+1, got, want)
		}
	}
}

// Stepping forward then back by the same count returns the original date for
// non-edge dates.
func TestFrequencyStepReversible(t *testing.T) {
	starts := []Date{
		NewDate(2024, time.January, 1),
		NewDate(2024, time.March, 15),
		NewDate(2023, time.November, 28),
	}
	for _, start := range starts {
		for _, freq := range []Frequency{Daily, Weekly, Monthly, Quarterly, Yearly} {
			for n := 1; n <= 6; n++ {
				stepped := freq.Step(start, n)
				back := freq.Step(stepped, -n)
				if back != start {
					t.Errorf("%v: step %d then -%d from %v = %v, want %v", freq, n, n, start, back, start)
				}
			}
		}
	}
}

func TestDaysUntil(t *testing.T) {
	a := NewDate(2024, time.March, 1)
	b := NewDate(2024, time.March, 5)
	if got := a.DaysUntil(b); got != 4 {
		t.Errorf("DaysUntil = %d, want 4", got)
	}
	if got := b.DaysUntil(a); got != -4 {
		t.Errorf("reverse DaysUntil = %d, want -4", got)
	}
}

func TestMonthOf(t *testing.T) {
	r := MonthOf(NewDate(2024, time.February, 14))
	if r.From != NewDate(2024, time.February, 1) {
		t.Errorf("From = %v", r.From)
	}
	if r.To != NewDate(2024, time.February, 29) {
		t.Errorf("To = %v", r.To)
	}
	if !r.Contains(NewDate(2024, time.February, 29)) {
		t.Error("range should contain its end")
	}
	if r.Contains(NewDate(2024, time.March, 1)) {
		t.Error("range should not contain the next month")
	}
}
