package utils

import (
	"testing"
	"time"
)

func TestRentalDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		hours int
		want  int64
	}{
		{0, 1},
		{-5, 1},
		{24, 1},
		{25, 2},
		{48, 2},
		{60, 3},
	}
	for _, c := range cases {
		end := base.Add(time.Duration(c.hours) * time.Hour)
		if got := RentalDays(base, end); got != c.want {
			t.Errorf("RentalDays(+%dh) = %d, want %d", c.hours, got, c.want)
		}
	}
}

func TestParseDateOrISO(t *testing.T) {
	for _, in := range []string{"2026-03-01", "2026-03-01 08:30:00", "2026-03-01T08:30:00Z"} {
		got, err := ParseDateOrISO(in)
		if err != nil {
			t.Fatalf("ParseDateOrISO(%q) returned error: %v", in, err)
		}
		if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
			t.Errorf("ParseDateOrISO(%q) = %v", in, got)
		}
	}
	if _, err := ParseDateOrISO("first of march"); err == nil {
		t.Error("ParseDateOrISO should reject free text")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+250 788 123 456": "+250788123456",
		"(0788) 123-456":   "0788123456",
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
