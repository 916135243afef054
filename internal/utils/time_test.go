package utils

import "testing"

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:00", 360, false},
		{"12:30", 750, false},
		{"23:59", 1439, false},
		{"9:00", 540, false}, // single-digit hours parse leniently
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeToMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeToMinutes(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeToMinutes(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{360, "06:00"},
		{750, "12:30"},
		{1439, "23:59"},
		{65, "01:05"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += 17 {
		back, err := ParseTimeToMinutes(FormatMinutes(m))
		if err != nil {
			t.Fatalf("round trip %d: %v", m, err)
		}
		if back != m {
			t.Fatalf("round trip %d -> %d", m, back)
		}
	}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		s1, e1, s2, e2         string
		want                   bool
	}{
		{"disjoint", "09:00", "10:00", "11:00", "12:00", false},
		{"touching boundary", "09:00", "10:00", "10:00", "11:00", false},
		{"partial overlap", "09:00", "10:30", "10:00", "11:00", true},
		{"containment", "09:00", "12:00", "10:00", "11:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"unparseable", "junk", "10:00", "09:00", "10:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimesOverlap(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("TimesOverlap(%s-%s, %s-%s) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if !ValidateTimeFormat("09:30") || ValidateTimeFormat("9am") || ValidateTimeFormat("24:00") {
		t.Error("ValidateTimeFormat misclassified an input")
	}
	if !ValidateDateFormat("2026-03-02") || ValidateDateFormat("03/02/2026") || ValidateDateFormat("2026-13-01") {
		t.Error("ValidateDateFormat misclassified an input")
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		from, due string
		want      int
	}{
		{"2026-03-02", "2026-03-02", 0},
		{"2026-03-02", "2026-03-09", 7},
		{"2026-03-02", "2026-02-28", -2},
		{"2026-02-27", "2026-03-01", 2}, // across the month boundary
	}
	for _, tt := range tests {
		got, err := DaysUntil(tt.from, tt.due)
		if err != nil {
			t.Errorf("DaysUntil(%s, %s) error: %v", tt.from, tt.due, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DaysUntil(%s, %s) = %d, want %d", tt.from, tt.due, got, tt.want)
		}
	}

	if _, err := DaysUntil("soon", "2026-03-02"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestContains(t *testing.T) {
	if !Contains(360, 1320, 540, 600) {
		t.Error("Contains() = false for an interior range")
	}
	if Contains(360, 1320, 300, 400) {
		t.Error("Contains() = true for a range crossing the lower bound")
	}
	if !Contains(360, 1320, 360, 1320) {
		t.Error("Contains() = false for an identical range")
	}
}
