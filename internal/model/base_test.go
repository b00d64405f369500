package model

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	msk, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-10T06:00:00.000Z", time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"2026-03-10T09:00:00+03:00", time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"2026-03-10T09:00:00", time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"2026-03-10T09:00", time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in, msk)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTime_NilLocationIsUTC(t *testing.T) {
	got, err := ParseTime("2026-03-10T09:00:00", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}
}

func TestParseTime_Rejects(t *testing.T) {
	for _, in := range []string{"", "garbage", "2026-03-10", "10:00"} {
		if _, err := ParseTime(in, time.UTC); err == nil {
			t.Errorf("ParseTime(%q) should fail", in)
		}
	}
}
