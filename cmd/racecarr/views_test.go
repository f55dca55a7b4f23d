package main

import (
	"testing"
	"time"
)

func TestSessionLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"race", "Race"},
		{"qualifying", "Qualifying"},
		{"sprint-qualifying", "Sprint Qualifying"},
		{"FP1", "FP1"},
		{"fp3", "FP3"},
		{"  sprint  ", "Sprint"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sessionLabel(tc.in); got != tc.want {
			t.Errorf("sessionLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"pending", "Pending"},
		{"waiting-download", "Waiting Download"},
		{"waiting_download", "Waiting Download"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := formatStatusLabel(tc.in); got != tc.want {
			t.Errorf("formatStatusLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(nil); got != "-" {
		t.Errorf("formatTime(nil) = %q", got)
	}
	stamp := time.Date(2025, 5, 25, 13, 0, 0, 0, time.UTC)
	if got := formatTime(&stamp); got != "2025-05-25 13:00" {
		t.Errorf("formatTime = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "-"},
		{512, "512 MB"},
		{1024, "1.0 GB"},
		{3584, "3.5 GB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.in); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
