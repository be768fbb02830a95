package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{7 * 24 * time.Hour, "7d"},
		{time.Hour, "1h0m0s"},
		{36 * time.Hour, "36h0m0s"},
		{30 * time.Minute, "30m0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		b    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.b); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestWriteStateSummary(t *testing.T) {
	var buf bytes.Buffer
	err := writeStateSummary(&buf, feed.Feeds{
		{URL: "https://a.test/rss", Posts: []feed.Post{{ID: "1", Read: true}, {ID: "2"}}},
		{URL: "https://b.test/atom", Posts: []feed.Post{{ID: "3"}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"FEED", "https://a.test/rss", "https://b.test/atom", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if last := strings.Fields(lines[len(lines)-1]); last[len(last)-1] != "2" {
		t.Errorf("total line = %q, want 2 unread", lines[len(lines)-1])
	}
}

func TestWriteStateSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeStateSummary(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No saved state") {
		t.Errorf("got %q", buf.String())
	}
}
