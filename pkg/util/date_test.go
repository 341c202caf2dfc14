package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts || got.Location() != time.UTC {
		t.Fatalf("unexpected unix %v", got)
	}
}

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  aapl "); got != "AAPL" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV("a, b,,c ")
	if len(got) != 3 || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitCSV("") != nil {
		t.Fatalf("expected nil")
	}
}
