package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func newTestLogger(level int) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(nopCloser{buf}, level), buf
}

func TestLogRespectsTreshold(t *testing.T) {
	l, buf := newTestLogger(Warning)
	l.Info("should not appear")
	l.Warning("should appear: %d", 1)
	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("Info message logged despite being below treshold: %q", out)
	}
	if !strings.Contains(out, "should appear: 1") {
		t.Errorf("Warning message missing: %q", out)
	}
}

func TestProgressLoggingFlushesLatestSnapshot(t *testing.T) {
	l, buf := newTestLogger(Info)
	l.StartProgressLogging(time.Hour, time.Hour) // long enough that only RunAllPeriodic triggers it
	l.ReportProgress(12345, 7)
	l.RunAllPeriodic()
	l.StopProgressLogging()
	out := buf.String()
	if !strings.Contains(out, "7 leaves") {
		t.Errorf("progress logger output missing leaf count: %q", out)
	}
	if !strings.Contains(out, "12K oracle calls") {
		t.Errorf("progress logger output missing oracle call count: %q", out)
	}
}

func TestReportProgressAloneDoesNotLog(t *testing.T) {
	l, buf := newTestLogger(Info)
	l.ReportProgress(1, 1)
	if buf.Len() != 0 {
		t.Errorf("ReportProgress without a registered periodic logger should not write anything, got %q", buf.String())
	}
}

func TestSiMultiple(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{500, "500"},
		{1500, "2K"},
		{1000000, "1M"},
	}
	for _, c := range cases {
		if got := SiMultiple(c.n, 1000, 'Y'); got != c.want {
			t.Errorf("SiMultiple(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}
