package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLogFile(t *testing.T, dir string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "datapilot_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected exactly one log file, got %v (err %v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestDetailIsGated(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if err := l.Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	l.Log("lifecycle event")
	l.Detail("hidden detail")
	l.SetDetailed(true)
	l.Detail("visible detail")
	l.Detailf("formatted %s", "detail")
	l.Close()

	content := readLogFile(t, dir)
	if !strings.Contains(content, "lifecycle event") {
		t.Error("Log output missing")
	}
	if strings.Contains(content, "hidden detail") {
		t.Error("Detail must be dropped while detailed logging is off")
	}
	if !strings.Contains(content, "visible detail") || !strings.Contains(content, "formatted detail") {
		t.Error("Detail output missing after SetDetailed(true)")
	}
}

func TestLogBeforeInitIsNoop(t *testing.T) {
	l := NewLogger()
	l.Log("goes nowhere")
	l.Detail("also nowhere")
	l.Close()
}
