package report_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/alnah/go-sessionmix/internal/mix"
	"github.com/alnah/go-sessionmix/internal/report"
)

var testRun = report.Run{
	ID:          "7f1c2c9e-0000-4000-8000-000000000001",
	Started:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	Finished:    time.Date(2026, 3, 1, 9, 4, 30, 0, time.UTC),
	AudioDir:    "/audio",
	OutputDir:   "/audio/mixed_sessions",
	MusicGainDB: -20,
	Bitrate:     "192k",
}

func testSummary() mix.Summary {
	return mix.Summary{
		Results: []mix.Result{
			{Session: 1, OutputPath: "/audio/mixed_sessions/session-01-mixed.mp3", Duration: 12*time.Minute + 300*time.Millisecond},
			{
				Session:    10,
				OutputPath: "/audio/mixed_sessions/session-10-mixed.mp3",
				Duration:   11 * time.Minute,
				Bells:      []time.Duration{5*time.Minute + 32*time.Second, 8*time.Minute + 32*time.Second},
			},
		},
		Failures: []mix.Failure{{Session: 3, Err: errors.New("load outro: file not found")}},
		Skipped:  []int{2},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	got := report.New(testRun, testSummary())

	want := []report.Entry{
		{Number: 1, Status: report.StatusOK, Output: "/audio/mixed_sessions/session-01-mixed.mp3", Duration: "12m0.3s"},
		{Number: 2, Status: report.StatusSkipped},
		{Number: 3, Status: report.StatusFailed, Error: "load outro: file not found"},
		{
			Number:   10,
			Status:   report.StatusOK,
			Output:   "/audio/mixed_sessions/session-10-mixed.mp3",
			Duration: "11m0s",
			Bells:    []string{"5m32s", "8m32s"},
		},
	}
	if diff := cmp.Diff(want, got.Sessions); diff != "" {
		t.Errorf("Sessions mismatch (-want +got):\n%s", diff)
	}
	if got.Successful != 2 || got.Failed != 1 || got.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", got.Successful, got.Failed, got.Skipped)
	}
	if got.RunID != testRun.ID || got.Bitrate != "192k" || got.MusicGainDB != -20 {
		t.Errorf("run fields not copied: %+v", got)
	}
}

func TestReport_Save(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	if err := report.New(testRun, testSummary()).Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if doc["run_id"] != testRun.ID {
		t.Errorf("run_id = %v, want %s", doc["run_id"], testRun.ID)
	}
	sessions, ok := doc["sessions"].([]any)
	if !ok || len(sessions) != 4 {
		t.Fatalf("sessions = %v, want 4 entries", doc["sessions"])
	}
	first, _ := sessions[0].(map[string]any)
	if _, has := first["error"]; has {
		t.Error("successful entry should omit the error field")
	}
}

func TestReport_Save_Unwritable(t *testing.T) {
	t.Parallel()

	// A regular file where the parent directory should be.
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := report.New(testRun, mix.Summary{}).Save(filepath.Join(parent, "run.yaml"))
	if err == nil {
		t.Error("Save() = nil, want error when parent is a file")
	}
}
