// Package report writes a YAML manifest describing a mix run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alnah/go-sessionmix/internal/mix"
)

// Session statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Run holds the run-level facts recorded in the manifest.
type Run struct {
	ID          string
	Started     time.Time
	Finished    time.Time
	AudioDir    string
	OutputDir   string
	MusicGainDB float64
	Bitrate     string
}

// Report is the manifest written by `mix --report`.
type Report struct {
	RunID       string    `yaml:"run_id"`
	StartedAt   time.Time `yaml:"started_at"`
	FinishedAt  time.Time `yaml:"finished_at"`
	AudioDir    string    `yaml:"audio_dir"`
	OutputDir   string    `yaml:"output_dir"`
	MusicGainDB float64   `yaml:"music_gain_db"`
	Bitrate     string    `yaml:"bitrate"`
	Successful  int       `yaml:"successful"`
	Failed      int       `yaml:"failed"`
	Skipped     int       `yaml:"skipped"`
	Sessions    []Entry   `yaml:"sessions"`
}

// Entry describes one session of the run.
type Entry struct {
	Number   int      `yaml:"number"`
	Status   string   `yaml:"status"`
	Output   string   `yaml:"output,omitempty"`
	Duration string   `yaml:"duration,omitempty"`
	Bells    []string `yaml:"bells,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

// New builds a report from a batch summary. Sessions are listed by number.
func New(run Run, sum mix.Summary) Report {
	r := Report{
		RunID:       run.ID,
		StartedAt:   run.Started.UTC(),
		FinishedAt:  run.Finished.UTC(),
		AudioDir:    run.AudioDir,
		OutputDir:   run.OutputDir,
		MusicGainDB: run.MusicGainDB,
		Bitrate:     run.Bitrate,
		Successful:  sum.Successful(),
		Failed:      sum.Failed(),
		Skipped:     len(sum.Skipped),
	}

	for _, res := range sum.Results {
		e := Entry{
			Number:   res.Session,
			Status:   StatusOK,
			Output:   res.OutputPath,
			Duration: res.Duration.Round(time.Millisecond).String(),
		}
		for _, b := range res.Bells {
			e.Bells = append(e.Bells, b.String())
		}
		r.Sessions = append(r.Sessions, e)
	}
	for _, f := range sum.Failures {
		r.Sessions = append(r.Sessions, Entry{Number: f.Session, Status: StatusFailed, Error: f.Err.Error()})
	}
	for _, n := range sum.Skipped {
		r.Sessions = append(r.Sessions, Entry{Number: n, Status: StatusSkipped})
	}

	sort.Slice(r.Sessions, func(i, j int) bool {
		return r.Sessions[i].Number < r.Sessions[j].Number
	})
	return r
}

// Save writes the report as YAML to path, creating parent directories.
func (r Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil { // #nosec G301 -- user report dir
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306 -- report is not sensitive
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
