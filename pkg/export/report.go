package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Status is the outcome of one batch item.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// ItemResult records what happened to one item.
type ItemResult struct {
	Index    int           `yaml:"index"`
	Name     string        `yaml:"name"`
	Output   string        `yaml:"output"`
	Status   Status        `yaml:"status"`
	Bytes    int64         `yaml:"bytes,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Error    string        `yaml:"error,omitempty"`
	Err      error         `yaml:"-"`
}

// Report summarizes a batch run.
type Report struct {
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Total      int          `yaml:"total"`
	OK         int          `yaml:"ok"`
	Failed     int          `yaml:"failed"`
	Canceled   int          `yaml:"canceled"`
	Items      []ItemResult `yaml:"items"`
}

func (r *Report) add(res ItemResult) {
	switch res.Status {
	case StatusOK:
		r.OK++
	case StatusFailed:
		r.Failed++
	case StatusCanceled:
		r.Canceled++
	}
	r.Items = append(r.Items, res)
}

// Duration returns the wall time of the run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// WriteYAML writes the report to path.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
