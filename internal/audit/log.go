// Package audit appends a JSON line per de-identification run so that
// processed batches can be traced afterwards. Field values are never logged;
// files are identified by path and content digest only.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/policy"
)

type RunRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Policy    string        `json:"policy"`
	Action    string        `json:"action"`
	Mode      string        `json:"mode"`
	Dry       bool          `json:"dry"`
	Files     int           `json:"files"`
	Written   int           `json:"written"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Workers   int           `json:"workers"`
	Duration  string        `json:"duration"`
	Outcomes  []FileSummary `json:"outcomes,omitempty"`
}

type FileSummary struct {
	Input        string `json:"input"`
	Output       string `json:"output,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	Warnings     int    `json:"warnings"`
	InputDigest  string `json:"input_digest,omitempty"`
	OutputDigest string `json:"output_digest,omitempty"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns logged runs, newest first. Reading stops at the first
// malformed line.
func (a *AuditLog) LoadHistory() ([]RunRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogRun(record RunRecord) error {
	if record.RunID == "" {
		record.RunID = uuid.NewString()
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

func CreateRunRecord(sev policy.Severity, action anon.Action, dry bool, res engine.Result) RunRecord {
	outcomes := make([]FileSummary, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		s := FileSummary{
			Input:        o.Input,
			Output:       o.Output,
			Status:       o.Status.String(),
			Warnings:     o.Warnings,
			InputDigest:  o.InputDigest,
			OutputDigest: o.OutputDigest,
		}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		outcomes = append(outcomes, s)
	}
	return RunRecord{
		Timestamp: time.Now(),
		RunID:     uuid.NewString(),
		Policy:    sev.String(),
		Action:    action.String(),
		Mode:      res.Mode.String(),
		Dry:       dry,
		Files:     len(res.Outcomes),
		Written:   res.Succeeded(),
		Failed:    res.Failed(),
		Skipped:   res.Skipped(),
		Workers:   res.Workers,
		Duration:  res.Duration.String(),
		Outcomes:  outcomes,
	}
}
