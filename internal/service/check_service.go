package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"playtrack/internal/development"
	"playtrack/internal/logging"
	"playtrack/internal/repository"
)

// RunRecorder remembers when the checker last ran
type RunRecorder interface {
	RecordConsistencyRun(run repository.ConsistencyRun) error
}

// CheckResult is the outcome for one stored record
type CheckResult struct {
	Key      repository.RecordKey `json:"key"`
	Report   development.Report   `json:"report"`
	Drifted  bool                 `json:"drifted"`
	Repaired bool                 `json:"repaired"`
	Err      string               `json:"error,omitempty"`
}

// CheckSummary aggregates one checker run
type CheckSummary struct {
	StartedAt time.Time     `json:"startedAt"`
	Checked   int           `json:"checked"`
	Drifted   int           `json:"drifted"`
	Repaired  int           `json:"repaired"`
	Failed    int           `json:"failed"`
	Results   []CheckResult `json:"results"`
}

// Unresolved counts records that still disagree with their play data or
// could not be checked at all
func (s *CheckSummary) Unresolved() int {
	return s.Drifted - s.Repaired + s.Failed
}

// CheckService runs the consistency checker across stored records
type CheckService struct {
	records  repository.RecordStore
	progress *ProgressService
	runs     RunRecorder
	now      func() time.Time
}

// NewCheckService creates a new check service. runs may be nil.
func NewCheckService(records repository.RecordStore, progress *ProgressService, runs RunRecorder) *CheckService {
	return &CheckService{
		records:  records,
		progress: progress,
		runs:     runs,
		now:      time.Now,
	}
}

// Run checks every stored record, or only those of childID when it is not
// empty. With repair set, drifted records are rewritten from their play data.
func (s *CheckService) Run(childID string, repair bool) (*CheckSummary, error) {
	summary := &CheckSummary{StartedAt: s.now().UTC(), Results: []CheckResult{}}

	keys, err := s.records.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	for _, key := range keys {
		if childID != "" && key.ChildID != childID {
			continue
		}
		summary.Checked++
		result := s.checkOne(key, repair)
		switch {
		case result.Drifted:
			summary.Drifted++
			if result.Repaired {
				summary.Repaired++
			}
		case result.Err != "":
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	if s.runs != nil {
		run := repository.ConsistencyRun{At: summary.StartedAt, DriftCount: summary.Drifted}
		if err := s.runs.RecordConsistencyRun(run); err != nil {
			return summary, fmt.Errorf("failed to record consistency run: %w", err)
		}
	}

	logging.Log.WithFields(logrus.Fields{
		"checked":  summary.Checked,
		"drifted":  summary.Drifted,
		"repaired": summary.Repaired,
		"failed":   summary.Failed,
	}).Info("Consistency check finished")

	return summary, nil
}

func (s *CheckService) checkOne(key repository.RecordKey, repair bool) CheckResult {
	result := CheckResult{Key: key}
	entry := logging.Log.WithFields(logrus.Fields{"child": key.ChildID, "category": key.Category})

	report, err := s.progress.Check(key.ChildID, key.Category)
	if err != nil {
		if errors.Is(err, development.ErrInvalidState) {
			entry.WithError(err).Error("Record has an achieved level without a date and cannot be repaired")
		} else {
			entry.WithError(err).Error("Failed to check record")
		}
		result.Err = err.Error()
		return result
	}
	result.Report = report
	if report.Consistent() {
		return result
	}
	result.Drifted = true

	entry.WithFields(logrus.Fields{
		"storedAge":    report.StoredAge,
		"playDataAge":  report.PlayDataAge,
		"graphDataAge": report.GraphDataAge,
	}).Warn("Developmental age drift detected")
	for _, m := range report.Mismatches {
		entry.WithFields(logrus.Fields{
			"play":       m.PlayNumber,
			"kind":       m.Kind,
			"stored":     m.Stored,
			"recomputed": m.Recomputed,
			"delta":      m.Delta,
		}).Warn("Graph entry mismatch")
	}

	if !repair {
		return result
	}
	if _, err := s.progress.Recompute(key.ChildID, key.Category); err != nil {
		entry.WithError(err).Error("Failed to repair record")
		result.Err = err.Error()
		return result
	}
	result.Repaired = true
	entry.Info("Record repaired")
	return result
}
