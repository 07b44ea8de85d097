package service

import (
	"context"
	"fmt"
)

// ProgressMailer delivers a radar summary to a guardian
type ProgressMailer interface {
	SendProgressSummary(ctx context.Context, toEmail, childName string, radar *Radar) error
}

// ReportService emails progress summaries
type ReportService struct {
	children ChildLookup
	progress *ProgressService
	mailer   ProgressMailer
}

// NewReportService creates a new report service
func NewReportService(children ChildLookup, progress *ProgressService, mailer ProgressMailer) *ReportService {
	return &ReportService{children: children, progress: progress, mailer: mailer}
}

// SendSummary emails the child's current radar to their guardian
func (s *ReportService) SendSummary(ctx context.Context, childID string) (*Radar, error) {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.GuardianEmail == "" {
		return nil, ErrNoGuardianEmail
	}

	radar, err := s.progress.Radar(childID)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendProgressSummary(ctx, child.GuardianEmail, child.Name, radar); err != nil {
		return nil, fmt.Errorf("failed to send progress summary: %w", err)
	}
	return radar, nil
}
