package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"playtrack/internal/models"
	"playtrack/internal/repository"
	"playtrack/internal/validation"
)

var (
	ErrChildNotFound   = errors.New("child not found")
	ErrUnknownCategory = errors.New("unknown category")
	ErrPlayNotFound    = errors.New("play not found in category")
	ErrInvalidLevel    = errors.New("level must be between 1 and 5")
	ErrRecordNotFound  = errors.New("no stored record for this child and category")
	ErrNoGuardianEmail = errors.New("child has no guardian email")
	ErrWriteConflict   = errors.New("record kept changing while being updated")
)

// ChildStore persists child profiles. Lookups return nil, nil when the
// child does not exist.
type ChildStore interface {
	CreateChild(name string, birthDate time.Time, guardianEmail string) (*models.Child, error)
	InsertChild(child *models.Child) error
	GetChildByID(childID string) (*models.Child, error)
	GetAllChildren() ([]models.Child, error)
	UpdateChild(childID, name string, birthDate time.Time, guardianEmail string) error
	DeleteChild(childID string) error
	DeleteAllChildren() error
}

// ChildInput holds the editable fields of a child profile
type ChildInput struct {
	Name          string    `json:"name"`
	BirthDate     time.Time `json:"birthDate"`
	GuardianEmail string    `json:"guardianEmail"`
}

// Validate normalizes and checks the input
func (in *ChildInput) Validate(now time.Time) error {
	in.Name = strings.TrimSpace(in.Name)
	in.GuardianEmail = strings.TrimSpace(in.GuardianEmail)

	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateBirthDate(in.BirthDate, now); err != nil {
		return err
	}
	return validation.ValidateOptionalEmail(in.GuardianEmail)
}

// ChildService handles child profile business logic
type ChildService struct {
	children ChildStore
	records  repository.RecordStore
	now      func() time.Time
}

// NewChildService creates a new child service
func NewChildService(children ChildStore, records repository.RecordStore) *ChildService {
	return &ChildService{
		children: children,
		records:  records,
		now:      time.Now,
	}
}

// CreateChild validates and stores a new child
func (s *ChildService) CreateChild(in ChildInput) (*models.Child, error) {
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}

	child, err := s.children.CreateChild(in.Name, in.BirthDate, in.GuardianEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return child, nil
}

// GetChild retrieves a child by ID
func (s *ChildService) GetChild(childID string) (*models.Child, error) {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// ListChildren retrieves every child
func (s *ChildService) ListChildren() ([]models.Child, error) {
	children, err := s.children.GetAllChildren()
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// UpdateChild replaces a child's editable fields
func (s *ChildService) UpdateChild(childID string, in ChildInput) (*models.Child, error) {
	if _, err := s.GetChild(childID); err != nil {
		return nil, err
	}
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.children.UpdateChild(childID, in.Name, in.BirthDate, in.GuardianEmail); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return s.GetChild(childID)
}

// DeleteChild removes a child and resets all of its progress data
func (s *ChildService) DeleteChild(childID string) error {
	if _, err := s.GetChild(childID); err != nil {
		return err
	}
	if err := s.children.DeleteChild(childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	// the SQL store already cascades; other stores need the explicit reset
	if err := s.records.DeleteChild(childID); err != nil {
		return fmt.Errorf("failed to delete child records: %w", err)
	}
	return nil
}
