package service

import (
	"errors"
	"testing"
	"time"

	"playtrack/internal/models"
	"playtrack/internal/validation"
)

func newChildService(f *fixture) *ChildService {
	s := NewChildService(f.children, f.records)
	s.now = func() time.Time { return f.now }
	return s
}

func TestCreateChildValidation(t *testing.T) {
	f := newFixture(t)
	s := newChildService(f)

	tests := []struct {
		name      string
		input     ChildInput
		wantField string
	}{
		{
			name:  "valid",
			input: ChildInput{Name: "  Ben  ", BirthDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:      "short name",
			input:     ChildInput{Name: "B", BirthDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
			wantField: "name",
		},
		{
			name:      "future birth date",
			input:     ChildInput{Name: "Ben", BirthDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
			wantField: "birthDate",
		},
		{
			name:      "bad guardian email",
			input:     ChildInput{Name: "Ben", BirthDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), GuardianEmail: "nope"},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, err := s.CreateChild(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("CreateChild() error = %v", err)
				}
				if child.Name != "Ben" {
					t.Errorf("Name = %q, want trimmed %q", child.Name, "Ben")
				}
				return
			}
			var verr validation.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.wantField {
				t.Errorf("CreateChild() error = %v, want validation error on %s", err, tt.wantField)
			}
		})
	}
}

func TestUpdateAndGetChild(t *testing.T) {
	f := newFixture(t)
	s := newChildService(f)

	updated, err := s.UpdateChild(f.child.ID, ChildInput{
		Name:      "Ada Lovelace",
		BirthDate: f.child.BirthDate,
	})
	if err != nil {
		t.Fatalf("UpdateChild() error = %v", err)
	}
	if updated.Name != "Ada Lovelace" || updated.GuardianEmail != "" {
		t.Errorf("UpdateChild() = %+v", updated)
	}

	if _, err := s.GetChild("nobody"); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("GetChild(unknown) error = %v, want ErrChildNotFound", err)
	}
	if _, err := s.UpdateChild("nobody", ChildInput{Name: "Ben"}); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("UpdateChild(unknown) error = %v, want ErrChildNotFound", err)
	}
}

func TestDeleteChildResetsRecords(t *testing.T) {
	f := newFixture(t)
	s := newChildService(f)

	if _, err := f.progress.SetAchievement(f.child.ID, models.CategoryLanguage, AchievementChange{
		PlayNumber: 1, Level: 1, Achieved: true, AchievedAt: at(2025, 1, 1),
	}); err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}

	if err := s.DeleteChild(f.child.ID); err != nil {
		t.Fatalf("DeleteChild() error = %v", err)
	}
	keys, _ := f.records.List()
	if len(keys) != 0 {
		t.Errorf("records survived delete: %v", keys)
	}
	if err := s.DeleteChild(f.child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("second DeleteChild() error = %v, want ErrChildNotFound", err)
	}
}
