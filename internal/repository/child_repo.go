package repository

import (
	"database/sql"
	"fmt"
	"time"

	"playtrack/internal/database"
	"playtrack/internal/models"
	"playtrack/internal/utils"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = "id, name, birth_date, guardian_email, created_at, updated_at"

// CreateChild creates a new child profile with a fresh ID
func (r *ChildRepository) CreateChild(name string, birthDate time.Time, guardianEmail string) (*models.Child, error) {
	now := time.Now().UTC()
	child := &models.Child{
		ID:            utils.NewID(),
		Name:          name,
		BirthDate:     dateOnly(birthDate),
		GuardianEmail: guardianEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.InsertChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// InsertChild stores a child with its existing ID and timestamps, as restored from a backup
func (r *ChildRepository) InsertChild(child *models.Child) error {
	query := "INSERT INTO children (" + childColumns + ") VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		child.ID,
		child.Name,
		dateOnly(child.BirthDate),
		child.GuardianEmail,
		child.CreatedAt.UTC(),
		child.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(childID string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChild(r.db.QueryRow(query, childID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetAllChildren retrieves all children ordered by name
func (r *ChildRepository) GetAllChildren() ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children ORDER BY name ASC, id ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children: %w", err)
	}

	return children, nil
}

// UpdateChild updates a child's profile
func (r *ChildRepository) UpdateChild(childID, name string, birthDate time.Time, guardianEmail string) error {
	query := "UPDATE children SET name = ?, birth_date = ?, guardian_email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, name, dateOnly(birthDate), guardianEmail, childID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// DeleteChild deletes a child profile together with all of its category records
func (r *ChildRepository) DeleteChild(childID string) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("DELETE FROM category_records WHERE child_id = ?", childID); err != nil {
			return fmt.Errorf("failed to delete child records: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM children WHERE id = ?", childID); err != nil {
			return fmt.Errorf("failed to delete child: %w", err)
		}
		return nil
	})
}

// DeleteAllChildren removes every child and record
func (r *ChildRepository) DeleteAllChildren() error {
	return r.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("DELETE FROM category_records"); err != nil {
			return fmt.Errorf("failed to clear category records: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM children"); err != nil {
			return fmt.Errorf("failed to clear children: %w", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChild(row rowScanner) (*models.Child, error) {
	child := &models.Child{}
	err := row.Scan(
		&child.ID,
		&child.Name,
		&child.BirthDate,
		&child.GuardianEmail,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	child.BirthDate = dateOnly(child.BirthDate)
	return child, nil
}

// dateOnly drops the clock so birth dates compare equal across drivers
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
