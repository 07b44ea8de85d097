package repository

import (
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"

	"playtrack/internal/database"
	"playtrack/internal/models"
)

// RecordKey identifies one stored category record
type RecordKey struct {
	ChildID  string          `json:"childId"`
	Category models.Category `json:"category"`
}

// RecordStore persists category records keyed by (child, category).
// Get returns nil, nil when no record is stored.
//
// Every write bumps the record's version. GetVersioned and CompareAndPut let
// a caller read, modify and write one record without losing a write made in
// between by another process: CompareAndPut reports false and writes nothing
// when the stored version is no longer the one that was read. Version 0 means
// no record is stored.
type RecordStore interface {
	Get(childID string, category models.Category) (*models.CategoryRecord, error)
	GetVersioned(childID string, category models.Category) (*models.CategoryRecord, int64, error)
	Put(childID string, category models.Category, record *models.CategoryRecord) error
	CompareAndPut(childID string, category models.Category, record *models.CategoryRecord, version int64) (bool, error)
	List() ([]RecordKey, error)
	DeleteChild(childID string) error
}

// RecordRepository stores category records as JSON columns
type RecordRepository struct {
	db database.DBTX
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db database.DBTX) *RecordRepository {
	return &RecordRepository{db: db}
}

// Get retrieves one category record
func (r *RecordRepository) Get(childID string, category models.Category) (*models.CategoryRecord, error) {
	record, _, err := r.GetVersioned(childID, category)
	return record, err
}

// GetVersioned retrieves one category record with its version
func (r *RecordRepository) GetVersioned(childID string, category models.Category) (*models.CategoryRecord, int64, error) {
	query := "SELECT play_data, graph_data, developmental_age, version FROM category_records WHERE child_id = ? AND category = ?"

	var playData, graphData string
	var version int64
	record := &models.CategoryRecord{}
	err := r.db.QueryRow(query, childID, string(category)).Scan(&playData, &graphData, &record.CategoryDevelopmentalAge, &version)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get category record: %w", err)
	}

	if err := json.Unmarshal([]byte(playData), &record.PlayData); err != nil {
		return nil, 0, fmt.Errorf("failed to decode play data for %s/%s: %w", childID, category, err)
	}
	if err := json.Unmarshal([]byte(graphData), &record.GraphData); err != nil {
		return nil, 0, fmt.Errorf("failed to decode graph data for %s/%s: %w", childID, category, err)
	}
	if record.GraphData == nil {
		record.GraphData = []models.GraphPoint{}
	}

	return record, version, nil
}

// Put writes the whole record in one statement
func (r *RecordRepository) Put(childID string, category models.Category, record *models.CategoryRecord) error {
	playData, graphData, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := r.db.GetDialect().UpsertCategoryRecord()
	_, err = r.db.Exec(query, childID, string(category), playData, graphData, record.CategoryDevelopmentalAge)
	if err != nil {
		return fmt.Errorf("failed to save category record: %w", err)
	}
	return nil
}

// CompareAndPut writes the record only if its stored version is still version
func (r *RecordRepository) CompareAndPut(childID string, category models.Category, record *models.CategoryRecord, version int64) (bool, error) {
	playData, graphData, err := encodeRecord(record)
	if err != nil {
		return false, err
	}

	var result sql.Result
	if version == 0 {
		query := r.db.GetDialect().InsertCategoryRecordIfAbsent()
		result, err = r.db.Exec(query, childID, string(category), playData, graphData, record.CategoryDevelopmentalAge)
	} else {
		query := `
			UPDATE category_records
			SET play_data = ?, graph_data = ?, developmental_age = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE child_id = ? AND category = ? AND version = ?
		`
		result, err = r.db.Exec(query, playData, graphData, record.CategoryDevelopmentalAge, childID, string(category), version)
	}
	if err != nil {
		return false, fmt.Errorf("failed to save category record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check saved category record: %w", err)
	}
	return affected == 1, nil
}

func encodeRecord(record *models.CategoryRecord) (playData, graphData string, err error) {
	if record == nil {
		return "", "", fmt.Errorf("failed to save category record: nil record")
	}

	play, err := json.Marshal(record.PlayData)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode play data: %w", err)
	}
	graph := record.GraphData
	if graph == nil {
		graph = []models.GraphPoint{}
	}
	graphJSON, err := json.Marshal(graph)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode graph data: %w", err)
	}
	return string(play), string(graphJSON), nil
}

// List returns the keys of every stored record ordered by child then category
func (r *RecordRepository) List() ([]RecordKey, error) {
	rows, err := r.db.Query("SELECT child_id, category FROM category_records ORDER BY child_id ASC, category ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query category records: %w", err)
	}
	defer rows.Close()

	keys := []RecordKey{}
	for rows.Next() {
		var key RecordKey
		var category string
		if err := rows.Scan(&key.ChildID, &category); err != nil {
			return nil, fmt.Errorf("failed to scan category record key: %w", err)
		}
		key.Category = models.Category(category)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category records: %w", err)
	}
	return keys, nil
}

// DeleteChild removes every record of one child
func (r *RecordRepository) DeleteChild(childID string) error {
	if _, err := r.db.Exec("DELETE FROM category_records WHERE child_id = ?", childID); err != nil {
		return fmt.Errorf("failed to delete category records: %w", err)
	}
	return nil
}
