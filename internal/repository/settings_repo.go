package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"playtrack/internal/database"
)

const (
	settingLastCheckAt    = "consistency_last_run_at"
	settingLastCheckDrift = "consistency_last_run_drift"
)

// ConsistencyRun summarizes the last consistency check
type ConsistencyRun struct {
	At         time.Time
	DriftCount int
}

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by name. ok is false when unset.
func (r *SettingsRepository) GetSetting(name string) (value string, ok bool, err error) {
	err = r.db.QueryRow("SELECT value FROM settings WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, true, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(name, value string) error {
	if _, err := r.db.Exec(r.db.Dialect.UpsertSetting(), name, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", name, err)
	}
	return nil
}

// RecordConsistencyRun stores the time and drift count of a checker run
func (r *SettingsRepository) RecordConsistencyRun(run ConsistencyRun) error {
	if err := r.SetSetting(settingLastCheckAt, run.At.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return r.SetSetting(settingLastCheckDrift, strconv.Itoa(run.DriftCount))
}

// LastConsistencyRun returns the previous checker run, or nil if none was recorded
func (r *SettingsRepository) LastConsistencyRun() (*ConsistencyRun, error) {
	at, ok, err := r.GetSetting(settingLastCheckAt)
	if err != nil || !ok {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", settingLastCheckAt, err)
	}

	run := &ConsistencyRun{At: parsed}
	drift, ok, err := r.GetSetting(settingLastCheckDrift)
	if err != nil {
		return nil, err
	}
	if ok {
		if run.DriftCount, err = strconv.Atoi(drift); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", settingLastCheckDrift, err)
		}
	}
	return run, nil
}
