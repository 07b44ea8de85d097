package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"playtrack/internal/development"
	"playtrack/internal/logging"
	"playtrack/internal/models"
	"playtrack/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete backup structure
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Children   []models.Child `json:"children"`
	Records    []RecordBackup `json:"records"`
}

// RecordBackup is one category record together with its key
type RecordBackup struct {
	ChildID  string                 `json:"childId"`
	Category models.Category        `json:"category"`
	Record   *models.CategoryRecord `json:"record"`
}

// ImportStats counts what an import wrote
type ImportStats struct {
	Children int
	Records  int
	// Rederived counts records whose stored graph data or age changed on import
	Rederived int
}

// BackupService handles backup and restore of children and their records
type BackupService struct {
	children ChildStore
	records  repository.RecordStore
	now      func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(children ChildStore, records repository.RecordStore) *BackupService {
	return &BackupService{children: children, records: records, now: time.Now}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(file); err != nil {
		return err
	}
	logging.Log.WithField("path", outputPath).Info("Backup exported")
	return nil
}

// ExportTo writes a complete backup as indented JSON
func (s *BackupService) ExportTo(w io.Writer) error {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: s.now().UTC(),
		Records:    []RecordBackup{},
	}

	children, err := s.children.GetAllChildren()
	if err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	backup.Children = children

	keys, err := s.records.List()
	if err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}
	for _, key := range keys {
		record, err := s.records.Get(key.ChildID, key.Category)
		if err != nil {
			return fmt.Errorf("failed to export record %s/%s: %w", key.ChildID, key.Category, err)
		}
		if record == nil {
			continue
		}
		backup.Records = append(backup.Records, RecordBackup{ChildID: key.ChildID, Category: key.Category, Record: record})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	logging.Log.WithFields(logrus.Fields{
		"children": len(backup.Children),
		"records":  len(backup.Records),
	}).Info("Export complete")
	return nil
}

// Import restores a backup file. See ImportFrom.
func (s *BackupService) Import(inputPath string, clearExisting bool) (*ImportStats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFrom(file, clearExisting)
}

// ImportFrom restores a backup. Every record is re-derived from its play
// data and validated before anything is written, so a backup with a single
// invalid record changes nothing. With clearExisting set, existing data is removed
// first; otherwise children already present are updated in place.
func (s *BackupService) ImportFrom(r io.Reader, clearExisting bool) (*ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	logging.Log.WithFields(logrus.Fields{
		"version":    backup.Version,
		"exportedAt": backup.ExportedAt,
	}).Info("Starting import")

	refreshed, stats, err := s.prepare(&backup, clearExisting)
	if err != nil {
		return nil, err
	}

	if clearExisting {
		if err := s.children.DeleteAllChildren(); err != nil {
			return nil, fmt.Errorf("failed to clear children: %w", err)
		}
		if err := s.clearRecords(); err != nil {
			return nil, err
		}
	}

	for i := range backup.Children {
		if err := s.importChild(&backup.Children[i]); err != nil {
			return nil, err
		}
		stats.Children++
	}
	for i, rb := range backup.Records {
		if err := s.records.Put(rb.ChildID, rb.Category, refreshed[i]); err != nil {
			return nil, fmt.Errorf("failed to import record %s/%s: %w", rb.ChildID, rb.Category, err)
		}
		stats.Records++
	}

	logging.Log.WithFields(logrus.Fields{
		"children":  stats.Children,
		"records":   stats.Records,
		"rederived": stats.Rederived,
	}).Info("Import complete")
	return stats, nil
}

// prepare validates the whole backup and returns the refreshed records in
// backup order
func (s *BackupService) prepare(backup *BackupData, clearExisting bool) ([]*models.CategoryRecord, *ImportStats, error) {
	stats := &ImportStats{}
	now := s.now()

	known := make(map[string]bool, len(backup.Children))
	for i := range backup.Children {
		child := &backup.Children[i]
		if child.ID == "" {
			return nil, nil, fmt.Errorf("child %d has no id", i)
		}
		if known[child.ID] {
			return nil, nil, fmt.Errorf("child %s listed twice", child.ID)
		}
		in := ChildInput{Name: child.Name, BirthDate: child.BirthDate, GuardianEmail: child.GuardianEmail}
		if err := in.Validate(now); err != nil {
			return nil, nil, fmt.Errorf("child %s: %w", child.ID, err)
		}
		known[child.ID] = true
	}

	seen := make(map[repository.RecordKey]bool, len(backup.Records))
	refreshed := make([]*models.CategoryRecord, len(backup.Records))
	for i, rb := range backup.Records {
		key := repository.RecordKey{ChildID: rb.ChildID, Category: rb.Category}
		if !rb.Category.IsValid() {
			return nil, nil, fmt.Errorf("record %s/%s: %w", rb.ChildID, rb.Category, ErrUnknownCategory)
		}
		if seen[key] {
			return nil, nil, fmt.Errorf("record %s/%s listed twice", rb.ChildID, rb.Category)
		}
		seen[key] = true
		if !known[rb.ChildID] && clearExisting {
			return nil, nil, fmt.Errorf("record %s/%s: %w", rb.ChildID, rb.Category, ErrChildNotFound)
		}
		if !known[rb.ChildID] {
			existing, err := s.children.GetChildByID(rb.ChildID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to look up child %s: %w", rb.ChildID, err)
			}
			if existing == nil {
				return nil, nil, fmt.Errorf("record %s/%s: %w", rb.ChildID, rb.Category, ErrChildNotFound)
			}
		}
		if rb.Record == nil {
			return nil, nil, fmt.Errorf("record %s/%s is empty", rb.ChildID, rb.Category)
		}

		updated, err := development.Refresh(rb.Record)
		if err != nil {
			if errors.Is(err, development.ErrInvalidState) {
				return nil, nil, fmt.Errorf("record %s/%s cannot be imported: %w", rb.ChildID, rb.Category, err)
			}
			return nil, nil, fmt.Errorf("record %s/%s: %w", rb.ChildID, rb.Category, err)
		}
		if report, err := development.Check(rb.Category, *rb.Record); err == nil && !report.Consistent() {
			stats.Rederived++
			logging.Log.WithFields(logrus.Fields{
				"child":       rb.ChildID,
				"category":    rb.Category,
				"storedAge":   report.StoredAge,
				"playDataAge": report.PlayDataAge,
			}).Warn("Imported record drifted, re-derived from play data")
		}
		refreshed[i] = updated
	}
	return refreshed, stats, nil
}

func (s *BackupService) importChild(child *models.Child) error {
	existing, err := s.children.GetChildByID(child.ID)
	if err != nil {
		return fmt.Errorf("failed to look up child %s: %w", child.ID, err)
	}
	if existing != nil {
		if err := s.children.UpdateChild(child.ID, child.Name, child.BirthDate, child.GuardianEmail); err != nil {
			return fmt.Errorf("failed to import child %s: %w", child.ID, err)
		}
		return nil
	}
	if err := s.children.InsertChild(child); err != nil {
		return fmt.Errorf("failed to import child %s: %w", child.ID, err)
	}
	return nil
}

// clearRecords removes records left behind by stores without cascading deletes
func (s *BackupService) clearRecords() error {
	keys, err := s.records.List()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	cleared := make(map[string]bool)
	for _, key := range keys {
		if cleared[key.ChildID] {
			continue
		}
		if err := s.records.DeleteChild(key.ChildID); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		cleared[key.ChildID] = true
	}
	return nil
}
