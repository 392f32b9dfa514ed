package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"eartraining/internal/database"
	"eartraining/internal/models"
	"eartraining/internal/repository"
)

const backupVersion = "1.0"

// BackupData is the on-disk backup format
type BackupData struct {
	Version      string                `json:"version"`
	ExportedAt   time.Time             `json:"exported_at"`
	DatabaseType string                `json:"database_type"`
	States       []models.LearnerState `json:"learner_states"`
}

// BackupService exports and restores learner state
type BackupService struct {
	db        *database.DB
	retention time.Duration
	now       func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db, now: time.Now}
}

// SetRetention makes exports leave out state older than d. Zero keeps everything.
func (s *BackupService) SetRetention(d time.Duration) {
	s.retention = d
}

// Export writes a complete backup to outputPath
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportTo writes a complete backup as indented JSON to w
func (s *BackupService) ExportTo(w io.Writer) error {
	log.Println("Starting learner state export...")

	states, err := repository.NewStateRepository(s.db).List()
	if err != nil {
		return fmt.Errorf("failed to export learner states: %w", err)
	}

	if s.retention > 0 {
		now := s.now()
		kept := states[:0]
		for _, state := range states {
			if !state.IsStale(s.retention, now) {
				kept = append(kept, state)
			}
		}
		if skipped := len(states) - len(kept); skipped > 0 {
			log.Printf("Skipped %d stale learner states", skipped)
		}
		states = kept
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
		States:       states,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d learner states", len(backup.States))
	return nil
}

// Import restores a backup file, optionally clearing existing state first
func (s *BackupService) Import(inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	log.Printf("Starting import from %s...", inputPath)
	return s.ImportFromReader(file, clear)
}

// ImportFromReader restores a backup in one transaction. Existing states for
// the same learner and key are overwritten.
func (s *BackupService) ImportFromReader(reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	repo := repository.NewStateRepository(tx)
	if clear {
		cleared, err := repo.DeleteAll()
		if err != nil {
			return err
		}
		log.Printf("Cleared %d existing learner states", cleared)
	}

	for _, state := range backup.States {
		if state.LearnerID == "" || state.Key == "" {
			return fmt.Errorf("backup contains a state without learner or key")
		}
		if err := repo.Put(state); err != nil {
			return fmt.Errorf("failed to import state for learner %s: %w", state.LearnerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Imported %d learner states", len(backup.States))
	return nil
}
