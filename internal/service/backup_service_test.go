package service

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eartraining/internal/database"
	"eartraining/internal/models"
	"eartraining/internal/repository"
)

func newBackupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "backup.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestBackupRoundTrip(t *testing.T) {
	src := newBackupTestDB(t)
	updated := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	repo := repository.NewStateRepository(src)
	repo.Put(models.LearnerState{LearnerID: "a", Key: "ear-training-state", Value: `{"x":1}`, UpdatedAt: updated})
	repo.Put(models.LearnerState{LearnerID: "b", Key: "ear-training-state", Value: `{"x":2}`, UpdatedAt: updated})

	var buf bytes.Buffer
	if err := NewBackupService(src).ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}

	var backup BackupData
	if err := json.Unmarshal(buf.Bytes(), &backup); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if backup.Version != "1.0" || backup.DatabaseType != "sqlite" || len(backup.States) != 2 {
		t.Errorf("backup header = %s/%s with %d states", backup.Version, backup.DatabaseType, len(backup.States))
	}

	dst := newBackupTestDB(t)
	dstRepo := repository.NewStateRepository(dst)
	dstRepo.Set("stale", "k", "v")

	if err := NewBackupService(dst).ImportFromReader(bytes.NewReader(buf.Bytes()), true); err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}

	states, err := dstRepo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states after clear+import, want 2", len(states))
	}
	if states[0].LearnerID != "a" || states[0].Value != `{"x":1}` || !states[0].UpdatedAt.Equal(updated) {
		t.Errorf("first state = %+v", states[0])
	}
}

func TestImportRejectsBadBackups(t *testing.T) {
	db := newBackupTestDB(t)
	svc := NewBackupService(db)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"wrong version", `{"version":"9","learner_states":[]}`},
		{"missing learner", `{"version":"1.0","learner_states":[{"learner_id":"a","key":"k"},{"key":"k","value":"v"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.ImportFromReader(strings.NewReader(tt.body), false); err == nil {
				t.Error("ImportFromReader() error = nil")
			}
		})
	}

	// the failed import must not leave the first state behind
	states, _ := repository.NewStateRepository(db).List()
	if len(states) != 0 {
		t.Errorf("partial import committed %d states", len(states))
	}
}

func TestExportSkipsStaleStates(t *testing.T) {
	db := newBackupTestDB(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := repository.NewStateRepository(db)
	repo.Put(models.LearnerState{LearnerID: "old", Key: "k", Value: "1", UpdatedAt: now.Add(-200 * 24 * time.Hour)})
	repo.Put(models.LearnerState{LearnerID: "recent", Key: "k", Value: "2", UpdatedAt: now.Add(-24 * time.Hour)})

	svc := NewBackupService(db)
	svc.now = func() time.Time { return now }
	svc.SetRetention(90 * 24 * time.Hour)

	var buf bytes.Buffer
	if err := svc.ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}

	var backup BackupData
	if err := json.Unmarshal(buf.Bytes(), &backup); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(backup.States) != 1 || backup.States[0].LearnerID != "recent" {
		t.Errorf("exported states = %+v, want only the recent learner", backup.States)
	}
}
