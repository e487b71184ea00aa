package db

import (
	"path/filepath"
	"testing"
	"time"

	"clinic-automation/internal/models"

	"github.com/google/uuid"
)

// setupTestDB creates a file-backed SQLite store in a temp dir for testing
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	database, err := NewDatabase(filepath.Join(t.TempDir(), "logs.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		// tests may close the store themselves
		_ = database.Close()
	})

	return database
}

func newTestEntry(status string, at time.Time) *models.DeliveryLogEntry {
	return &models.DeliveryLogEntry{
		ID:          uuid.NewString(),
		MessageType: string(models.MessageTypeAppointment),
		PatientName: "Rajesh Kumar",
		ClinicName:  "Dr. Sharma Clinic",
		Channel:     models.ChannelSMS,
		Recipient:   "+919963721999",
		Body:        "Appointment reminder",
		Success:     status == models.StatusSent,
		Status:      status,
		CreatedAt:   at.UTC(),
	}
}
