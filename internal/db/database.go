package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clinic-automation/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNilDatabase is returned by methods called on a nil store
	ErrNilDatabase = errors.New("database is nil")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("database is closed")
	// ErrNilEntry is returned when appending a nil log entry
	ErrNilEntry = errors.New("log entry cannot be nil")
)

const defaultListLimit = 100

// DeliveryLogStore is the append-only audit trail of dispatch attempts
type DeliveryLogStore interface {
	Close() error
	AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLogEntry) error
	ListDeliveryLogs(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error)
}

// Open returns the store for dsn: Postgres for postgres:// URLs, SQLite otherwise
func Open(ctx context.Context, dsn string) (DeliveryLogStore, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresStore(ctx, dsn)
	}
	return NewDatabase(dsn)
}

// Database is the SQLite delivery log store. Close waits for in-flight
// writes to finish.
type Database struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Verify we can actually connect to the database
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("ping failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	// Try to create tables - if this fails, the database is not usable
	if err := createTables(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("create tables failed: %w, close failed: %v", err, closeErr)
		}
		return nil, err
	}

	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS message_logs (
			id TEXT PRIMARY KEY,
			patient_name TEXT NOT NULL,
			clinic_name TEXT NOT NULL,
			message_type TEXT NOT NULL,
			message_content TEXT NOT NULL,
			channel TEXT NOT NULL,
			recipient TEXT NOT NULL,
			status TEXT NOT NULL,
			error_code TEXT,
			external_message_id TEXT,
			sent_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_message_logs_sent_at ON message_logs(sent_at);
	`)
	return err
}

func (d *Database) Close() error {
	if d == nil {
		return ErrNilDatabase
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return errors.New("database already closed")
	}

	err := d.db.Close()
	d.db = nil
	return err
}

func (d *Database) AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLogEntry) error {
	if d == nil {
		return ErrNilDatabase
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return ErrClosed
	}

	if err := validateEntry(entry); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO message_logs (id, patient_name, clinic_name, message_type, message_content, channel, recipient, status, error_code, external_message_id, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.PatientName,
		entry.ClinicName,
		entry.MessageType,
		entry.Body,
		string(entry.Channel),
		entry.Recipient,
		entry.Status,
		nullString(entry.ErrorCode),
		nullString(entry.ExternalMessageID),
		entry.CreatedAt.UnixMilli(),
	)
	return err
}

func (d *Database) ListDeliveryLogs(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error) {
	if d == nil {
		return nil, ErrNilDatabase
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, ErrClosed
	}

	limit, offset, err := normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, patient_name, clinic_name, message_type, message_content, channel, recipient, status, error_code, external_message_id, sent_at
		FROM message_logs ORDER BY sent_at DESC, id LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.DeliveryLogEntry{}
	for rows.Next() {
		entry := &models.DeliveryLogEntry{}
		var channel string
		var errorCode, externalID sql.NullString
		var sentAt int64
		if err := rows.Scan(&entry.ID, &entry.PatientName, &entry.ClinicName, &entry.MessageType, &entry.Body, &channel, &entry.Recipient, &entry.Status, &errorCode, &externalID, &sentAt); err != nil {
			return nil, err
		}
		entry.Channel = models.Channel(channel)
		entry.ErrorCode = errorCode.String
		entry.ExternalMessageID = externalID.String
		entry.Success = entry.Status == models.StatusSent
		entry.CreatedAt = time.UnixMilli(sentAt).UTC()
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func validateEntry(entry *models.DeliveryLogEntry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if entry.ID == "" || entry.Channel == "" || entry.Status == "" {
		return errors.New("log entry id, channel and status are required")
	}
	return nil
}

func normalizePage(limit, offset int) (int, int, error) {
	if limit < 0 {
		return 0, 0, errors.New("limit cannot be negative")
	}
	if offset < 0 {
		return 0, 0, errors.New("offset cannot be negative")
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	return limit, offset, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
