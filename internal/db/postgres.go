package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clinic-automation/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the delivery log store for a hosted Postgres database
type PostgresStore struct {
	mu   sync.RWMutex
	pool *pgxpool.Pool
}

const postgresSchema = `
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
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// NewPostgresStore connects to dsn and ensures the message_logs table exists
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() error {
	if p == nil {
		return ErrNilDatabase
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool == nil {
		return errors.New("database already closed")
	}
	p.pool.Close()
	p.pool = nil
	return nil
}

func (p *PostgresStore) AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLogEntry) error {
	if p == nil {
		return ErrNilDatabase
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pool == nil {
		return ErrClosed
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO message_logs (id, patient_name, clinic_name, message_type, message_content, channel, recipient, status, error_code, external_message_id, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
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
		entry.CreatedAt,
	)
	return err
}

func (p *PostgresStore) ListDeliveryLogs(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error) {
	if p == nil {
		return nil, ErrNilDatabase
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pool == nil {
		return nil, ErrClosed
	}

	limit, offset, err := normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, patient_name, clinic_name, message_type, message_content, channel, recipient, status,
			COALESCE(error_code, ''), COALESCE(external_message_id, ''), sent_at
		FROM message_logs ORDER BY sent_at DESC, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.DeliveryLogEntry{}
	for rows.Next() {
		entry := &models.DeliveryLogEntry{}
		var channel string
		if err := rows.Scan(&entry.ID, &entry.PatientName, &entry.ClinicName, &entry.MessageType, &entry.Body, &channel, &entry.Recipient, &entry.Status, &entry.ErrorCode, &entry.ExternalMessageID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Channel = models.Channel(channel)
		entry.Success = entry.Status == models.StatusSent
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
