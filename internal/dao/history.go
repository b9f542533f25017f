package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tokencrypt-go/internal/storage"
	"github.com/tokencrypt-go/internal/trace"
)

// Operation kinds recorded in history
const (
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
)

const (
	// MaxHistory is the number of records kept; older ones are trimmed
	MaxHistory = 1000

	DefaultHistoryLimit = 50
)

// HistoryRecord describes one completed pipeline call. It never holds
// passwords, plaintext or tokens.
type HistoryRecord struct {
	ID          string    `json:"id"`
	Op          string    `json:"op"`
	RequestID   string    `json:"request_id,omitempty"`
	PlainSize   int       `json:"plain_size"`
	TokenLength int       `json:"token_length"`
	Compression string    `json:"compression"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryDAO stores operation history in insertion order
type HistoryDAO struct {
	store   *storage.Store
	maxKeep int
}

// NewHistoryDAO creates a new history DAO
func NewHistoryDAO(store *storage.Store) *HistoryDAO {
	return &HistoryDAO{store: store, maxKeep: MaxHistory}
}

// Add fills in ID, request ID and timestamp and appends rec
func (d *HistoryDAO) Add(ctx context.Context, rec HistoryRecord) (HistoryRecord, error) {
	rec.ID = uuid.NewString()
	rec.RequestID = trace.GetRequestID(ctx)
	rec.CreatedAt = time.Now().UTC()

	seq, err := d.store.AppendJSON(storage.BucketHistory, rec)
	if err != nil {
		return rec, err
	}
	if d.maxKeep > 0 && seq%100 == 0 {
		if _, err := d.store.Trim(storage.BucketHistory, d.maxKeep); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Recent returns up to limit records, newest first
func (d *HistoryDAO) Recent(limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistory {
		limit = MaxHistory
	}
	records := make([]HistoryRecord, 0, limit)
	err := d.store.Recent(storage.BucketHistory, limit, func(v []byte) error {
		var rec HistoryRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}
