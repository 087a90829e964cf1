package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-acquiring/core"
)

// TimeoutStore writes reconciliation records into the per-processor timeout
// tables. Each processor owns one table so downstream reconciliation jobs can
// drain them independently.
type TimeoutStore struct {
	db *bun.DB
}

func NewTimeoutStore(db *bun.DB) (*TimeoutStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &TimeoutStore{db: db}, nil
}

func (s *TimeoutStore) Record(ctx context.Context, record core.TimeoutRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: timeout store is not configured")
	}
	table, err := TimeoutTableName(record.ProcessorID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(record.TransactionReference) == "" {
		return fmt.Errorf("sqlstore: timeout record requires a transaction reference")
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := &timeoutEventRecord{
		ID:                   uuid.NewString(),
		TransactionReference: record.TransactionReference,
		ProcessorID:          record.ProcessorID,
		TransactionStatus:    string(record.Status),
		Request:              record.Request,
		CreatedAt:            createdAt.UTC(),
	}

	_, err = s.db.NewInsert().
		Model(row).
		ModelTableExpr("? AS te", bun.Ident(table)).
		Exec(ctx)
	return err
}

func (s *TimeoutStore) ListByProcessor(ctx context.Context, processorID string, limit int) ([]core.TimeoutRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: timeout store is not configured")
	}
	table, err := TimeoutTableName(processorID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var rows []*timeoutEventRecord
	err = s.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS te", bun.Ident(table)).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.TimeoutRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// TimeoutTableName derives the per-processor table name. Processor IDs feed a
// SQL identifier, so anything outside [a-z0-9_] is rejected.
func TimeoutTableName(processorID string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(processorID))
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: processor id is required")
	}
	for _, r := range trimmed {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("sqlstore: processor id %q is not a valid table suffix", processorID)
		}
	}
	return "acq_timeout_events_" + trimmed, nil
}

var _ core.TimeoutStore = (*TimeoutStore)(nil)
