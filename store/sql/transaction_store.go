package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-acquiring/core"
)

// TransactionStore persists finished authorizations and serves the lookups
// the card-on-file resolver depends on.
type TransactionStore struct {
	db   *bun.DB
	repo repository.Repository[*transactionRecord]
}

func (s *TransactionStore) Save(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	if strings.TrimSpace(tx.TransactionReference) == "" {
		return nil, fmt.Errorf("sqlstore: transaction reference is required")
	}

	record := newTransactionRecord(tx, time.Now().UTC())
	record.ID = uuid.NewString()

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created.toDomain(), nil
}

// GetByReference returns the most recent transaction for a gateway reference.
// An unknown reference resolves to a nil transaction with a nil error.
func (s *TransactionStore) GetByReference(ctx context.Context, reference string) (*core.Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlstore: transaction reference is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("transaction_reference", "=", trimmed),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

func (s *TransactionStore) ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]core.Transaction, int, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	if limit <= 0 {
		limit = 25
	}
	records, total, err := s.repo.List(ctx,
		repository.SelectBy("merchant_id", "=", strings.TrimSpace(merchantID)),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(limit, offset),
	)
	if err != nil {
		return nil, 0, err
	}
	out := make([]core.Transaction, 0, len(records))
	for _, record := range records {
		out = append(out, *record.toDomain())
	}
	return out, total, nil
}

var _ core.TransactionStore = (*TransactionStore)(nil)
