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

// MerchantInfoStore serves the hierarchy and customer classification lookups
// used before FIS charges. A merchant without stored info resolves to nil
// with a nil error, callers degrade to defaults.
type MerchantInfoStore struct {
	db   *bun.DB
	repo repository.Repository[*merchantInfoRecord]
}

func (s *MerchantInfoStore) Hierarchy(ctx context.Context, merchantID string) (*core.HierarchyInfo, error) {
	record, err := s.find(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return record.hierarchy(), nil
}

func (s *MerchantInfoStore) CustomerInfo(ctx context.Context, merchantID string) (*core.CustomerInfo, error) {
	record, err := s.find(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return record.customerInfo(), nil
}

func (s *MerchantInfoStore) Upsert(ctx context.Context, info core.HierarchyInfo, customer core.CustomerInfo) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: merchant info store is not configured")
	}
	merchantID := strings.TrimSpace(info.MerchantID)
	if merchantID == "" {
		merchantID = strings.TrimSpace(customer.MerchantID)
	}
	if merchantID == "" {
		return fmt.Errorf("sqlstore: merchant id is required")
	}

	now := time.Now().UTC()
	existing, err := s.find(ctx, merchantID)
	if err != nil {
		return err
	}
	if existing == nil {
		record := &merchantInfoRecord{
			ID:               uuid.NewString(),
			MerchantID:       merchantID,
			HierarchyID:      info.HierarchyID,
			CompanyID:        info.CompanyID,
			CustomerID:       customer.CustomerID,
			CustomerCategory: customer.Category,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		_, err = s.repo.Create(ctx, record)
		return err
	}

	existing.HierarchyID = info.HierarchyID
	existing.CompanyID = info.CompanyID
	existing.CustomerID = customer.CustomerID
	existing.CustomerCategory = customer.Category
	existing.UpdatedAt = now
	_, err = s.repo.Update(ctx, existing, repository.UpdateByID(existing.ID))
	return err
}

func (s *MerchantInfoStore) find(ctx context.Context, merchantID string) (*merchantInfoRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: merchant info store is not configured")
	}
	trimmed := strings.TrimSpace(merchantID)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlstore: merchant id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("merchant_id", "=", trimmed),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

var _ core.MerchantInfoStore = (*MerchantInfoStore)(nil)
