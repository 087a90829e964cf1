package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func transactionHandlers() repository.ModelHandlers[*transactionRecord] {
	return repository.ModelHandlers[*transactionRecord]{
		NewRecord: func() *transactionRecord {
			return &transactionRecord{}
		},
		GetID: func(record *transactionRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *transactionRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *transactionRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func merchantInfoHandlers() repository.ModelHandlers[*merchantInfoRecord] {
	return repository.ModelHandlers[*merchantInfoRecord]{
		NewRecord: func() *merchantInfoRecord {
			return &merchantInfoRecord{}
		},
		GetID: func(record *merchantInfoRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *merchantInfoRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *merchantInfoRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(raw string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
