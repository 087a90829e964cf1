package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type RepositoryFactory struct {
	db *bun.DB

	transactionStore  *TransactionStore
	timeoutStore      *TimeoutStore
	merchantInfoStore *MerchantInfoStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.transactionStore != nil && f.timeoutStore != nil {
		return nil
	}
	return f.initStores()
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) TransactionStore() *TransactionStore {
	if f == nil {
		return nil
	}
	return f.transactionStore
}

func (f *RepositoryFactory) TimeoutStore() *TimeoutStore {
	if f == nil {
		return nil
	}
	return f.timeoutStore
}

func (f *RepositoryFactory) MerchantInfoStore() *MerchantInfoStore {
	if f == nil {
		return nil
	}
	return f.merchantInfoStore
}

func (f *RepositoryFactory) initStores() error {
	transactionRepo := repository.NewRepository[*transactionRecord](f.db, transactionHandlers())
	if validator, ok := transactionRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("sqlstore: invalid transaction repository wiring: %w", err)
		}
	}

	merchantInfoRepo := repository.NewRepository[*merchantInfoRecord](f.db, merchantInfoHandlers())
	if validator, ok := merchantInfoRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("sqlstore: invalid merchant info repository wiring: %w", err)
		}
	}

	f.transactionStore = &TransactionStore{
		db:   f.db,
		repo: transactionRepo,
	}
	f.merchantInfoStore = &MerchantInfoStore{
		db:   f.db,
		repo: merchantInfoRepo,
	}
	timeoutStore, err := NewTimeoutStore(f.db)
	if err != nil {
		return err
	}
	f.timeoutStore = timeoutStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

// OpenPostgres dials a PostgreSQL database and wraps it with the bun dialect
// this package expects.
func OpenPostgres(dsn string) (*bun.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", trimmed)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

// OpenSQLite opens a SQLite database, used by local and test environments.
func OpenSQLite(dsn string) (*bun.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlstore: sqlite dsn is required")
	}
	sqlDB, err := sql.Open("sqlite3", trimmed)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
