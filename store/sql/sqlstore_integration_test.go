package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-acquiring/core"
	acquiringmigrations "github.com/goliatone/go-acquiring/migrations"
	sqlstore "github.com/goliatone/go-acquiring/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-acquiring-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:acquiring-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = acquiringmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != acquiringmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, acquiringmigrations.WithValidationTargets(acquiringmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func newTestFactory(t *testing.T) (*sqlstore.RepositoryFactory, func()) {
	t.Helper()
	client, cleanup := newSQLiteClient(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		cleanup()
		t.Fatalf("new repository factory: %v", err)
	}
	return factory, cleanup
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{
		"acq_transactions",
		"acq_merchant_info",
		"acq_timeout_events_kushki",
		"acq_timeout_events_sandbox",
	} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestTransactionStore_SaveAndGetByReference(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newTestFactory(t)
	defer cleanup()

	store := factory.TransactionStore()
	saved, err := store.Save(ctx, core.Transaction{
		TransactionID:             "trx-1",
		TransactionReference:      "ref-1",
		TicketNumber:              "182000000000000001",
		ApprovalCode:              "A1B2C3",
		MerchantID:                "merchant-1",
		ProcessorID:               "kushki",
		ProcessorName:             "Kushki Acquirer Processor",
		TransactionType:           core.TransactionTypeCharge,
		TransactionStatus:         core.TransactionStatusApproval,
		ApprovedTransactionAmount: 112,
		Amount:                    core.Amount{Currency: "USD", SubtotalIVA: 100, IVA: 12},
		BinCard:                   "411111",
		LastFourDigits:            "4242",
		IsInitialCOF:              true,
	})
	if err != nil {
		t.Fatalf("save transaction: %v", err)
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be assigned")
	}

	fetched, err := store.GetByReference(ctx, "ref-1")
	if err != nil {
		t.Fatalf("get by reference: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected stored transaction")
	}
	if fetched.TransactionID != "trx-1" || !fetched.IsInitialCOF {
		t.Fatalf("unexpected transaction %+v", fetched)
	}
	if fetched.Amount.Total() != 112 {
		t.Fatalf("amount breakdown lost, got %+v", fetched.Amount)
	}

	missing, err := store.GetByReference(ctx, "ref-unknown")
	if err != nil {
		t.Fatalf("unknown reference: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown reference must resolve to nil, got %+v", missing)
	}
}

func TestTransactionStore_ListByMerchant(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newTestFactory(t)
	defer cleanup()

	store := factory.TransactionStore()
	for i := 0; i < 3; i++ {
		if _, err := store.Save(ctx, core.Transaction{
			TransactionID:        fmt.Sprintf("trx-%d", i),
			TransactionReference: fmt.Sprintf("ref-%d", i),
			MerchantID:           "merchant-list",
			ProcessorID:          "kushki",
			TransactionType:      core.TransactionTypeCharge,
			TransactionStatus:    core.TransactionStatusApproval,
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if _, err := store.Save(ctx, core.Transaction{
		TransactionID:        "trx-other",
		TransactionReference: "ref-other",
		MerchantID:           "merchant-other",
		ProcessorID:          "fis",
		TransactionType:      core.TransactionTypeCharge,
		TransactionStatus:    core.TransactionStatusDeclined,
	}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	items, total, err := store.ListByMerchant(ctx, "merchant-list", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected page of 2, got %d", len(items))
	}
	for _, item := range items {
		if item.MerchantID != "merchant-list" {
			t.Fatalf("foreign merchant leaked into page: %+v", item)
		}
	}
}

func TestTimeoutStore_PerProcessorTables(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newTestFactory(t)
	defer cleanup()

	store := factory.TimeoutStore()
	if err := store.Record(ctx, core.TimeoutRecord{
		TransactionReference: "ref-timeout-1",
		ProcessorID:          "kushki",
		Status:               core.TransactionStatusDeclined,
		Request:              map[string]any{"token": "tok-1"},
	}); err != nil {
		t.Fatalf("record kushki timeout: %v", err)
	}
	if err := store.Record(ctx, core.TimeoutRecord{
		TransactionReference: "ref-timeout-2",
		ProcessorID:          "fis",
		Status:               core.TransactionStatusDeclined,
	}); err != nil {
		t.Fatalf("record fis timeout: %v", err)
	}

	kushkiEvents, err := store.ListByProcessor(ctx, "kushki", 0)
	if err != nil {
		t.Fatalf("list kushki: %v", err)
	}
	if len(kushkiEvents) != 1 {
		t.Fatalf("expected one kushki event, got %d", len(kushkiEvents))
	}
	if kushkiEvents[0].TransactionReference != "ref-timeout-1" {
		t.Fatalf("unexpected event %+v", kushkiEvents[0])
	}
	if kushkiEvents[0].Request["token"] != "tok-1" {
		t.Fatalf("request snapshot lost, got %+v", kushkiEvents[0].Request)
	}

	fisEvents, err := store.ListByProcessor(ctx, "fis", 0)
	if err != nil {
		t.Fatalf("list fis: %v", err)
	}
	if len(fisEvents) != 1 || fisEvents[0].TransactionReference != "ref-timeout-2" {
		t.Fatalf("expected isolated fis event, got %+v", fisEvents)
	}
}

func TestTimeoutTableNameRejectsBadIdentifiers(t *testing.T) {
	name, err := sqlstore.TimeoutTableName("kushki")
	if err != nil {
		t.Fatalf("table name: %v", err)
	}
	if name != "acq_timeout_events_kushki" {
		t.Fatalf("unexpected table name %q", name)
	}
	for _, bad := range []string{"", "  ", "kushki;drop", "a b", "kushki-ci"} {
		if _, err := sqlstore.TimeoutTableName(bad); err == nil {
			t.Fatalf("expected rejection of %q", bad)
		}
	}
}

func TestMerchantInfoStore_UpsertAndLookups(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newTestFactory(t)
	defer cleanup()

	store := factory.MerchantInfoStore()
	hierarchy, err := store.Hierarchy(ctx, "merchant-fis")
	if err != nil {
		t.Fatalf("hierarchy before upsert: %v", err)
	}
	if hierarchy != nil {
		t.Fatalf("expected nil before upsert, got %+v", hierarchy)
	}

	if err := store.Upsert(ctx,
		core.HierarchyInfo{MerchantID: "merchant-fis", HierarchyID: "h-1", CompanyID: "c-1"},
		core.CustomerInfo{MerchantID: "merchant-fis", CustomerID: "cust-1", Category: "ECOMMERCE"},
	); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hierarchy, err = store.Hierarchy(ctx, "merchant-fis")
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	if hierarchy == nil || hierarchy.HierarchyID != "h-1" || hierarchy.CompanyID != "c-1" {
		t.Fatalf("unexpected hierarchy %+v", hierarchy)
	}

	customer, err := store.CustomerInfo(ctx, "merchant-fis")
	if err != nil {
		t.Fatalf("customer info: %v", err)
	}
	if customer == nil || customer.CustomerID != "cust-1" || customer.Category != "ECOMMERCE" {
		t.Fatalf("unexpected customer info %+v", customer)
	}

	if err := store.Upsert(ctx,
		core.HierarchyInfo{MerchantID: "merchant-fis", HierarchyID: "h-2", CompanyID: "c-1"},
		core.CustomerInfo{MerchantID: "merchant-fis", CustomerID: "cust-1", Category: "RETAIL"},
	); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	hierarchy, err = store.Hierarchy(ctx, "merchant-fis")
	if err != nil {
		t.Fatalf("hierarchy after update: %v", err)
	}
	if hierarchy == nil || hierarchy.HierarchyID != "h-2" {
		t.Fatalf("expected updated hierarchy, got %+v", hierarchy)
	}
}
