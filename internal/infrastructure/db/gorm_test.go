package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate_CreatesAllCollections(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, table := range []string{
		"users", "sessions", "kyc_records", "credit_scores", "financial_stats",
		"loans", "loan_acceptances", "transactions", "repayments", "agreement_executions",
	} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("missing table %q after migrate", table)
		}
	}
}
