package infra

import (
	"fmt"

	"mercury/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all entities, then applies the idempotent SQL patches GORM cannot
// express (sequences for entity codes, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the SQL-only schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Request{},
		&model.Quotation{},
		&model.Contract{},
		&model.Payment{},
		&model.Document{},
		&model.CashierAccount{},
		&model.CashierAccountAssignment{},
		&model.CashierTransaction{},
		&model.Notification{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle:
// code sequences and partial indexes for the hot workflow queries.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Entity code sequences — drawn via nextval for atomic, gapless-enough codes
		`CREATE SEQUENCE IF NOT EXISTS requests_code_seq`,
		`CREATE SEQUENCE IF NOT EXISTS quotations_code_seq`,
		`CREATE SEQUENCE IF NOT EXISTS contracts_code_seq`,
		`CREATE SEQUENCE IF NOT EXISTS payments_code_seq`,
		`CREATE SEQUENCE IF NOT EXISTS cashier_transactions_code_seq`,

		// Partial index for the expiry sweeper: only SENT rows are candidates
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_quotations_sent_valid_until') THEN
		    CREATE INDEX idx_quotations_sent_valid_until
		        ON quotations (valid_until)
		        WHERE status = 'SENT';
		  END IF;
		END $$`,
		// Partial index for the open-payment guard
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_payments_open_by_contract') THEN
		    CREATE INDEX idx_payments_open_by_contract
		        ON payments (contract_id)
		        WHERE status NOT IN ('COMPLETED', 'CANCELLED');
		  END IF;
		END $$`,
		// Daily-limit sums filter on cashier/account/day over non-cancelled rows
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cashier_txs_account_day') THEN
		    CREATE INDEX idx_cashier_txs_account_day
		        ON cashier_transactions (cashier_id, cashier_account_id, created_at)
		        WHERE status <> 'CANCELLED';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
