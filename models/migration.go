package models

import (
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
)

// MigrateModels runs the schema auto-migration for every aggregate.
func MigrateModels() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Account{},
		&AccountingPeriod{},
		&BudgetLine{},
		&Commitment{},
		&Claim{},
		&Transfer{},
		&Revision{},
		&RevisionLine{},
		&Journal{},
		&EntryLine{},
		&ReconciliationGroup{},
		&BalanceAdjustment{},
		&IdempotencyKey{},
	)
}
