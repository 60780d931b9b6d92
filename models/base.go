package models

import (
	"context"

	"github.com/google/uuid"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
)

// Mandated accounts of the public-sector chart. Postings resolve them through
// the registry; seeding is done by cmd/seed-accounts.
const (
	SupplierAccountNumber   = "401"  // fournisseurs
	ClaimAccountNumber      = "411"  // redevables / clients
	TreasuryAccountNumber   = "515"  // compte au Trésor
	ResultAccountNumber     = "12"   // résultat de l'exercice
	ProvisionExpenseNumber  = "6817" // dotation aux provisions
	DoubtfulProvisionNumber = "491"  // provision pour créances douteuses
)

// document number prefixes per operation
func documentPrefix(sourceType JournalSourceType) string {
	switch sourceType {
	case JournalSourceTypeLiquidation:
		return "LIQ-"
	case JournalSourceTypePayment:
		return "PAY-"
	case JournalSourceTypeRecognition:
		return "TIT-"
	case JournalSourceTypeCollection:
		return "REC-"
	case JournalSourceTypeTransfer:
		return "VIR-"
	case JournalSourceTypeRevision:
		return "REV-"
	case JournalSourceTypeClosing:
		return "CLO-"
	case JournalSourceTypeCarryForward:
		return "RAN-"
	}
	return "JL-"
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
