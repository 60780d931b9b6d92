package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func activeLine(revised, engaged, liquidated int64) *BudgetLine {
	return &BudgetLine{
		Code:          "6011",
		Label:         "Fournitures de bureau",
		Category:      BudgetCategoryOperating,
		BudgetInitial: decimal.NewFromInt(revised),
		BudgetRevised: decimal.NewFromInt(revised),
		Engaged:       decimal.NewFromInt(engaged),
		Liquidated:    decimal.NewFromInt(liquidated),
		IsActive:      utils.NewTrue(),
	}
}

func TestAvailableIsRevisedMinusEngaged(t *testing.T) {
	line := activeLine(10_000_000, 4_000_000, 1_000_000)
	if !line.Available().Equal(decimal.NewFromInt(6_000_000)) {
		t.Fatalf("available = %s, want 6000000", line.Available())
	}
}

func TestCanEngageWithinAvailable(t *testing.T) {
	line := activeLine(10_000_000, 4_000_000, 0)
	if err := line.CanEngage(decimal.NewFromInt(6_000_000)); err != nil {
		t.Fatalf("engaging exactly the available credit should pass: %v", err)
	}
}

func TestCanEngageOverAvailableFails(t *testing.T) {
	line := activeLine(10_000_000, 4_000_000, 0)
	err := line.CanEngage(decimal.NewFromInt(6_000_001))
	if !errors.Is(err, utils.ErrInsufficientCredit) {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
}

func TestCanEngageRejectsNonPositiveAmounts(t *testing.T) {
	line := activeLine(10_000_000, 0, 0)
	if err := line.CanEngage(decimal.Zero); !utils.IsValidationError(err) {
		t.Fatalf("zero amount: expected validation error, got %v", err)
	}
	if err := line.CanEngage(decimal.NewFromInt(-5)); !utils.IsValidationError(err) {
		t.Fatalf("negative amount: expected validation error, got %v", err)
	}
}

func TestCanEngageRejectsDeactivatedLine(t *testing.T) {
	line := activeLine(10_000_000, 0, 0)
	line.IsActive = utils.NewFalse()
	if err := line.CanEngage(decimal.NewFromInt(1)); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error on deactivated line, got %v", err)
	}
}

func TestCanLiquidateBoundedByEngaged(t *testing.T) {
	line := activeLine(10_000_000, 4_000_000, 3_000_000)
	if err := line.CanLiquidate(decimal.NewFromInt(1_000_000)); err != nil {
		t.Fatalf("liquidating up to engaged should pass: %v", err)
	}
	if err := line.CanLiquidate(decimal.NewFromInt(1_000_001)); err == nil {
		t.Fatal("liquidating beyond engaged should fail")
	}
}
