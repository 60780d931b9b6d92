package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func TestValidateJournalLinesBalancedPair(t *testing.T) {
	lines := []EntryLine{
		{AccountId: 1, Debit: decimal.NewFromInt(250)},
		{AccountId: 2, Credit: decimal.NewFromInt(250)},
	}
	total, err := ValidateJournalLines(lines)
	if err != nil {
		t.Fatalf("balanced journal should pass: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(250)) {
		t.Errorf("total = %s, want 250", total)
	}
}

func TestValidateJournalLinesRejectsUnbalanced(t *testing.T) {
	lines := []EntryLine{
		{AccountId: 1, Debit: decimal.NewFromInt(250)},
		{AccountId: 2, Credit: decimal.NewFromInt(249)},
	}
	_, err := ValidateJournalLines(lines)
	if !errors.Is(err, utils.ErrUnbalancedEntries) {
		t.Fatalf("expected ErrUnbalancedEntries, got %v", err)
	}
}

func TestValidateJournalLinesRejectsTwoSidedLine(t *testing.T) {
	lines := []EntryLine{
		{AccountId: 1, Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)},
		{AccountId: 2},
	}
	if _, err := ValidateJournalLines(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateJournalLinesRejectsEmptyLine(t *testing.T) {
	lines := []EntryLine{
		{AccountId: 1, Debit: decimal.NewFromInt(100)},
		{AccountId: 2}, // neither side set
	}
	if _, err := ValidateJournalLines(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateJournalLinesRejectsSingleLine(t *testing.T) {
	lines := []EntryLine{{AccountId: 1, Debit: decimal.NewFromInt(100)}}
	if _, err := ValidateJournalLines(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateJournalLinesRejectsNegativeSides(t *testing.T) {
	lines := []EntryLine{
		{AccountId: 1, Debit: decimal.NewFromInt(-100)},
		{AccountId: 2, Credit: decimal.NewFromInt(-100)},
	}
	if _, err := ValidateJournalLines(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
