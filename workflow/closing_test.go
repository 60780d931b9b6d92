package workflow

import (
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/shopspring/decimal"
)

func balance(accountId int, number string, class int, debit int64, credit int64) models.AccountBalance {
	return models.AccountBalance{
		AccountId:     accountId,
		AccountNumber: number,
		Class:         class,
		Debit:         decimal.NewFromInt(debit),
		Credit:        decimal.NewFromInt(credit),
	}
}

const testResultAccountId = 99

func TestComputeClosingEntriesSurplus(t *testing.T) {
	balances := []models.AccountBalance{
		balance(1, "515100", 5, 1000000, 0),
		balance(2, "401100", 4, 0, 300000),
		balance(3, "606100", 6, 500000, 0),
		balance(4, "706100", 7, 0, 1200000),
	}

	lines, result := ComputeClosingEntries(balances, testResultAccountId)

	if !result.Equal(decimal.NewFromInt(700000)) {
		t.Fatalf("result = %s, want 700000", result)
	}
	if _, err := models.ValidateJournalLines(lines); err != nil {
		t.Fatalf("closing journal must balance: %v", err)
	}
	for _, l := range lines {
		if l.AccountId == 1 || l.AccountId == 2 {
			t.Errorf("balance-sheet account %d must not appear in the closing journal", l.AccountId)
		}
	}

	var resultLine *models.EntryLine
	for i := range lines {
		if lines[i].AccountId == testResultAccountId {
			resultLine = &lines[i]
		}
	}
	if resultLine == nil {
		t.Fatal("closing journal should book the result account")
	}
	if !resultLine.Credit.Equal(decimal.NewFromInt(700000)) {
		t.Errorf("surplus should credit the result account, got debit %s credit %s",
			resultLine.Debit, resultLine.Credit)
	}
}

func TestComputeClosingEntriesDeficit(t *testing.T) {
	balances := []models.AccountBalance{
		balance(1, "515100", 5, 0, 500000),
		balance(3, "606100", 6, 900000, 0),
		balance(4, "706100", 7, 0, 400000),
	}

	lines, result := ComputeClosingEntries(balances, testResultAccountId)

	if !result.Equal(decimal.NewFromInt(-500000)) {
		t.Fatalf("result = %s, want -500000", result)
	}
	if _, err := models.ValidateJournalLines(lines); err != nil {
		t.Fatalf("closing journal must balance: %v", err)
	}
	for _, l := range lines {
		if l.AccountId == testResultAccountId && !l.Debit.Equal(decimal.NewFromInt(500000)) {
			t.Errorf("deficit should debit the result account, got debit %s credit %s",
				l.Debit, l.Credit)
		}
	}
}

func TestComputeCarryForwardEntriesFoldsResult(t *testing.T) {
	balances := []models.AccountBalance{
		balance(1, "515100", 5, 1000000, 0),
		balance(2, "401100", 4, 0, 300000),
		balance(3, "606100", 6, 500000, 0),
		balance(4, "706100", 7, 0, 1200000),
	}
	result := decimal.NewFromInt(700000)

	lines := ComputeCarryForwardEntries(balances, testResultAccountId, result)

	if _, err := models.ValidateJournalLines(lines); err != nil {
		t.Fatalf("carry-forward journal must balance: %v", err)
	}
	for _, l := range lines {
		if l.AccountId == 3 || l.AccountId == 4 {
			t.Errorf("profit-and-loss account %d must not carry forward", l.AccountId)
		}
	}

	var resultLine *models.EntryLine
	for i := range lines {
		if lines[i].AccountId == testResultAccountId {
			resultLine = &lines[i]
		}
	}
	if resultLine == nil {
		t.Fatal("carry-forward should open the result account")
	}
	if !resultLine.Credit.Equal(result) {
		t.Errorf("surplus should open as a credit on the result account, got debit %s credit %s",
			resultLine.Debit, resultLine.Credit)
	}
}

func TestComputeCarryForwardEntriesResultAccountAlreadyActive(t *testing.T) {
	// the result account moved during the year; its closing balance and the
	// fresh result merge into a single opening line
	balances := []models.AccountBalance{
		balance(1, "515100", 5, 800000, 0),
		balance(testResultAccountId, "120000", 1, 0, 100000),
		balance(3, "606100", 6, 500000, 0),
		balance(4, "706100", 7, 0, 1200000),
	}
	result := decimal.NewFromInt(700000)

	lines := ComputeCarryForwardEntries(balances, testResultAccountId, result)

	if _, err := models.ValidateJournalLines(lines); err != nil {
		t.Fatalf("carry-forward journal must balance: %v", err)
	}
	resultLines := 0
	for _, l := range lines {
		if l.AccountId == testResultAccountId {
			resultLines++
			if !l.Credit.Equal(decimal.NewFromInt(800000)) {
				t.Errorf("merged opening should credit 800000, got debit %s credit %s",
					l.Debit, l.Credit)
			}
		}
	}
	if resultLines != 1 {
		t.Fatalf("result account should open once, got %d lines", resultLines)
	}
}
