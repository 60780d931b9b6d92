package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func TestNextLetterToken(t *testing.T) {
	cases := map[string]string{
		"":   "A",
		"A":  "B",
		"Y":  "Z",
		"Z":  "AA",
		"AA": "AB",
		"AZ": "BA",
		"ZZ": "AAA",
		"b":  "C", // case-insensitive input
	}
	for in, want := range cases {
		if got := NextLetterToken(in); got != want {
			t.Errorf("NextLetterToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextLetterTokenSequenceCoversAlphabetRollover(t *testing.T) {
	token := ""
	for i := 0; i < 26; i++ {
		token = NextLetterToken(token)
	}
	if token != "Z" {
		t.Fatalf("26th token = %q, want Z", token)
	}
	if next := NextLetterToken(token); next != "AA" {
		t.Fatalf("27th token = %q, want AA", next)
	}
}

func lettrageLine(accountId int, debit, credit string) EntryLine {
	return EntryLine{
		AccountId: accountId,
		Debit:     decimal.RequireFromString(debit),
		Credit:    decimal.RequireFromString(credit),
	}
}

func TestValidateLettrageSetAcceptsBalancedPair(t *testing.T) {
	lines := []EntryLine{
		lettrageLine(7, "1500.00", "0"),
		lettrageLine(7, "0", "1500.00"),
	}
	if err := ValidateLettrageSet(lines); err != nil {
		t.Fatalf("balanced pair should pass: %v", err)
	}
}

func TestValidateLettrageSetToleratesSubCentResidue(t *testing.T) {
	lines := []EntryLine{
		lettrageLine(7, "100.004", "0"),
		lettrageLine(7, "0", "100.00"),
	}
	if err := ValidateLettrageSet(lines); err != nil {
		t.Fatalf("residue below 0.01 should pass: %v", err)
	}
}

func TestValidateLettrageSetRejectsUnbalanced(t *testing.T) {
	lines := []EntryLine{
		lettrageLine(7, "100.01", "0"),
		lettrageLine(7, "0", "100.00"),
	}
	err := ValidateLettrageSet(lines)
	if !errors.Is(err, utils.ErrUnbalancedEntries) {
		t.Fatalf("expected ErrUnbalancedEntries, got %v", err)
	}
}

func TestValidateLettrageSetRejectsMixedAccounts(t *testing.T) {
	lines := []EntryLine{
		lettrageLine(7, "100", "0"),
		lettrageLine(8, "0", "100"),
	}
	if err := ValidateLettrageSet(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateLettrageSetRejectsSingleLine(t *testing.T) {
	lines := []EntryLine{lettrageLine(7, "100", "0")}
	if err := ValidateLettrageSet(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateLettrageSetRejectsAlreadyLettered(t *testing.T) {
	letter := "A"
	lines := []EntryLine{
		{AccountId: 7, Debit: decimal.NewFromInt(100), Letter: &letter},
		lettrageLine(7, "0", "100"),
	}
	if err := ValidateLettrageSet(lines); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLetterLessOrdersShorterTokensFirst(t *testing.T) {
	if !letterLess("Z", "AA") {
		t.Error("Z must order before AA")
	}
	if letterLess("AA", "Z") {
		t.Error("AA must not order before Z")
	}
	if !letterLess("AA", "AB") {
		t.Error("AA must order before AB")
	}
}
