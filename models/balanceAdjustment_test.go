package models

import (
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func adjustment(adjType AdjustmentType, direction AdjustmentDirection, amount int64) BalanceAdjustment {
	return BalanceAdjustment{
		Type:          adjType,
		Direction:     direction,
		Amount:        decimal.NewFromInt(amount),
		Justification: "inventaire physique",
		Author:        "comptable",
	}
}

func TestSignedEffectMatrix(t *testing.T) {
	cases := []struct {
		adjType   AdjustmentType
		direction AdjustmentDirection
		want      int64
	}{
		{AdjustmentTypeAsset, AdjustmentDirectionIncrease, 1000},
		{AdjustmentTypeAsset, AdjustmentDirectionDecrease, -1000},
		{AdjustmentTypeLiability, AdjustmentDirectionIncrease, -1000},
		{AdjustmentTypeLiability, AdjustmentDirectionDecrease, 1000},
	}
	for _, c := range cases {
		a := adjustment(c.adjType, c.direction, 1000)
		if got := a.SignedEffect(); !got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s/%s effect = %s, want %d", c.adjType, c.direction, got, c.want)
		}
	}
}

func TestAdjustmentGap(t *testing.T) {
	// an asset increase compensated by a liability increase nets to zero
	balanced := []BalanceAdjustment{
		adjustment(AdjustmentTypeAsset, AdjustmentDirectionIncrease, 750000),
		adjustment(AdjustmentTypeLiability, AdjustmentDirectionIncrease, 750000),
	}
	if gap := AdjustmentGap(balanced); !gap.IsZero() {
		t.Errorf("compensated adjustments should have zero gap, got %s", gap)
	}

	lopsided := []BalanceAdjustment{
		adjustment(AdjustmentTypeAsset, AdjustmentDirectionIncrease, 750000),
	}
	if gap := AdjustmentGap(lopsided); !gap.Equal(decimal.NewFromInt(750000)) {
		t.Errorf("uncompensated adjustment gap = %s, want 750000", gap)
	}

	if gap := AdjustmentGap(nil); !gap.IsZero() {
		t.Errorf("no adjustments should have zero gap, got %s", gap)
	}
}

func TestGuardWellFormed(t *testing.T) {
	good := adjustment(AdjustmentTypeAsset, AdjustmentDirectionIncrease, 1000)
	if err := good.GuardWellFormed(); err != nil {
		t.Fatalf("well-formed adjustment should pass: %v", err)
	}

	bad := []BalanceAdjustment{
		adjustment(AdjustmentType("Equity"), AdjustmentDirectionIncrease, 1000),
		adjustment(AdjustmentTypeAsset, AdjustmentDirection("Sideways"), 1000),
		adjustment(AdjustmentTypeAsset, AdjustmentDirectionIncrease, 0),
		adjustment(AdjustmentTypeAsset, AdjustmentDirectionIncrease, -1000),
	}
	noJustification := good
	noJustification.Justification = ""
	noAuthor := good
	noAuthor.Author = ""
	bad = append(bad, noJustification, noAuthor)

	for i, a := range bad {
		if err := a.GuardWellFormed(); !utils.IsValidationError(err) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}
