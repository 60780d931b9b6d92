package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func TestComputePrudenceSplitsRecognizedAmount(t *testing.T) {
	recognized := decimal.NewFromInt(5_000_000)
	coefficient := decimal.RequireFromString("0.80")

	net, provision, err := ComputePrudence(recognized, coefficient)
	if err != nil {
		t.Fatalf("ComputePrudence: %v", err)
	}
	if !net.Equal(decimal.NewFromInt(4_000_000)) {
		t.Errorf("net = %s, want 4000000", net)
	}
	if !provision.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("provision = %s, want 1000000", provision)
	}
	if !net.Add(provision).Equal(recognized) {
		t.Errorf("net + provision = %s, must equal recognized %s", net.Add(provision), recognized)
	}
}

func TestComputePrudenceFullCertainty(t *testing.T) {
	net, provision, err := ComputePrudence(decimal.NewFromInt(100), decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("ComputePrudence: %v", err)
	}
	if !net.Equal(decimal.NewFromInt(100)) || !provision.IsZero() {
		t.Errorf("coefficient 1: net=%s provision=%s", net, provision)
	}
}

func TestComputePrudenceRejectsBadInputs(t *testing.T) {
	if _, _, err := ComputePrudence(decimal.Zero, decimal.NewFromInt(1)); !utils.IsValidationError(err) {
		t.Errorf("zero recognized: expected validation error, got %v", err)
	}
	if _, _, err := ComputePrudence(decimal.NewFromInt(100), decimal.RequireFromString("1.01")); !utils.IsValidationError(err) {
		t.Errorf("coefficient > 1: expected validation error, got %v", err)
	}
	if _, _, err := ComputePrudence(decimal.NewFromInt(100), decimal.RequireFromString("-0.1")); !utils.IsValidationError(err) {
		t.Errorf("negative coefficient: expected validation error, got %v", err)
	}
}

func TestGuardLiquidationBoundedByRecognized(t *testing.T) {
	claim := &Claim{
		Phase:            ClaimPhaseRecognized,
		RecognizedAmount: decimal.NewFromInt(5_000_000),
	}
	if err := claim.GuardLiquidation(decimal.NewFromInt(5_000_000), "ROLE-2026-01"); err != nil {
		t.Fatalf("liquidating the full recognized amount should pass: %v", err)
	}
	if err := claim.GuardLiquidation(decimal.NewFromInt(5_000_001), "ROLE-2026-01"); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := claim.GuardLiquidation(decimal.NewFromInt(1), ""); !utils.IsValidationError(err) {
		t.Fatalf("missing doc ref: expected validation error, got %v", err)
	}
}

func TestGuardLiquidationRequiresRecognizedPhase(t *testing.T) {
	claim := &Claim{Phase: ClaimPhaseCollected, RecognizedAmount: decimal.NewFromInt(100)}
	err := claim.GuardLiquidation(decimal.NewFromInt(50), "ROLE-2026-02")
	if !errors.Is(err, utils.ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
}

func TestGuardCollectionRequiresMethodAndReference(t *testing.T) {
	claim := &Claim{
		Phase:            ClaimPhaseLiquidated,
		LiquidatedAmount: decimal.NewFromInt(4_000_000),
	}
	if err := claim.GuardCollection(decimal.NewFromInt(4_000_000), "virement", "BNK-778"); err != nil {
		t.Fatalf("complete collection should pass: %v", err)
	}
	if err := claim.GuardCollection(decimal.NewFromInt(4_000_000), "", "BNK-778"); !utils.IsValidationError(err) {
		t.Fatalf("missing method: expected validation error, got %v", err)
	}
	if err := claim.GuardCollection(decimal.NewFromInt(4_000_000), "virement", ""); !utils.IsValidationError(err) {
		t.Fatalf("missing reference: expected validation error, got %v", err)
	}
	if err := claim.GuardCollection(decimal.NewFromInt(4_000_001), "virement", "BNK-778"); !utils.IsValidationError(err) {
		t.Fatalf("over liquidated: expected validation error, got %v", err)
	}
}
