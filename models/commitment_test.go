package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func engagedCommitment(amount int64) *Commitment {
	return &Commitment{
		Number:        "ENG-1",
		Phase:         CommitmentPhaseEngaged,
		EngagedAmount: decimal.NewFromInt(amount),
		Supplier:      "Imprimerie Nationale",
	}
}

func TestGuardTransitionAdvancesOnePhase(t *testing.T) {
	c := engagedCommitment(1_000_000)
	if err := c.GuardTransition(CommitmentPhaseLiquidated, decimal.NewFromInt(900_000), "FACT-2026-001"); err != nil {
		t.Fatalf("engaged -> liquidated should pass: %v", err)
	}
}

func TestGuardTransitionRejectsSkippedPhase(t *testing.T) {
	c := engagedCommitment(1_000_000)
	err := c.GuardTransition(CommitmentPhaseAuthorized, decimal.NewFromInt(900_000), "OP-2026-001")
	if !errors.Is(err, utils.ErrPhaseOrder) {
		t.Fatalf("engaged -> authorized skips liquidation, expected ErrPhaseOrder, got %v", err)
	}
}

func TestGuardTransitionRejectsRepeatedPhase(t *testing.T) {
	c := engagedCommitment(1_000_000)
	c.Phase = CommitmentPhaseLiquidated
	c.LiquidatedAmount = decimal.NewFromInt(900_000)
	err := c.GuardTransition(CommitmentPhaseLiquidated, decimal.NewFromInt(900_000), "FACT-2026-002")
	if !errors.Is(err, utils.ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
}

func TestGuardTransitionRejectsBackwardPhase(t *testing.T) {
	c := engagedCommitment(1_000_000)
	c.Phase = CommitmentPhasePaid
	c.PaidAmount = decimal.NewFromInt(900_000)
	err := c.GuardTransition(CommitmentPhaseAuthorized, decimal.NewFromInt(900_000), "OP-2026-002")
	if !errors.Is(err, utils.ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
}

func TestGuardTransitionRequiresDocumentRef(t *testing.T) {
	c := engagedCommitment(1_000_000)
	err := c.GuardTransition(CommitmentPhaseLiquidated, decimal.NewFromInt(900_000), "")
	if !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGuardTransitionAmountMayNotGrowDownstream(t *testing.T) {
	c := engagedCommitment(1_000_000)
	err := c.GuardTransition(CommitmentPhaseLiquidated, decimal.NewFromInt(1_000_001), "FACT-2026-003")
	if !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// equality is allowed
	if err := c.GuardTransition(CommitmentPhaseLiquidated, decimal.NewFromInt(1_000_000), "FACT-2026-003"); err != nil {
		t.Fatalf("equal amount should pass: %v", err)
	}
}
