package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

func draftRevision(revisionType RevisionType, deltas ...int64) *Revision {
	r := &Revision{RevisionType: revisionType, Status: RevisionStatusDraft}
	for i, d := range deltas {
		r.Lines = append(r.Lines, RevisionLine{
			BudgetLineId: i + 1,
			DeltaAmount:  decimal.NewFromInt(d),
		})
	}
	return r
}

func TestGuardLinesIncrease(t *testing.T) {
	if err := draftRevision(RevisionTypeIncrease, 500000, 250000).GuardLines(); err != nil {
		t.Fatalf("positive deltas should pass: %v", err)
	}
	if err := draftRevision(RevisionTypeIncrease, 500000, -1).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("negative delta on an increase should fail, got %v", err)
	}
}

func TestGuardLinesDecrease(t *testing.T) {
	if err := draftRevision(RevisionTypeDecrease, -500000).GuardLines(); err != nil {
		t.Fatalf("negative deltas should pass: %v", err)
	}
	if err := draftRevision(RevisionTypeDecrease, -500000, 1).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("positive delta on a decrease should fail, got %v", err)
	}
}

func TestGuardLinesReallocationMustSumToZero(t *testing.T) {
	if err := draftRevision(RevisionTypeReallocation, -300000, 300000).GuardLines(); err != nil {
		t.Fatalf("zero-sum reallocation should pass: %v", err)
	}
	if err := draftRevision(RevisionTypeReallocation, -300000, 299999).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("non-zero-sum reallocation should fail, got %v", err)
	}
}

func TestGuardLinesRejectsMalformed(t *testing.T) {
	if err := draftRevision(RevisionTypeIncrease).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("empty lines should fail, got %v", err)
	}
	if err := draftRevision(RevisionTypeIncrease, 100, 0).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("zero delta should fail, got %v", err)
	}
	if err := draftRevision(RevisionType("Supplementary"), 100).GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("unknown type should fail, got %v", err)
	}

	dup := draftRevision(RevisionTypeIncrease, 100, 200)
	dup.Lines[1].BudgetLineId = dup.Lines[0].BudgetLineId
	if err := dup.GuardLines(); !utils.IsValidationError(err) {
		t.Errorf("duplicate budget line should fail, got %v", err)
	}
}

func TestGuardTransitionOrder(t *testing.T) {
	r := &Revision{Status: RevisionStatusDraft}
	if err := r.GuardTransition(RevisionStatusSubmitted); err != nil {
		t.Fatalf("Draft -> Submitted should pass: %v", err)
	}
	if err := r.GuardTransition(RevisionStatusApproved); !errors.Is(err, utils.ErrPhaseOrder) {
		t.Errorf("Draft -> Approved should fail with ErrPhaseOrder, got %v", err)
	}

	r.Status = RevisionStatusSubmitted
	if err := r.GuardTransition(RevisionStatusApproved); err != nil {
		t.Fatalf("Submitted -> Approved should pass: %v", err)
	}
	if err := r.GuardTransition(RevisionStatusRejected); err != nil {
		t.Fatalf("Submitted -> Rejected should pass: %v", err)
	}
	if err := r.GuardTransition(RevisionStatusSubmitted); !errors.Is(err, utils.ErrPhaseOrder) {
		t.Errorf("Submitted -> Submitted should fail with ErrPhaseOrder, got %v", err)
	}

	r.Status = RevisionStatusApproved
	if err := r.GuardTransition(RevisionStatusRejected); !errors.Is(err, utils.ErrPhaseOrder) {
		t.Errorf("decided revisions must not transition, got %v", err)
	}
	if !r.Decided() {
		t.Error("Approved revision should report Decided")
	}
}
