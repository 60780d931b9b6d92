package models

import (
	"errors"
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func pendingTransfer() *Transfer {
	return &Transfer{
		CommandRef:        "cmd-2026-0042",
		SourceLineId:      1,
		DestinationLineId: 2,
		Amount:            decimal.NewFromInt(500000),
		Status:            TransferStatusPending,
	}
}

func TestTransferGuardCreate(t *testing.T) {
	if err := pendingTransfer().GuardCreate(); err != nil {
		t.Fatalf("well-formed transfer should pass: %v", err)
	}

	noRef := pendingTransfer()
	noRef.CommandRef = ""
	if err := noRef.GuardCreate(); !utils.IsValidationError(err) {
		t.Errorf("missing command_ref should fail, got %v", err)
	}

	sameLine := pendingTransfer()
	sameLine.DestinationLineId = sameLine.SourceLineId
	if err := sameLine.GuardCreate(); !utils.IsValidationError(err) {
		t.Errorf("same source and destination should fail, got %v", err)
	}

	zero := pendingTransfer()
	zero.Amount = decimal.Zero
	if err := zero.GuardCreate(); !utils.IsValidationError(err) {
		t.Errorf("zero amount should fail, got %v", err)
	}

	negative := pendingTransfer()
	negative.Amount = decimal.NewFromInt(-500000)
	if err := negative.GuardCreate(); !utils.IsValidationError(err) {
		t.Errorf("negative amount should fail, got %v", err)
	}
}

func TestRecordAbsentMatchesBothSentinels(t *testing.T) {
	// a raw First miss surfaces gorm's sentinel, not the wrapped one; the
	// first-use path of CreateTransfer depends on both reading as absence
	if !recordAbsent(gorm.ErrRecordNotFound) {
		t.Error("gorm.ErrRecordNotFound should read as absence")
	}
	if !recordAbsent(utils.ErrorRecordNotFound) {
		t.Error("utils.ErrorRecordNotFound should read as absence")
	}
	if errors.Is(gorm.ErrRecordNotFound, utils.ErrorRecordNotFound) {
		t.Error("the sentinels are distinct; matching only one of them is not enough")
	}
	if recordAbsent(errors.New("record not found")) {
		t.Error("an unrelated error with the same text must not read as absence")
	}
}

func TestTransferGuardDecide(t *testing.T) {
	tr := pendingTransfer()
	if err := tr.GuardDecide(); err != nil {
		t.Fatalf("pending transfer should accept a decision: %v", err)
	}

	tr.Status = TransferStatusApproved
	if err := tr.GuardDecide(); !utils.IsValidationError(err) {
		t.Errorf("approved transfer should refuse a second decision, got %v", err)
	}

	tr.Status = TransferStatusRejected
	if err := tr.GuardDecide(); !utils.IsValidationError(err) {
		t.Errorf("rejected transfer should refuse a second decision, got %v", err)
	}
}
