package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

const transferApproveOperation = "transfer-approve"

type NewTransferInput struct {
	CommandRef        string          `json:"command_ref" binding:"required"`
	SourceLineId      int             `json:"source_line_id" binding:"required"`
	DestinationLineId int             `json:"destination_line_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Reason            string          `json:"reason"`
}

// CreateTransfer records the virement request at status Pending. Resubmitting
// the same command reference returns the transfer already created for it.
func CreateTransfer(ctx context.Context, input *NewTransferInput) (*models.Transfer, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	transfer := models.Transfer{
		EntityId:          entityId,
		CommandRef:        input.CommandRef,
		SourceLineId:      input.SourceLineId,
		DestinationLineId: input.DestinationLineId,
		Amount:            input.Amount,
		Reason:            input.Reason,
		Status:            models.TransferStatusPending,
	}
	if err := transfer.GuardCreate(); err != nil {
		return nil, err
	}

	if err := models.ValidatePeriodOpen(ctx, time.Now(), entityId); err != nil {
		return nil, err
	}

	existing, err := models.GetTransferByCommandRef(ctx, entityId, input.CommandRef)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		transfer.RequestedBy = userName
	}

	seqNo, err := utils.GetSequence[models.Transfer](ctx, entityId)
	if err != nil {
		return nil, err
	}
	transfer.TransferNumber = fmt.Sprintf("VIR-%d", seqNo)
	transfer.SequenceNo = decimal.NewFromInt(seqNo)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&transfer).Error; err != nil {
		// a concurrent resubmission may have won the unique index race
		winner, lookupErr := models.GetTransferByCommandRef(ctx, entityId, input.CommandRef)
		if lookupErr == nil && winner != nil {
			return winner, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// ApproveTransfer applies the virement: under both line locks taken in code
// order, it re-checks available credit on the source and moves the revised
// budget in one transaction. Approving an already-approved transfer is a
// no-op returning the recorded outcome.
func ApproveTransfer(ctx context.Context, id int) (*models.Transfer, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	transfer, err := utils.FetchModelForChange[models.Transfer](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status == models.TransferStatusApproved {
		return transfer, nil
	}
	if err := transfer.GuardDecide(); err != nil {
		return nil, err
	}

	sourceLine, err := utils.FetchModel[models.BudgetLine](ctx, entityId, transfer.SourceLineId)
	if err != nil {
		return nil, err
	}
	destinationLine, err := utils.FetchModel[models.BudgetLine](ctx, entityId, transfer.DestinationLineId)
	if err != nil {
		return nil, err
	}

	// both line locks come before any FOR UPDATE read, in code order, so
	// A->B and B->A approvals cannot deadlock at either lock stage
	locks, err := AcquireLineLocks(ctx, entityId, sourceLine.Code, destinationLine.Code)
	if err != nil {
		return nil, err
	}
	defer locks.Release(ctx)

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	key, err := models.ClaimIdempotencyKey(ctx, tx, entityId, transfer.CommandRef, transferApproveOperation)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, models.ErrIdempotencyConflict) {
			recorded, lookupErr := models.LookupIdempotencyKey(ctx, entityId, transfer.CommandRef, transferApproveOperation)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if recorded != nil && recorded.Status == models.IdempotencyStatusSucceeded {
				return models.GetTransfer(ctx, id)
			}
			return nil, utils.NewValidationError("command_ref", "approval already in progress")
		}
		return nil, err
	}

	// row locks in ascending id order, for any writer outside the advisory
	// discipline
	firstId, secondId := transfer.SourceLineId, transfer.DestinationLineId
	if secondId < firstId {
		firstId, secondId = secondId, firstId
	}
	first, err := models.FetchBudgetLineForUpdate(ctx, tx, entityId, firstId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	second, err := models.FetchBudgetLineForUpdate(ctx, tx, entityId, secondId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	source, destination := first, second
	if transfer.SourceLineId == secondId {
		source, destination = second, first
	}

	if transfer.Amount.GreaterThan(source.Available()) {
		tx.Rollback()
		models.MarkIdempotencyFailed(ctx, entityId, transfer.CommandRef, transferApproveOperation, "insufficient credit on source line")
		return nil, utils.ErrInsufficientCredit
	}

	if _, err := models.ApplyRevisedDelta(ctx, tx, entityId, source.ID, transfer.Amount.Neg()); err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := models.ApplyRevisedDelta(ctx, tx, entityId, destination.ID, transfer.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	if err := tx.WithContext(ctx).Model(transfer).Updates(map[string]interface{}{
		"Status":    models.TransferStatusApproved,
		"DecidedBy": userName,
		"DecidedAt": &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := models.MarkIdempotencySucceeded(ctx, tx, key, transfer.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "transferWorkflow.go", "ApproveTransfer", "Commit", transfer.TransferNumber, err)
		return nil, err
	}
	return transfer, nil
}

// RejectTransfer discards a pending virement without touching the lines.
func RejectTransfer(ctx context.Context, id int) (*models.Transfer, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	transfer, err := utils.FetchModelForChange[models.Transfer](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status == models.TransferStatusRejected {
		return transfer, nil
	}
	if err := transfer.GuardDecide(); err != nil {
		return nil, err
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(transfer).Updates(map[string]interface{}{
		"Status":    models.TransferStatusRejected,
		"DecidedBy": userName,
		"DecidedAt": &now,
	}).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}
