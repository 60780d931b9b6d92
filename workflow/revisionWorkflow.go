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

type NewRevisionInput struct {
	RevisionType models.RevisionType    `json:"revision_type" binding:"required"`
	Reason       string                 `json:"reason"`
	Lines        []NewRevisionLineInput `json:"lines" binding:"required,dive"`
}

type NewRevisionLineInput struct {
	BudgetLineId int             `json:"budget_line_id" binding:"required"`
	DeltaAmount  decimal.Decimal `json:"delta_amount" binding:"required"`
}

// CreateRevision opens a Draft revision with its target lines.
func CreateRevision(ctx context.Context, input *NewRevisionInput) (*models.Revision, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	revision := models.Revision{
		EntityId:     entityId,
		RevisionType: input.RevisionType,
		Status:       models.RevisionStatusDraft,
		Reason:       input.Reason,
	}
	for _, line := range input.Lines {
		revision.Lines = append(revision.Lines, models.RevisionLine{
			EntityId:     entityId,
			BudgetLineId: line.BudgetLineId,
			DeltaAmount:  line.DeltaAmount,
		})
	}
	if err := revision.GuardLines(); err != nil {
		return nil, err
	}
	if err := models.ValidatePeriodOpen(ctx, time.Now(), entityId); err != nil {
		return nil, err
	}

	// targets must exist before the draft is accepted
	for _, line := range revision.Lines {
		if _, err := utils.FetchModel[models.BudgetLine](ctx, entityId, line.BudgetLineId); err != nil {
			return nil, utils.NewValidationError("lines", fmt.Sprintf("budget line %d not found", line.BudgetLineId))
		}
	}

	seqNo, err := utils.GetSequence[models.Revision](ctx, entityId)
	if err != nil {
		return nil, err
	}
	revision.RevisionNumber = fmt.Sprintf("REV-%d", seqNo)
	revision.SequenceNo = decimal.NewFromInt(seqNo)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&revision).Error; err != nil {
		return nil, err
	}
	return &revision, nil
}

// SubmitRevision moves a Draft to Submitted.
func SubmitRevision(ctx context.Context, id int) (*models.Revision, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	revision, err := utils.FetchModelForChange[models.Revision](ctx, entityId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if err := revision.GuardTransition(models.RevisionStatusSubmitted); err != nil {
		return nil, err
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(revision).Updates(map[string]interface{}{
		"Status":      models.RevisionStatusSubmitted,
		"SubmittedBy": userName,
		"SubmittedAt": &now,
	}).Error; err != nil {
		return nil, err
	}
	return revision, nil
}

// ApproveRevision applies every line delta under the line locks, taken in
// code order. A decrease that would undercut engaged credit fails the whole
// revision and nothing is applied.
func ApproveRevision(ctx context.Context, id int) (*models.Revision, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	revision, err := utils.FetchModelForChange[models.Revision](ctx, entityId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if err := revision.GuardTransition(models.RevisionStatusApproved); err != nil {
		return nil, err
	}

	var codes []string
	lineIds := make(map[string]int, len(revision.Lines))
	deltas := make(map[int]decimal.Decimal, len(revision.Lines))
	for _, line := range revision.Lines {
		target, err := utils.FetchModel[models.BudgetLine](ctx, entityId, line.BudgetLineId)
		if err != nil {
			return nil, err
		}
		codes = append(codes, target.Code)
		lineIds[target.Code] = target.ID
		deltas[target.ID] = line.DeltaAmount
	}

	// all line locks before any FOR UPDATE read; ApplyRevisedDelta then
	// takes the row locks in the same code order as every other command
	locks, err := AcquireLineLocks(ctx, entityId, codes...)
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

	// re-check the status under the row lock so two concurrent approvals
	// cannot both apply the deltas
	lockedRevision, err := utils.FetchModelForUpdate[models.Revision](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := lockedRevision.GuardTransition(models.RevisionStatusApproved); err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, code := range orderedLineCodes(codes) {
		targetId := lineIds[code]
		if _, err := models.ApplyRevisedDelta(ctx, tx, entityId, targetId, deltas[targetId]); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	if err := tx.WithContext(ctx).Model(revision).Updates(map[string]interface{}{
		"Status":    models.RevisionStatusApproved,
		"DecidedBy": userName,
		"DecidedAt": &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "revisionWorkflow.go", "ApproveRevision", "Commit", revision.RevisionNumber, err)
		return nil, err
	}
	return revision, nil
}

// RejectRevision discards a Submitted revision without touching the lines.
func RejectRevision(ctx context.Context, id int) (*models.Revision, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	revision, err := utils.FetchModelForChange[models.Revision](ctx, entityId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if err := revision.GuardTransition(models.RevisionStatusRejected); err != nil {
		return nil, err
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(revision).Updates(map[string]interface{}{
		"Status":    models.RevisionStatusRejected,
		"DecidedBy": userName,
		"DecidedAt": &now,
	}).Error; err != nil {
		return nil, err
	}
	return revision, nil
}
