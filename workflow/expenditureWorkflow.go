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

type EngageCommitmentInput struct {
	BudgetLineId int             `json:"budget_line_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Supplier     string          `json:"supplier" binding:"required"`
	DocumentRef  string          `json:"document_ref" binding:"required"`
}

type CommitmentTransitionInput struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DocumentRef string          `json:"document_ref" binding:"required"`
	// AccountNumber is the class-6 expense account for liquidation postings.
	AccountNumber string `json:"account_number"`
	PaymentMethod string `json:"payment_method"`
}

// EngageCommitment reserves credit on the budget line and opens the
// commitment at phase Engaged. Engagement is budgetary only: no journal is
// posted until liquidation.
func EngageCommitment(ctx context.Context, input *EngageCommitmentInput) (*models.Commitment, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount", "must be positive")
	}
	if input.Supplier == "" {
		return nil, utils.NewValidationError("supplier", "must not be empty")
	}
	if input.DocumentRef == "" {
		return nil, utils.NewValidationError("document_ref", "must not be empty")
	}

	now := time.Now()
	if err := models.ValidatePeriodOpen(ctx, now, entityId); err != nil {
		return nil, err
	}

	line, err := utils.FetchModel[models.BudgetLine](ctx, entityId, input.BudgetLineId)
	if err != nil {
		return nil, err
	}

	seqNo, err := utils.GetSequence[models.Commitment](ctx, entityId)
	if err != nil {
		return nil, err
	}

	// the line lock comes before any FOR UPDATE read and outlives the tx
	locks, err := AcquireLineLock(ctx, entityId, line.Code)
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

	if _, err := models.ApplyEngagement(ctx, tx, entityId, line.ID, input.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	commitment := models.Commitment{
		EntityId:         entityId,
		BudgetLineId:     line.ID,
		Number:           fmt.Sprintf("ENG-%d", seqNo),
		SequenceNo:       decimal.NewFromInt(seqNo),
		Phase:            models.CommitmentPhaseEngaged,
		EngagedAmount:    input.Amount,
		Supplier:         input.Supplier,
		EngagementDocRef: input.DocumentRef,
		EngagedAt:        &now,
	}
	if err := tx.WithContext(ctx).Create(&commitment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expenditureWorkflow.go", "EngageCommitment", "Commit", input, err)
		return nil, err
	}
	return &commitment, nil
}

// LiquidateCommitment certifies the service rendered: it fixes the liquidated
// amount, increments the line aggregate, and posts expense against supplier.
func LiquidateCommitment(ctx context.Context, id int, input *CommitmentTransitionInput) (*models.Commitment, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	commitment, err := utils.FetchModelForChange[models.Commitment](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhaseLiquidated, input.Amount, input.DocumentRef); err != nil {
		return nil, err
	}

	if input.AccountNumber == "" {
		return nil, utils.NewValidationError("account_number", "expense account is required")
	}
	class, err := models.AccountClassOf(input.AccountNumber)
	if err != nil {
		return nil, err
	}
	if class != 6 {
		return nil, utils.NewValidationError("account_number", "liquidation must post to a class 6 account")
	}
	expenseAccountId, err := models.ResolveAccount(entityId, input.AccountNumber)
	if err != nil {
		return nil, err
	}
	supplierAccountId, err := models.ResolveAccount(entityId, models.SupplierAccountNumber)
	if err != nil {
		return nil, err
	}
	line, err := utils.FetchModel[models.BudgetLine](ctx, entityId, commitment.BudgetLineId)
	if err != nil {
		return nil, err
	}

	locks, err := AcquireLineLock(ctx, entityId, line.Code)
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

	// re-check the phase under the row lock: a concurrent transition may
	// have won since the first read
	commitment, err = utils.FetchModelForUpdate[models.Commitment](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhaseLiquidated, input.Amount, input.DocumentRef); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := models.ApplyLiquidation(ctx, tx, entityId, line.ID, input.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	journal, err := models.PostJournal(ctx, tx, entityId, &models.Journal{
		JournalDate: now,
		Description: fmt.Sprintf("Liquidation %s (%s)", commitment.Number, commitment.Supplier),
		SourceType:  models.JournalSourceTypeLiquidation,
		SourceId:    commitment.ID,
		Lines: []models.EntryLine{
			{AccountId: expenseAccountId, Label: input.DocumentRef, Debit: input.Amount},
			{AccountId: supplierAccountId, Label: commitment.Supplier, Credit: input.Amount},
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(commitment).Updates(map[string]interface{}{
		"Phase":             models.CommitmentPhaseLiquidated,
		"LiquidatedAmount":  input.Amount,
		"LiquidationDocRef": input.DocumentRef,
		"LiquidatedAt":      &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expenditureWorkflow.go", "LiquidateCommitment", "Commit", journal.JournalNumber, err)
		return nil, err
	}
	return commitment, nil
}

// AuthorizeCommitment is the payment order (ordonnancement). Budgetary and
// accounting positions are untouched; only the phase advances, under the row
// lock so two concurrent orders cannot both pass the guard.
func AuthorizeCommitment(ctx context.Context, id int, input *CommitmentTransitionInput) (*models.Commitment, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	commitment, err := utils.FetchModelForChange[models.Commitment](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhaseAuthorized, input.Amount, input.DocumentRef); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	commitment, err = utils.FetchModelForUpdate[models.Commitment](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhaseAuthorized, input.Amount, input.DocumentRef); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	if err := tx.WithContext(ctx).Model(commitment).Updates(map[string]interface{}{
		"Phase":               models.CommitmentPhaseAuthorized,
		"AuthorizedAmount":    input.Amount,
		"AuthorizationDocRef": input.DocumentRef,
		"AuthorizedAt":        &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expenditureWorkflow.go", "AuthorizeCommitment", "Commit", commitment.Number, err)
		return nil, err
	}
	return commitment, nil
}

// PayCommitment settles the supplier: debit 401, credit treasury 515.
func PayCommitment(ctx context.Context, id int, input *CommitmentTransitionInput) (*models.Commitment, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	commitment, err := utils.FetchModelForChange[models.Commitment](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhasePaid, input.Amount, input.DocumentRef); err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		return nil, utils.NewValidationError("payment_method", "must not be empty")
	}

	supplierAccountId, err := models.ResolveAccount(entityId, models.SupplierAccountNumber)
	if err != nil {
		return nil, err
	}
	treasuryAccountId, err := models.ResolveAccount(entityId, models.TreasuryAccountNumber)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// row lock then guard again: a paid commitment must never pay twice
	commitment, err = utils.FetchModelForUpdate[models.Commitment](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := commitment.GuardTransition(models.CommitmentPhasePaid, input.Amount, input.DocumentRef); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	journal, err := models.PostJournal(ctx, tx, entityId, &models.Journal{
		JournalDate: now,
		Description: fmt.Sprintf("Payment %s (%s)", commitment.Number, commitment.Supplier),
		SourceType:  models.JournalSourceTypePayment,
		SourceId:    commitment.ID,
		Lines: []models.EntryLine{
			{AccountId: supplierAccountId, Label: commitment.Supplier, Debit: input.Amount},
			{AccountId: treasuryAccountId, Label: input.PaymentMethod, Credit: input.Amount},
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(commitment).Updates(map[string]interface{}{
		"Phase":         models.CommitmentPhasePaid,
		"PaidAmount":    input.Amount,
		"PaymentDocRef": input.DocumentRef,
		"PaymentMethod": input.PaymentMethod,
		"PaidAt":        &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expenditureWorkflow.go", "PayCommitment", "Commit", journal.JournalNumber, err)
		return nil, err
	}
	return commitment, nil
}
