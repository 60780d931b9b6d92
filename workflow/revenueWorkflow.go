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

type RecognizeClaimInput struct {
	BudgetLineId int             `json:"budget_line_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Debtor       string          `json:"debtor" binding:"required"`
	// AccountNumber is the class-7 revenue account credited at recognition.
	AccountNumber string `json:"account_number" binding:"required"`
	// PrudenceCoefficient is a pointer: 0 (fully doubtful, provision for the
	// whole amount) is a valid value distinct from absent (defaults to 1).
	PrudenceCoefficient *decimal.Decimal      `json:"prudence_coefficient"`
	CertaintyLevel      models.CertaintyLevel `json:"certainty_level"`
	RecoveryRisk        models.RecoveryRisk   `json:"recovery_risk"`
}

type ClaimLiquidationInput struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DocumentRef string          `json:"document_ref" binding:"required"`
}

type ClaimCollectionInput struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod    string          `json:"payment_method" binding:"required"`
	PaymentReference string          `json:"payment_reference" binding:"required"`
}

// prudenceCoefficientOrDefault keeps an explicit 0 (fully doubtful, the whole
// recognized amount is provisioned) and only defaults when the field is
// absent.
func prudenceCoefficientOrDefault(coefficient *decimal.Decimal) decimal.Decimal {
	if coefficient == nil {
		return decimal.NewFromInt(1)
	}
	return *coefficient
}

// RecognizeClaim opens the claim (émission de titre), posts the receivable
// against revenue, and books the doubtful provision when prudence keeps part
// of the recognized amount out of the net.
func RecognizeClaim(ctx context.Context, input *RecognizeClaimInput) (*models.Claim, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	if input.Debtor == "" {
		return nil, utils.NewValidationError("debtor", "must not be empty")
	}
	coefficient := prudenceCoefficientOrDefault(input.PrudenceCoefficient)
	net, provision, err := models.ComputePrudence(input.Amount, coefficient)
	if err != nil {
		return nil, err
	}

	certainty := input.CertaintyLevel
	if certainty == "" {
		certainty = models.CertaintyLevelCertain
	}
	if !certainty.Valid() {
		return nil, utils.NewValidationError("certainty_level", "unknown certainty level")
	}
	risk := input.RecoveryRisk
	if risk == "" {
		risk = models.RecoveryRiskLow
	}
	if !risk.Valid() {
		return nil, utils.NewValidationError("recovery_risk", "unknown recovery risk")
	}

	class, err := models.AccountClassOf(input.AccountNumber)
	if err != nil {
		return nil, err
	}
	if class != 7 {
		return nil, utils.NewValidationError("account_number", "recognition must post to a class 7 account")
	}
	revenueAccountId, err := models.ResolveAccount(entityId, input.AccountNumber)
	if err != nil {
		return nil, err
	}
	claimAccountId, err := models.ResolveAccount(entityId, models.ClaimAccountNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := models.ValidatePeriodOpen(ctx, now, entityId); err != nil {
		return nil, err
	}

	needsReview := false
	if certainty == models.CertaintyLevelUncertain && input.Amount.GreaterThan(config.UncertainClaimReviewThreshold()) {
		needsReview = true
		logger.WithField("entity_id", entityId).
			WithField("debtor", input.Debtor).
			WithField("amount", input.Amount.String()).
			Warn("uncertain claim above review threshold flagged for review")
	}

	seqNo, err := utils.GetSequence[models.Claim](ctx, entityId)
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

	claim := models.Claim{
		EntityId:                   entityId,
		BudgetLineId:               input.BudgetLineId,
		Number:                     fmt.Sprintf("TIT-%d", seqNo),
		SequenceNo:                 decimal.NewFromInt(seqNo),
		Phase:                      models.ClaimPhaseRecognized,
		Debtor:                     input.Debtor,
		RecognizedAmount:           input.Amount,
		PrudenceCoefficient:        coefficient,
		NetPrudentialAmount:        net,
		ProvisionForDoubtfulAmount: provision,
		CertaintyLevel:             certainty,
		RecoveryRisk:               risk,
		NeedsReview:                &needsReview,
		RecognizedAt:               &now,
	}
	if err := tx.WithContext(ctx).Create(&claim).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	lines := []models.EntryLine{
		{AccountId: claimAccountId, Label: input.Debtor, Debit: input.Amount},
		{AccountId: revenueAccountId, Label: claim.Number, Credit: input.Amount},
	}
	if provision.IsPositive() {
		provisionExpenseId, err := models.ResolveAccount(entityId, models.ProvisionExpenseNumber)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		doubtfulProvisionId, err := models.ResolveAccount(entityId, models.DoubtfulProvisionNumber)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		lines = append(lines,
			models.EntryLine{AccountId: provisionExpenseId, Label: claim.Number, Debit: provision},
			models.EntryLine{AccountId: doubtfulProvisionId, Label: claim.Number, Credit: provision},
		)
	}

	journal, err := models.PostJournal(ctx, tx, entityId, &models.Journal{
		JournalDate: now,
		Description: fmt.Sprintf("Recognition %s (%s)", claim.Number, input.Debtor),
		SourceType:  models.JournalSourceTypeRecognition,
		SourceId:    claim.ID,
		Lines:       lines,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "revenueWorkflow.go", "RecognizeClaim", "Commit", journal.JournalNumber, err)
		return nil, err
	}
	return &claim, nil
}

// LiquidateClaim fixes the collectible amount against its supporting
// document. Accounting positions move at recognition and collection only.
func LiquidateClaim(ctx context.Context, id int, input *ClaimLiquidationInput) (*models.Claim, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	claim, err := utils.FetchModelForChange[models.Claim](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if err := claim.GuardLiquidation(input.Amount, input.DocumentRef); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	claim, err = utils.FetchModelForUpdate[models.Claim](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := claim.GuardLiquidation(input.Amount, input.DocumentRef); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	if err := tx.WithContext(ctx).Model(claim).Updates(map[string]interface{}{
		"Phase":             models.ClaimPhaseLiquidated,
		"LiquidatedAmount":  input.Amount,
		"LiquidationDocRef": input.DocumentRef,
		"LiquidatedAt":      &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(config.GetLogger(), "revenueWorkflow.go", "LiquidateClaim", "Commit", claim.Number, err)
		return nil, err
	}
	return claim, nil
}

// CollectClaim settles the debtor: debit treasury 515, credit claims 411.
func CollectClaim(ctx context.Context, id int, input *ClaimCollectionInput) (*models.Claim, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	claim, err := utils.FetchModelForChange[models.Claim](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if err := claim.GuardCollection(input.Amount, input.PaymentMethod, input.PaymentReference); err != nil {
		return nil, err
	}

	claimAccountId, err := models.ResolveAccount(entityId, models.ClaimAccountNumber)
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

	// row lock then guard again: a collected claim must never collect twice
	claim, err = utils.FetchModelForUpdate[models.Claim](ctx, tx, entityId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := claim.GuardCollection(input.Amount, input.PaymentMethod, input.PaymentReference); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	journal, err := models.PostJournal(ctx, tx, entityId, &models.Journal{
		JournalDate: now,
		Description: fmt.Sprintf("Collection %s (%s)", claim.Number, claim.Debtor),
		SourceType:  models.JournalSourceTypeCollection,
		SourceId:    claim.ID,
		Lines: []models.EntryLine{
			{AccountId: treasuryAccountId, Label: input.PaymentReference, Debit: input.Amount},
			{AccountId: claimAccountId, Label: claim.Debtor, Credit: input.Amount},
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(claim).Updates(map[string]interface{}{
		"Phase":            models.ClaimPhaseCollected,
		"CollectedAmount":  input.Amount,
		"PaymentMethod":    input.PaymentMethod,
		"PaymentReference": input.PaymentReference,
		"CollectedAt":      &now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "revenueWorkflow.go", "CollectClaim", "Commit", journal.JournalNumber, err)
		return nil, err
	}
	return claim, nil
}
