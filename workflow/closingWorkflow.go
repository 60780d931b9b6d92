package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

type ClosingControlsInput struct {
	// BankReconciled is attested by the operator; bank statements live
	// outside the engine.
	BankReconciled bool `json:"bank_reconciled"`
}

type AdjustingEntriesInput struct {
	Depreciation    bool `json:"depreciation"`
	Provisions      bool `json:"provisions"`
	AccruedExpenses bool `json:"accrued_expenses"`
	DeferredRevenue bool `json:"deferred_revenue"`
}

type DefinitiveClosingInput struct {
	Confirm bool `json:"confirm"`
}

// RunClosingControls computes the step-1 checks and records them on the
// period. ControlsDoneAt is set only when all four hold; the returned period
// shows which ones failed.
func RunClosingControls(ctx context.Context, periodId int, input *ClosingControlsInput) (*models.AccountingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	period, err := utils.FetchModel[models.AccountingPeriod](ctx, entityId, periodId)
	if err != nil {
		return nil, err
	}
	if period.Status == models.PeriodStatusClosed {
		return nil, utils.ErrPeriodClosed
	}

	db := config.GetDB()
	balances, err := models.SumAccountBalances(ctx, db, entityId, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	sumDebit := decimal.Zero
	sumCredit := decimal.Zero
	for _, b := range balances {
		sumDebit = sumDebit.Add(b.Debit)
		sumCredit = sumCredit.Add(b.Credit)
	}
	entriesBalanced := sumDebit.Sub(sumCredit).Abs().LessThan(models.BalanceEpsilon)

	// trial-balance coherence also requires manual adjustments to be
	// mutually compensated
	gap, err := models.PeriodAdjustmentGap(ctx, entityId, period.StartDate)
	if err != nil {
		return nil, err
	}
	trialBalance := entriesBalanced && gap.IsZero()

	unlettered, err := models.CountUnletteredLines(ctx, entityId, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	lettrageComplete := unlettered == 0

	updates := map[string]interface{}{
		"ControlEntriesBalanced":  entriesBalanced,
		"ControlTrialBalance":     trialBalance,
		"ControlLettrageComplete": lettrageComplete,
		"ControlBankReconciled":   input.BankReconciled,
	}
	if entriesBalanced && trialBalance && lettrageComplete && input.BankReconciled {
		now := time.Now()
		updates["ControlsDoneAt"] = &now
	} else {
		updates["ControlsDoneAt"] = nil
	}
	if err := db.WithContext(ctx).Model(period).Updates(updates).Error; err != nil {
		return nil, err
	}
	return period, nil
}

// RecordAdjustingEntries records the step-2 attestations, gated on step 1.
func RecordAdjustingEntries(ctx context.Context, periodId int, input *AdjustingEntriesInput) (*models.AccountingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	period, err := utils.FetchModel[models.AccountingPeriod](ctx, entityId, periodId)
	if err != nil {
		return nil, err
	}
	if err := period.GuardAdjustingEntries(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"AdjustDepreciation":    input.Depreciation,
		"AdjustProvisions":      input.Provisions,
		"AdjustAccruedExpenses": input.AccruedExpenses,
		"AdjustDeferredRevenue": input.DeferredRevenue,
	}
	if input.Depreciation && input.Provisions && input.AccruedExpenses && input.DeferredRevenue {
		now := time.Now()
		updates["AdjustmentsDoneAt"] = &now
	} else {
		updates["AdjustmentsDoneAt"] = nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(period).Updates(updates).Error; err != nil {
		return nil, err
	}
	return period, nil
}

// ComputeClosingEntries builds the lines zeroing every class 6 and 7 balance
// into the result account. Returned result is Σclass7 − Σclass6 (positive is
// a surplus, credited to the result account).
func ComputeClosingEntries(balances []models.AccountBalance, resultAccountId int) (lines []models.EntryLine, result decimal.Decimal) {
	result = decimal.Zero
	for _, b := range balances {
		if !models.IsProfitLossClass(b.Class) {
			continue
		}
		net := b.Net()
		if net.IsZero() {
			continue
		}
		if net.IsPositive() {
			lines = append(lines, models.EntryLine{AccountId: b.AccountId, Label: b.AccountNumber, Credit: net})
		} else {
			lines = append(lines, models.EntryLine{AccountId: b.AccountId, Label: b.AccountNumber, Debit: net.Neg()})
		}
		if b.Class == 7 {
			result = result.Add(net.Neg())
		} else {
			result = result.Sub(net)
		}
	}
	if result.IsPositive() {
		lines = append(lines, models.EntryLine{AccountId: resultAccountId, Label: models.ResultAccountNumber, Credit: result})
	} else if result.IsNegative() {
		lines = append(lines, models.EntryLine{AccountId: resultAccountId, Label: models.ResultAccountNumber, Debit: result.Neg()})
	}
	return lines, result
}

// ComputeCarryForwardEntries builds the opening lines for balance-sheet
// accounts (classes 1 to 5), folding the just-booked result into the result
// account's balance.
func ComputeCarryForwardEntries(balances []models.AccountBalance, resultAccountId int, result decimal.Decimal) []models.EntryLine {
	var lines []models.EntryLine
	resultSeen := false
	for _, b := range balances {
		if !models.IsBalanceSheetClass(b.Class) {
			continue
		}
		net := b.Net()
		if b.AccountId == resultAccountId {
			net = net.Sub(result)
			resultSeen = true
		}
		if net.IsZero() {
			continue
		}
		if net.IsPositive() {
			lines = append(lines, models.EntryLine{AccountId: b.AccountId, Label: b.AccountNumber, Debit: net})
		} else {
			lines = append(lines, models.EntryLine{AccountId: b.AccountId, Label: b.AccountNumber, Credit: net.Neg()})
		}
	}
	if !resultSeen && !result.IsZero() {
		if result.IsPositive() {
			lines = append(lines, models.EntryLine{AccountId: resultAccountId, Label: models.ResultAccountNumber, Credit: result})
		} else {
			lines = append(lines, models.EntryLine{AccountId: resultAccountId, Label: models.ResultAccountNumber, Debit: result.Neg()})
		}
	}
	return lines
}

// CloseDefinitively runs steps 3 and 4: with the period lock held, it flips
// the period to Closing, posts the closing journal (profit and loss zeroed
// into the result account, dated on the period end) and the carry-forward
// journal (opening balances dated the day after), then marks the period
// Closed. Irreversible.
func CloseDefinitively(ctx context.Context, periodId int, input *DefinitiveClosingInput) (*models.AccountingPeriod, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	if !input.Confirm {
		return nil, utils.NewValidationError("confirm", "definitive closing requires explicit confirmation")
	}

	period, err := utils.FetchModel[models.AccountingPeriod](ctx, entityId, periodId)
	if err != nil {
		return nil, err
	}
	if period.Status == models.PeriodStatusClosing {
		return nil, utils.ErrClosingInProgress
	}
	if err := period.GuardDefinitiveClosing(); err != nil {
		return nil, err
	}

	// one closing per period across instances
	lock, err := utils.ObtainEntityLock(ctx, entityId, fmt.Sprintf("closing:%d", periodId), 10*time.Minute)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, utils.ErrClosingInProgress
		}
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			config.LogError(logger, "closingWorkflow.go", "CloseDefinitively", "Release lock", periodId, err)
		}
	}()

	resultAccountId, err := models.ResolveAccount(entityId, models.ResultAccountNumber)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(period).Update("Status", models.PeriodStatusClosing).Error; err != nil {
		return nil, err
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	reopen := func() {
		if err := db.WithContext(ctx).Model(period).Update("Status", models.PeriodStatusOpen).Error; err != nil {
			config.LogError(logger, "closingWorkflow.go", "CloseDefinitively", "Reopen after failure", periodId, err)
		}
	}

	postingLocks, err := AcquireEntityPostingLock(ctx, entityId)
	if err != nil {
		tx.Rollback()
		reopen()
		return nil, err
	}
	defer postingLocks.Release(ctx)

	balances, err := models.SumAccountBalances(ctx, tx, entityId, period.StartDate, period.EndDate)
	if err != nil {
		tx.Rollback()
		reopen()
		return nil, err
	}

	closingLines, result := ComputeClosingEntries(balances, resultAccountId)

	var closingJournalId *int
	if len(closingLines) > 0 {
		closingJournal, err := models.PostClosingJournal(ctx, tx, entityId, &models.Journal{
			JournalDate: period.EndDate,
			Description: fmt.Sprintf("Closing %d", period.FiscalYear),
			SourceType:  models.JournalSourceTypeClosing,
			SourceId:    period.ID,
			Lines:       closingLines,
		})
		if err != nil {
			tx.Rollback()
			reopen()
			return nil, err
		}
		closingJournalId = &closingJournal.ID
	}

	carryLines := ComputeCarryForwardEntries(balances, resultAccountId, result)
	var carryJournalId *int
	if len(carryLines) > 0 {
		carryJournal, err := models.PostClosingJournal(ctx, tx, entityId, &models.Journal{
			JournalDate: period.EndDate.AddDate(0, 0, 1),
			Description: fmt.Sprintf("Carry-forward %d", period.FiscalYear),
			SourceType:  models.JournalSourceTypeCarryForward,
			SourceId:    period.ID,
			Lines:       carryLines,
		})
		if err != nil {
			tx.Rollback()
			reopen()
			return nil, err
		}
		carryJournalId = &carryJournal.ID
	}

	now := time.Now()
	userName, _ := utils.GetUserNameFromContext(ctx)
	if err := tx.WithContext(ctx).Model(period).Updates(map[string]interface{}{
		"Status":                models.PeriodStatusClosed,
		"ClosedAt":              &now,
		"ClosedBy":              userName,
		"ResultAmount":          result,
		"ClosingJournalId":      closingJournalId,
		"CarryForwardJournalId": carryJournalId,
	}).Error; err != nil {
		tx.Rollback()
		reopen()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "closingWorkflow.go", "CloseDefinitively", "Commit", period.FiscalYear, err)
		reopen()
		return nil, err
	}

	logger.WithField("entity_id", entityId).
		WithField("fiscal_year", period.FiscalYear).
		WithField("result", result.String()).
		Info("period definitively closed")
	return period, nil
}
