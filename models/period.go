package models

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountingPeriod is the exercise being executed. Closing is a four-step,
// irreversible protocol; the step flags below are only ever set forward.
type AccountingPeriod struct {
	ID         int          `gorm:"primary_key" json:"id"`
	EntityId   string       `gorm:"index;not null" json:"entity_id"`
	FiscalYear int          `gorm:"index;not null" json:"fiscal_year" binding:"required"`
	StartDate  time.Time    `gorm:"not null" json:"start_date" binding:"required"`
	EndDate    time.Time    `gorm:"not null" json:"end_date" binding:"required"`
	Status     PeriodStatus `gorm:"type:enum('Open','Closing','Closed');default:'Open';index;size:10;not null" json:"status"`

	// step 1: controls
	ControlEntriesBalanced  bool       `gorm:"not null;default:false" json:"control_entries_balanced"`
	ControlTrialBalance     bool       `gorm:"not null;default:false" json:"control_trial_balance"`
	ControlLettrageComplete bool       `gorm:"not null;default:false" json:"control_lettrage_complete"`
	ControlBankReconciled   bool       `gorm:"not null;default:false" json:"control_bank_reconciled"`
	ControlsDoneAt          *time.Time `json:"controls_done_at"`

	// step 2: adjusting entries
	AdjustDepreciation    bool       `gorm:"not null;default:false" json:"adjust_depreciation"`
	AdjustProvisions      bool       `gorm:"not null;default:false" json:"adjust_provisions"`
	AdjustAccruedExpenses bool       `gorm:"not null;default:false" json:"adjust_accrued_expenses"`
	AdjustDeferredRevenue bool       `gorm:"not null;default:false" json:"adjust_deferred_revenue"`
	AdjustmentsDoneAt     *time.Time `json:"adjustments_done_at"`

	// step 3: definitive closing
	ClosedAt *time.Time `json:"closed_at"`
	ClosedBy string     `gorm:"size:100" json:"closed_by"`

	// step 4: carry-forward output
	ResultAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"result_amount"`
	ClosingJournalId      *int            `gorm:"index" json:"closing_journal_id"`
	CarryForwardJournalId *int            `gorm:"index" json:"carry_forward_journal_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccountingPeriod struct {
	FiscalYear int       `json:"fiscal_year" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
	EndDate    time.Time `json:"end_date" binding:"required"`
}

func (p *AccountingPeriod) GetEntityId() string {
	return p.EntityId
}

func (p *AccountingPeriod) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// ControlsPassed reports whether all four step-1 checks hold.
func (p *AccountingPeriod) ControlsPassed() bool {
	return p.ControlEntriesBalanced && p.ControlTrialBalance &&
		p.ControlLettrageComplete && p.ControlBankReconciled
}

// AdjustmentsPassed reports whether all four step-2 checks hold.
func (p *AccountingPeriod) AdjustmentsPassed() bool {
	return p.AdjustDepreciation && p.AdjustProvisions &&
		p.AdjustAccruedExpenses && p.AdjustDeferredRevenue
}

// GuardAdjustingEntries gates step 2 on step 1.
func (p *AccountingPeriod) GuardAdjustingEntries() error {
	if p.Status == PeriodStatusClosed {
		return utils.ErrPeriodClosed
	}
	if p.ControlsDoneAt == nil || !p.ControlsPassed() {
		return utils.ErrClosingPrecondition
	}
	return nil
}

// GuardDefinitiveClosing gates step 3 on steps 1 and 2.
func (p *AccountingPeriod) GuardDefinitiveClosing() error {
	if p.Status == PeriodStatusClosed {
		return utils.ErrPeriodClosed
	}
	if p.ControlsDoneAt == nil || !p.ControlsPassed() {
		return utils.ErrClosingPrecondition
	}
	if p.AdjustmentsDoneAt == nil || !p.AdjustmentsPassed() {
		return utils.ErrClosingPrecondition
	}
	return nil
}

func CreateAccountingPeriod(ctx context.Context, input *NewAccountingPeriod) (*AccountingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	if !input.EndDate.After(input.StartDate) {
		return nil, utils.NewValidationError("end_date", "must be after start_date")
	}
	if err := utils.ValidateUnique[AccountingPeriod](ctx, entityId, "fiscal_year", input.FiscalYear, 0); err != nil {
		return nil, utils.NewValidationError("fiscal_year", "a period already exists for this fiscal year")
	}

	// periods must not overlap
	count, err := utils.ResourceCountWhere[AccountingPeriod](ctx, entityId,
		"start_date <= ? AND end_date >= ?", input.EndDate, input.StartDate)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("start_date", "overlaps an existing period")
	}

	period := AccountingPeriod{
		EntityId:   entityId,
		FiscalYear: input.FiscalYear,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Status:     PeriodStatusOpen,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func GetAccountingPeriod(ctx context.Context, id int) (*AccountingPeriod, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[AccountingPeriod](ctx, entityId, id)
}

// PeriodForDate finds the period covering the given date, nil when none exists.
func PeriodForDate(ctx context.Context, entityId string, date time.Time) (*AccountingPeriod, error) {
	db := config.GetDB()
	var period AccountingPeriod
	err := db.WithContext(ctx).
		Where("entity_id = ?", entityId).
		Where("start_date <= ? AND end_date >= ?", date, date).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// ValidatePeriodOpen rejects mutations dated inside a Closed period, and
// inside a Closing period when the reject-writes backpressure policy is on.
// Dates not covered by any period are accepted; period discipline starts when
// a period is opened.
func ValidatePeriodOpen(ctx context.Context, date time.Time, entityId string) error {
	period, err := PeriodForDate(ctx, entityId, date)
	if err != nil {
		return err
	}
	if period == nil {
		return nil
	}
	switch period.Status {
	case PeriodStatusClosed:
		return utils.ErrPeriodClosed
	case PeriodStatusClosing:
		if config.RejectWritesDuringClosing() {
			return utils.ErrClosingInProgress
		}
	}
	return nil
}
