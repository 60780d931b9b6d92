package models

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

// BalanceAdjustment is one manual balance-sheet correction. The engine never
// writes the offsetting side itself; it records each adjustment and exposes
// the running gap so the caller can see when Assets = Liabilities is broken.
type BalanceAdjustment struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	EntityId      string              `gorm:"index;not null" json:"entity_id"`
	Type          AdjustmentType      `gorm:"type:enum('Asset','Liability');not null" json:"type" binding:"required"`
	Direction     AdjustmentDirection `gorm:"type:enum('Increase','Decrease');not null" json:"direction" binding:"required"`
	Amount        decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount" binding:"required"`
	Justification string              `gorm:"type:text;not null" json:"justification" binding:"required"`
	Author        string              `gorm:"size:255;not null" json:"author" binding:"required"`
	AdjustedAt    time.Time           `gorm:"index;not null" json:"adjusted_at"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *BalanceAdjustment) GetEntityId() string {
	return a.EntityId
}

func (a *BalanceAdjustment) GetId() int {
	return a.ID
}

func (a *BalanceAdjustment) CheckPeriodOpen(ctx context.Context) error {
	return ValidatePeriodOpen(ctx, a.AdjustedAt, a.EntityId)
}

// GuardWellFormed checks shape only: the compensating adjustment is the
// operator's responsibility.
func (a *BalanceAdjustment) GuardWellFormed() error {
	if !a.Type.Valid() {
		return utils.NewValidationError("type", "unknown adjustment type")
	}
	if !a.Direction.Valid() {
		return utils.NewValidationError("direction", "unknown adjustment direction")
	}
	if !a.Amount.IsPositive() {
		return utils.NewValidationError("amount", "adjustment amount must be positive")
	}
	if a.Justification == "" {
		return utils.NewValidationError("justification", "justification is required")
	}
	if a.Author == "" {
		return utils.NewValidationError("author", "author is required")
	}
	return nil
}

// SignedEffect is the adjustment's contribution to the asset-liability gap:
// asset increases and liability decreases push the gap positive.
func (a *BalanceAdjustment) SignedEffect() decimal.Decimal {
	effect := a.Amount
	if a.Direction == AdjustmentDirectionDecrease {
		effect = effect.Neg()
	}
	if a.Type == AdjustmentTypeLiability {
		effect = effect.Neg()
	}
	return effect
}

// AdjustmentGap sums the signed effects of the given adjustments. A non-zero
// gap means a compensating adjustment is still missing.
func AdjustmentGap(adjustments []BalanceAdjustment) decimal.Decimal {
	gap := decimal.Zero
	for _, a := range adjustments {
		gap = gap.Add(a.SignedEffect())
	}
	return gap
}

// RecordBalanceAdjustment persists a well-formed adjustment and returns the
// updated gap over the period it falls in.
func RecordBalanceAdjustment(ctx context.Context, adjustment *BalanceAdjustment) (*BalanceAdjustment, decimal.Decimal, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, decimal.Zero, errors.New("entity id is required")
	}
	adjustment.EntityId = entityId
	if adjustment.AdjustedAt.IsZero() {
		adjustment.AdjustedAt = time.Now()
	}

	if err := adjustment.GuardWellFormed(); err != nil {
		return nil, decimal.Zero, err
	}
	if err := ValidatePeriodOpen(ctx, adjustment.AdjustedAt, entityId); err != nil {
		return nil, decimal.Zero, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(adjustment).Error; err != nil {
		return nil, decimal.Zero, err
	}

	gap, err := PeriodAdjustmentGap(ctx, entityId, adjustment.AdjustedAt)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !gap.IsZero() {
		logger := config.GetLogger()
		logger.WithField("entity_id", entityId).
			WithField("gap", gap.String()).
			Warn("balance adjustments are not compensated; assets no longer equal liabilities")
	}
	return adjustment, gap, nil
}

// PeriodAdjustmentGap computes the gap over the period covering the date, or
// over all adjustments when no period covers it.
func PeriodAdjustmentGap(ctx context.Context, entityId string, date time.Time) (decimal.Decimal, error) {
	db := config.GetDB()

	period, err := PeriodForDate(ctx, entityId, date)
	if err != nil {
		return decimal.Zero, err
	}

	var adjustments []BalanceAdjustment
	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if period != nil {
		dbCtx = dbCtx.Where("adjusted_at BETWEEN ? AND ?", period.StartDate, period.EndDate)
	}
	if err := dbCtx.Find(&adjustments).Error; err != nil {
		return decimal.Zero, err
	}
	return AdjustmentGap(adjustments), nil
}

func GetBalanceAdjustments(ctx context.Context) ([]*BalanceAdjustment, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchAllModels[BalanceAdjustment](ctx, entityId)
}
