package models

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetLine is the per-line budget envelope. Invariants, enforced on every
// mutation path:
//
//	available == budget_revised - engaged, available >= 0
//	engaged   <= budget_revised
//	liquidated <= engaged
type BudgetLine struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EntityId      string          `gorm:"index;not null" json:"entity_id"`
	Code          string          `gorm:"index;size:50;not null" json:"code" binding:"required"`
	Label         string          `gorm:"size:255;not null" json:"label" binding:"required"`
	Category      BudgetCategory  `gorm:"type:enum('Operating','Personnel','Investment','Transfer');default:'Operating';index;size:20;not null" json:"category" binding:"required"`
	BudgetInitial decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"budget_initial"`
	BudgetRevised decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"budget_revised"`
	Engaged       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"engaged"`
	Liquidated    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"liquidated"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBudgetLine struct {
	Code          string          `json:"code" binding:"required"`
	Label         string          `json:"label" binding:"required"`
	Category      BudgetCategory  `json:"category" binding:"required"`
	BudgetInitial decimal.Decimal `json:"budget_initial"`
}

func (l *BudgetLine) GetEntityId() string {
	return l.EntityId
}

func (l *BudgetLine) Available() decimal.Decimal {
	return l.BudgetRevised.Sub(l.Engaged)
}

// CanEngage checks the engagement guard without mutating the line.
func (l *BudgetLine) CanEngage(amount decimal.Decimal) error {
	if l.IsActive == nil || !*l.IsActive {
		return utils.NewValidationError("budget_line", "line is deactivated")
	}
	if !amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if amount.GreaterThan(l.Available()) {
		return utils.ErrInsufficientCredit
	}
	return nil
}

// CanLiquidate checks that liquidated never exceeds engaged.
func (l *BudgetLine) CanLiquidate(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if l.Liquidated.Add(amount).GreaterThan(l.Engaged) {
		return utils.ErrInsufficientCredit
	}
	return nil
}

func (input *NewBudgetLine) validate(ctx context.Context, entityId string, id int) error {
	if !input.Category.Valid() {
		return utils.NewValidationError("category", "unknown category")
	}
	if input.BudgetInitial.IsNegative() {
		return utils.NewValidationError("budget_initial", "must not be negative")
	}
	if err := utils.ValidateUnique[BudgetLine](ctx, entityId, "code", input.Code, id); err != nil {
		return utils.ErrDuplicateCode
	}
	return nil
}

// AllocateBudgetLine creates a line with available = budget_initial.
func AllocateBudgetLine(ctx context.Context, input *NewBudgetLine) (*BudgetLine, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	if err := input.validate(ctx, entityId, 0); err != nil {
		return nil, err
	}

	line := BudgetLine{
		EntityId:      entityId,
		Code:          input.Code,
		Label:         input.Label,
		Category:      input.Category,
		BudgetInitial: input.BudgetInitial,
		BudgetRevised: input.BudgetInitial,
		Engaged:       decimal.Zero,
		Liquidated:    decimal.Zero,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// Lines are never deleted, only deactivated.
func DeactivateBudgetLine(ctx context.Context, id int) (*BudgetLine, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	line, err := utils.FetchModel[BudgetLine](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(line).Updates(BudgetLine{
		IsActive: utils.NewFalse(),
	}).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func GetBudgetLine(ctx context.Context, id int) (*BudgetLine, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[BudgetLine](ctx, entityId, id)
}

func GetBudgetLines(ctx context.Context, category *BudgetCategory, code *string) ([]*BudgetLine, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*BudgetLine

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if category != nil && *category != "" {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	if code != nil && len(*code) > 0 {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	if err := dbCtx.Order("code").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FetchBudgetLineForUpdate reads the line with a row lock inside the caller's
// transaction. All aggregate mutations go through this, so a reader never
// observes a partial update.
func FetchBudgetLineForUpdate(ctx context.Context, tx *gorm.DB, entityId string, id int) (*BudgetLine, error) {
	var line BudgetLine
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_id = ?", entityId).
		First(&line, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &line, nil
}

// ApplyEngagement increments engaged after re-checking the guard under lock.
func ApplyEngagement(ctx context.Context, tx *gorm.DB, entityId string, lineId int, amount decimal.Decimal) (*BudgetLine, error) {
	line, err := FetchBudgetLineForUpdate(ctx, tx, entityId, lineId)
	if err != nil {
		return nil, err
	}
	if err := line.CanEngage(amount); err != nil {
		return nil, err
	}
	line.Engaged = line.Engaged.Add(amount)
	if err := tx.WithContext(ctx).Model(line).Updates(map[string]interface{}{
		"Engaged": line.Engaged,
	}).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// ApplyLiquidation increments liquidated after re-checking the guard under lock.
func ApplyLiquidation(ctx context.Context, tx *gorm.DB, entityId string, lineId int, amount decimal.Decimal) (*BudgetLine, error) {
	line, err := FetchBudgetLineForUpdate(ctx, tx, entityId, lineId)
	if err != nil {
		return nil, err
	}
	if err := line.CanLiquidate(amount); err != nil {
		return nil, err
	}
	line.Liquidated = line.Liquidated.Add(amount)
	if err := tx.WithContext(ctx).Model(line).Updates(map[string]interface{}{
		"Liquidated": line.Liquidated,
	}).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// ApplyRevisedDelta moves budget_revised by a signed amount. The decrease
// guard keeps engaged credits covered.
func ApplyRevisedDelta(ctx context.Context, tx *gorm.DB, entityId string, lineId int, delta decimal.Decimal) (*BudgetLine, error) {
	line, err := FetchBudgetLineForUpdate(ctx, tx, entityId, lineId)
	if err != nil {
		return nil, err
	}
	newRevised := line.BudgetRevised.Add(delta)
	if newRevised.LessThan(line.Engaged) {
		return nil, utils.ErrRevisionViolatesCommitments
	}
	line.BudgetRevised = newRevised
	if err := tx.WithContext(ctx).Model(line).Updates(map[string]interface{}{
		"BudgetRevised": line.BudgetRevised,
	}).Error; err != nil {
		return nil, err
	}
	return line, nil
}
