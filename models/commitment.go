package models

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

// Commitment is one expenditure instance moving through
// Engaged -> Liquidated -> Authorized -> Paid. Phase amounts are monotonically
// non-increasing downstream: paid <= authorized <= liquidated <= engaged.
type Commitment struct {
	ID           int             `gorm:"primary_key" json:"id"`
	EntityId     string          `gorm:"index;not null" json:"entity_id"`
	BudgetLineId int             `gorm:"index;not null" json:"budget_line_id" binding:"required"`
	Number       string          `gorm:"size:50;not null" json:"number"`
	SequenceNo   decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	Phase        CommitmentPhase `gorm:"type:enum('Created','Engaged','Liquidated','Authorized','Paid');default:'Created';index;size:15;not null" json:"phase"`

	EngagedAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"engaged_amount"`
	LiquidatedAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"liquidated_amount"`
	AuthorizedAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"authorized_amount"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`

	Supplier string `gorm:"size:255;not null" json:"supplier"`

	EngagementDocRef    string `gorm:"size:255" json:"engagement_doc_ref"`
	LiquidationDocRef   string `gorm:"size:255" json:"liquidation_doc_ref"`
	AuthorizationDocRef string `gorm:"size:255" json:"authorization_doc_ref"`
	PaymentDocRef       string `gorm:"size:255" json:"payment_doc_ref"`
	PaymentMethod       string `gorm:"size:100" json:"payment_method"`

	EngagedAt    *time.Time `json:"engaged_at"`
	LiquidatedAt *time.Time `json:"liquidated_at"`
	AuthorizedAt *time.Time `json:"authorized_at"`
	PaidAt       *time.Time `json:"paid_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Commitment) GetEntityId() string {
	return c.EntityId
}

func (c *Commitment) GetId() int {
	return c.ID
}

// CheckPeriodOpen gates mutations on the period the commitment was engaged in.
func (c *Commitment) CheckPeriodOpen(ctx context.Context) error {
	date := c.CreatedAt
	if c.EngagedAt != nil {
		date = *c.EngagedAt
	}
	return ValidatePeriodOpen(ctx, date, c.EntityId)
}

// amountForPhase returns the amount recorded at the given phase.
func (c *Commitment) amountForPhase(phase CommitmentPhase) decimal.Decimal {
	switch phase {
	case CommitmentPhaseEngaged:
		return c.EngagedAmount
	case CommitmentPhaseLiquidated:
		return c.LiquidatedAmount
	case CommitmentPhaseAuthorized:
		return c.AuthorizedAmount
	case CommitmentPhasePaid:
		return c.PaidAmount
	}
	return decimal.Zero
}

// GuardTransition validates one forward phase transition without mutating
// the commitment. Transitions are one-directional, may not skip or repeat a
// phase, must not increase the amount downstream, and need a supporting
// document reference.
func (c *Commitment) GuardTransition(next CommitmentPhase, amount decimal.Decimal, docRef string) error {
	if next.Rank() < 1 {
		return utils.ErrPhaseOrder
	}
	if next.Rank() != c.Phase.Rank()+1 {
		return utils.ErrPhaseOrder
	}
	if docRef == "" {
		return utils.NewValidationError("document_ref", "must not be empty")
	}
	if !amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if next != CommitmentPhaseEngaged {
		prior := c.amountForPhase(c.Phase)
		if amount.GreaterThan(prior) {
			return utils.NewValidationError("amount", "must not exceed prior phase amount")
		}
	}
	return nil
}

func GetCommitment(ctx context.Context, id int) (*Commitment, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Commitment](ctx, entityId, id)
}

func GetCommitments(ctx context.Context, budgetLineId *int, phase *CommitmentPhase) ([]*Commitment, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Commitment

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if budgetLineId != nil && *budgetLineId > 0 {
		dbCtx = dbCtx.Where("budget_line_id = ?", *budgetLineId)
	}
	if phase != nil && *phase != "" {
		dbCtx = dbCtx.Where("phase = ?", *phase)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
