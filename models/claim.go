package models

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

// Claim is one revenue instance moving through
// Recognized -> Liquidated -> Collected. Recognition applies the prudence
// coefficient: net = recognized * coefficient, provision = recognized * (1 - coefficient).
type Claim struct {
	ID           int             `gorm:"primary_key" json:"id"`
	EntityId     string          `gorm:"index;not null" json:"entity_id"`
	BudgetLineId int             `gorm:"index;not null" json:"budget_line_id" binding:"required"`
	Number       string          `gorm:"size:50;not null" json:"number"`
	SequenceNo   decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	Phase        ClaimPhase      `gorm:"type:enum('Recognized','Liquidated','Collected');default:'Recognized';index;size:15;not null" json:"phase"`

	Debtor string `gorm:"size:255;not null" json:"debtor"`

	RecognizedAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"recognized_amount"`
	LiquidatedAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"liquidated_amount"`
	CollectedAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"collected_amount"`

	PrudenceCoefficient        decimal.Decimal `gorm:"type:decimal(5,4);default:1" json:"prudence_coefficient"`
	NetPrudentialAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_prudential_amount"`
	ProvisionForDoubtfulAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"provision_for_doubtful_amount"`

	// advisory fields surfaced to reporting, not enforced transitions
	CertaintyLevel CertaintyLevel `gorm:"type:enum('Certain','Probable','Uncertain');default:'Certain';size:10;not null" json:"certainty_level"`
	RecoveryRisk   RecoveryRisk   `gorm:"type:enum('Low','Medium','High');default:'Low';size:10;not null" json:"recovery_risk"`
	NeedsReview    *bool          `gorm:"not null;default:false" json:"needs_review"`

	LiquidationDocRef string `gorm:"size:255" json:"liquidation_doc_ref"`
	PaymentMethod     string `gorm:"size:100" json:"payment_method"`
	PaymentReference  string `gorm:"size:255" json:"payment_reference"`

	RecognizedAt *time.Time `json:"recognized_at"`
	LiquidatedAt *time.Time `json:"liquidated_at"`
	CollectedAt  *time.Time `json:"collected_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Claim) GetEntityId() string {
	return c.EntityId
}

func (c *Claim) GetId() int {
	return c.ID
}

// CheckPeriodOpen gates mutations on the period the claim was recognized in.
func (c *Claim) CheckPeriodOpen(ctx context.Context) error {
	date := c.CreatedAt
	if c.RecognizedAt != nil {
		date = *c.RecognizedAt
	}
	return ValidatePeriodOpen(ctx, date, c.EntityId)
}

// ComputePrudence derives the prudential split of a recognized amount.
func ComputePrudence(recognized decimal.Decimal, coefficient decimal.Decimal) (net decimal.Decimal, provision decimal.Decimal, err error) {
	if !recognized.IsPositive() {
		return decimal.Zero, decimal.Zero, utils.NewValidationError("recognized_amount", "must be positive")
	}
	if coefficient.IsNegative() || coefficient.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, utils.NewValidationError("prudence_coefficient", "must be between 0 and 1")
	}
	net = recognized.Mul(coefficient)
	provision = recognized.Sub(net)
	return net, provision, nil
}

// GuardLiquidation validates the liquidation transition without mutating.
func (c *Claim) GuardLiquidation(amount decimal.Decimal, docRef string) error {
	if c.Phase != ClaimPhaseRecognized {
		return utils.ErrPhaseOrder
	}
	if docRef == "" {
		return utils.NewValidationError("document_ref", "must not be empty")
	}
	if !amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if amount.GreaterThan(c.RecognizedAmount) {
		return utils.NewValidationError("amount", "must not exceed recognized amount")
	}
	return nil
}

// GuardCollection validates the collection transition without mutating.
func (c *Claim) GuardCollection(amount decimal.Decimal, method string, reference string) error {
	if c.Phase != ClaimPhaseLiquidated {
		return utils.ErrPhaseOrder
	}
	if method == "" {
		return utils.NewValidationError("payment_method", "must not be empty")
	}
	if reference == "" {
		return utils.NewValidationError("payment_reference", "must not be empty")
	}
	if !amount.IsPositive() {
		return utils.NewValidationError("amount", "must be positive")
	}
	if amount.GreaterThan(c.LiquidatedAmount) {
		return utils.NewValidationError("amount", "must not exceed liquidated amount")
	}
	return nil
}

func GetClaim(ctx context.Context, id int) (*Claim, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Claim](ctx, entityId, id)
}

func GetClaims(ctx context.Context, budgetLineId *int, needsReview *bool) ([]*Claim, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Claim

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if budgetLineId != nil && *budgetLineId > 0 {
		dbCtx = dbCtx.Where("budget_line_id = ?", *budgetLineId)
	}
	if needsReview != nil {
		dbCtx = dbCtx.Where("needs_review = ?", *needsReview)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
