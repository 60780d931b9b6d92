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

// Revision changes revised budget amounts through an approval cycle. An
// Increase only adds credit, a Decrease only removes it, and a Reallocation
// shuffles it with line deltas summing to zero.
type Revision struct {
	ID             int             `gorm:"primary_key" json:"id"`
	EntityId       string          `gorm:"index;not null" json:"entity_id"`
	RevisionNumber string          `gorm:"size:255" json:"revision_number"`
	SequenceNo     decimal.Decimal `gorm:"type:decimal(15)" json:"sequence_no"`
	RevisionType   RevisionType    `gorm:"type:enum('Increase','Decrease','Reallocation');not null" json:"revision_type" binding:"required"`
	Status         RevisionStatus  `gorm:"type:enum('Draft','Submitted','Approved','Rejected');default:'Draft';index" json:"status"`
	Reason         string          `gorm:"type:text" json:"reason"`
	Lines          []RevisionLine  `gorm:"foreignKey:RevisionId" json:"lines" binding:"required,dive"`
	SubmittedBy    string          `gorm:"size:255" json:"submitted_by"`
	SubmittedAt    *time.Time      `json:"submitted_at"`
	DecidedBy      string          `gorm:"size:255" json:"decided_by"`
	DecidedAt      *time.Time      `json:"decided_at"`
	JournalId      *int            `gorm:"index" json:"journal_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RevisionLine is one line delta inside a revision.
type RevisionLine struct {
	ID           int             `gorm:"primary_key" json:"id"`
	EntityId     string          `gorm:"index;not null" json:"entity_id"`
	RevisionId   int             `gorm:"index;not null" json:"revision_id"`
	BudgetLineId int             `gorm:"index;not null" json:"budget_line_id" binding:"required"`
	DeltaAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"delta_amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Revision) GetEntityId() string {
	return r.EntityId
}

func (r *Revision) GetId() int {
	return r.ID
}

func (r *Revision) CheckPeriodOpen(ctx context.Context) error {
	return ValidatePeriodOpen(ctx, r.CreatedAt, r.EntityId)
}

// GuardLines checks the line set against the revision type.
func (r *Revision) GuardLines() error {
	if len(r.Lines) == 0 {
		return utils.NewValidationError("lines", "at least one line is required")
	}
	if !r.RevisionType.Valid() {
		return utils.NewValidationError("revision_type", "unknown revision type")
	}
	seen := map[int]bool{}
	sum := decimal.Zero
	for _, line := range r.Lines {
		if line.DeltaAmount.IsZero() {
			return utils.NewValidationError("lines", "line delta must not be zero")
		}
		if r.RevisionType == RevisionTypeIncrease && line.DeltaAmount.IsNegative() {
			return utils.NewValidationError("lines", "increase revisions only add credit")
		}
		if r.RevisionType == RevisionTypeDecrease && line.DeltaAmount.IsPositive() {
			return utils.NewValidationError("lines", "decrease revisions only remove credit")
		}
		if seen[line.BudgetLineId] {
			return utils.NewValidationError("lines", "a budget line may appear only once")
		}
		seen[line.BudgetLineId] = true
		sum = sum.Add(line.DeltaAmount)
	}
	if r.RevisionType == RevisionTypeReallocation && !sum.IsZero() {
		return utils.NewValidationError("lines", "reallocation deltas must sum to zero")
	}
	return nil
}

// GuardTransition enforces Draft -> Submitted -> Approved/Rejected. Decided
// revisions are immutable.
func (r *Revision) GuardTransition(next RevisionStatus) error {
	switch next {
	case RevisionStatusSubmitted:
		if r.Status != RevisionStatusDraft {
			return utils.ErrPhaseOrder
		}
	case RevisionStatusApproved, RevisionStatusRejected:
		if r.Status != RevisionStatusSubmitted {
			return utils.ErrPhaseOrder
		}
	default:
		return utils.NewValidationError("status", "unknown revision status")
	}
	return nil
}

// Decided reports whether the revision reached a terminal status.
func (r *Revision) Decided() bool {
	return r.Status == RevisionStatusApproved || r.Status == RevisionStatusRejected
}

// Decided revisions are immutable.
func (r *Revision) BeforeUpdate(tx *gorm.DB) error {
	if r.Decided() {
		return errors.New("immutable revision: decided revisions cannot be modified")
	}
	return nil
}

func GetRevision(ctx context.Context, id int) (*Revision, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Revision](ctx, entityId, id, "Lines")
}

func GetRevisions(ctx context.Context, status *RevisionStatus) ([]*Revision, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Revision

	dbCtx := db.WithContext(ctx).Preload("Lines").Where("entity_id = ?", entityId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
