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

// Transfer moves credit between two budget lines (virement). A transfer is
// created Pending and only touches the lines at approval time.
type Transfer struct {
	ID                int             `gorm:"primary_key" json:"id"`
	EntityId          string          `gorm:"index;not null" json:"entity_id"`
	TransferNumber    string          `gorm:"size:255" json:"transfer_number"`
	SequenceNo        decimal.Decimal `gorm:"type:decimal(15)" json:"sequence_no"`
	CommandRef        string          `gorm:"size:128;uniqueIndex:idx_transfer_command_ref;not null" json:"command_ref" binding:"required"`
	SourceLineId      int             `gorm:"index;not null" json:"source_line_id" binding:"required"`
	DestinationLineId int             `gorm:"index;not null" json:"destination_line_id" binding:"required"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount" binding:"required"`
	Reason            string          `gorm:"type:text" json:"reason"`
	Status            TransferStatus  `gorm:"type:enum('Pending','Approved','Rejected');default:'Pending';index" json:"status"`
	RequestedBy       string          `gorm:"size:255" json:"requested_by"`
	DecidedBy         string          `gorm:"size:255" json:"decided_by"`
	DecidedAt         *time.Time      `json:"decided_at"`
	JournalId         *int            `gorm:"index" json:"journal_id"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Transfer) GetEntityId() string {
	return t.EntityId
}

func (t *Transfer) GetId() int {
	return t.ID
}

func (t *Transfer) CheckPeriodOpen(ctx context.Context) error {
	return ValidatePeriodOpen(ctx, t.CreatedAt, t.EntityId)
}

// GuardCreate checks the request shape before any row is written.
func (t *Transfer) GuardCreate() error {
	if t.CommandRef == "" {
		return utils.NewValidationError("command_ref", "command reference is required")
	}
	if t.SourceLineId == t.DestinationLineId {
		return utils.NewValidationError("destination_line_id", "source and destination lines must differ")
	}
	if !t.Amount.IsPositive() {
		return utils.NewValidationError("amount", "transfer amount must be positive")
	}
	return nil
}

// GuardDecide ensures a decision lands on a Pending transfer exactly once.
func (t *Transfer) GuardDecide() error {
	if t.Status != TransferStatusPending {
		return utils.NewValidationError("status", "transfer has already been decided")
	}
	return nil
}

func GetTransfer(ctx context.Context, id int) (*Transfer, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Transfer](ctx, entityId, id)
}

// recordAbsent reports whether a lookup error means the row does not exist.
// Raw First calls surface gorm's sentinel; the fetch helpers wrap it.
func recordAbsent(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, utils.ErrorRecordNotFound)
}

// GetTransferByCommandRef returns the transfer previously created with the
// given command reference, or nil when none exists.
func GetTransferByCommandRef(ctx context.Context, entityId string, commandRef string) (*Transfer, error) {
	db := config.GetDB()
	var transfer Transfer
	err := db.WithContext(ctx).
		Where("entity_id = ? AND command_ref = ?", entityId, commandRef).
		First(&transfer).Error
	if err != nil {
		if recordAbsent(err) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

func GetTransfers(ctx context.Context, status *TransferStatus) ([]*Transfer, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Transfer

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
