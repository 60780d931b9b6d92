package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceEpsilon is the tolerance used when comparing debit and credit sums.
var BalanceEpsilon = decimal.RequireFromString("0.01")

// Journal is one balanced accounting transaction emitted by a workflow.
type Journal struct {
	ID            int               `gorm:"primary_key" json:"id"`
	EntityId      string            `gorm:"index;not null" json:"entity_id"`
	JournalNumber string            `gorm:"size:255;not null" json:"journal_number"`
	SequenceNo    decimal.Decimal   `gorm:"type:decimal(15);not null" json:"sequence_no"`
	JournalDate   time.Time         `gorm:"index;not null" json:"journal_date"`
	Description   string            `gorm:"type:text" json:"description"`
	SourceType    JournalSourceType `gorm:"type:enum('LQ','PY','RT','RC','VR','RV','JL','CL','RAN');index;not null" json:"source_type"`
	SourceId      int               `gorm:"index" json:"source_id"`
	ExchangeRate  decimal.Decimal   `gorm:"type:decimal(20,4);default:1" json:"exchange_rate"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CorrelationId string            `gorm:"size:64;index" json:"correlation_id"`
	Lines         []EntryLine       `gorm:"foreignKey:JournalId" json:"lines"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// EntryLine is one side of a posted transaction. Exactly one of debit/credit
// is non-zero. Lines are append-only; the only mutable fields are the
// reconciliation letter ones.
type EntryLine struct {
	ID         int             `gorm:"primary_key" json:"id"`
	EntityId   string          `gorm:"index;not null" json:"entity_id"`
	JournalId  int             `gorm:"index;not null" json:"journal_id"`
	AccountId  int             `gorm:"index;not null" json:"account_id"`
	Label      string          `gorm:"size:255" json:"label"`
	Debit      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	Letter     *string         `gorm:"size:10;index" json:"letter"`
	LetteredAt *time.Time      `json:"lettered_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *Journal) GetEntityId() string {
	return j.EntityId
}

func (j *Journal) GetId() int {
	return j.ID
}

func (l EntryLine) GetId() int {
	return l.ID
}

// Ledger immutability guardrails:
// - entry_lines are append-only; only the lettering fields may change.
// - journals are never deleted.

func (l *EntryLine) BeforeUpdate(tx *gorm.DB) error {
	allowed := map[string]bool{
		"Letter":     true,
		"LetteredAt": true,
		"UpdatedAt":  true,
	}
	if tx == nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return nil
	}
	for _, f := range tx.Statement.Schema.Fields {
		if tx.Statement.Changed(f.Name) && !allowed[f.Name] {
			return errors.New("immutable ledger: only lettering fields may be updated on entry_lines")
		}
	}
	return nil
}

func (l *EntryLine) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: entry_lines cannot be deleted")
}

func (j *Journal) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: journals cannot be deleted")
}

// ValidateJournalLines checks line shape and overall balance.
func ValidateJournalLines(lines []EntryLine) (total decimal.Decimal, err error) {
	if len(lines) < 2 {
		return decimal.Zero, utils.NewValidationError("lines", "at least two lines are required")
	}
	sumDebit := decimal.Zero
	sumCredit := decimal.Zero
	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return decimal.Zero, utils.NewValidationError("lines", "debit and credit must not be negative")
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return decimal.Zero, utils.NewValidationError("lines", "exactly one of debit or credit must have value")
		}
		sumDebit = sumDebit.Add(l.Debit)
		sumCredit = sumCredit.Add(l.Credit)
	}
	if sumDebit.Sub(sumCredit).Abs().GreaterThanOrEqual(BalanceEpsilon) {
		return decimal.Zero, utils.ErrUnbalancedEntries
	}
	return sumDebit, nil
}

// PostJournal writes a balanced journal inside the caller's transaction.
// The period covering the journal date must accept writes.
func PostJournal(ctx context.Context, tx *gorm.DB, entityId string, journal *Journal) (*Journal, error) {

	total, err := ValidateJournalLines(journal.Lines)
	if err != nil {
		return nil, err
	}
	if err := ValidatePeriodOpen(ctx, journal.JournalDate, entityId); err != nil {
		return nil, err
	}

	for i := range journal.Lines {
		journal.Lines[i].EntityId = entityId
	}
	journal.EntityId = entityId
	journal.TotalAmount = total
	if journal.ExchangeRate.IsZero() {
		journal.ExchangeRate = decimal.NewFromInt(1)
	}
	journal.CorrelationId = correlationIdFromContextOrNew(ctx)

	seqNo, err := utils.GetSequence[Journal](ctx, entityId)
	if err != nil {
		return nil, err
	}
	journal.SequenceNo = decimal.NewFromInt(seqNo)
	journal.JournalNumber = documentPrefix(journal.SourceType) + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(journal).Error; err != nil {
		return nil, err
	}
	return journal, nil
}

// PostClosingJournal bypasses the period-open check: the carry-forward step
// runs while the period is already Closing.
func PostClosingJournal(ctx context.Context, tx *gorm.DB, entityId string, journal *Journal) (*Journal, error) {

	total, err := ValidateJournalLines(journal.Lines)
	if err != nil {
		return nil, err
	}

	for i := range journal.Lines {
		journal.Lines[i].EntityId = entityId
	}
	journal.EntityId = entityId
	journal.TotalAmount = total
	if journal.ExchangeRate.IsZero() {
		journal.ExchangeRate = decimal.NewFromInt(1)
	}
	journal.CorrelationId = correlationIdFromContextOrNew(ctx)

	seqNo, err := utils.GetSequence[Journal](ctx, entityId)
	if err != nil {
		return nil, err
	}
	journal.SequenceNo = decimal.NewFromInt(seqNo)
	journal.JournalNumber = documentPrefix(journal.SourceType) + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(journal).Error; err != nil {
		return nil, err
	}
	return journal, nil
}

func GetJournal(ctx context.Context, id int) (*Journal, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Journal](ctx, entityId, id, "Lines")
}

func GetJournals(ctx context.Context, sourceType *JournalSourceType, fromDate *time.Time, toDate *time.Time) ([]*Journal, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Journal

	dbCtx := db.WithContext(ctx).Preload("Lines").Where("entity_id = ?", entityId)
	if sourceType != nil && *sourceType != "" {
		dbCtx = dbCtx.Where("source_type = ?", *sourceType)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("journal_date BETWEEN ? AND ?", fromDate, toDate)
	}
	if err := dbCtx.Order("journal_date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AccountBalance aggregates one account's period activity, used by the
// closing engine.
type AccountBalance struct {
	AccountId     int             `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	Class         int             `json:"class"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// Net returns debit minus credit.
func (b AccountBalance) Net() decimal.Decimal {
	return b.Debit.Sub(b.Credit)
}

// SumAccountBalances aggregates posted lines per account over a date range.
func SumAccountBalances(ctx context.Context, tx *gorm.DB, entityId string, from time.Time, to time.Time) ([]AccountBalance, error) {
	var balances []AccountBalance
	sql := `
		SELECT
			el.account_id,
			a.account_number,
			a.class,
			COALESCE(SUM(el.debit), 0) AS debit,
			COALESCE(SUM(el.credit), 0) AS credit
		FROM entry_lines el
			JOIN journals j ON j.id = el.journal_id
			JOIN accounts a ON a.id = el.account_id
		WHERE el.entity_id = ?
			AND j.journal_date BETWEEN ? AND ?
		GROUP BY el.account_id, a.account_number, a.class
	`
	if err := tx.WithContext(ctx).Raw(sql, entityId, from, to).Scan(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}
