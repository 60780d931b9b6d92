package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
)

// ReconciliationGroup records one lettrage: a balanced set of entry lines on
// a single account, tagged with a letter token.
type ReconciliationGroup struct {
	ID          int             `gorm:"primary_key" json:"id"`
	EntityId    string          `gorm:"index;not null" json:"entity_id"`
	AccountId   int             `gorm:"index:idx_group_account_letter;not null" json:"account_id"`
	Letter      string          `gorm:"size:10;index:idx_group_account_letter;not null" json:"letter"`
	LineCount   int             `json:"line_count"`
	TotalDebit  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_debit"`
	TotalCredit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_credit"`
	LetteredBy  string          `gorm:"size:255" json:"lettered_by"`
	DissolvedAt *time.Time      `json:"dissolved_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *ReconciliationGroup) GetEntityId() string {
	return g.EntityId
}

func (g *ReconciliationGroup) GetId() int {
	return g.ID
}

// NextLetterToken returns the token after the given one in alphabetic order:
// A..Z, then AA..AZ, BA.. and so on. An empty input yields "A".
func NextLetterToken(token string) string {
	if token == "" {
		return "A"
	}
	b := []byte(strings.ToUpper(token))
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}
	return "A" + string(b)
}

// ValidateLettrageSet checks a candidate group: at least two lines, all on
// the same account, none already lettered, and debits matching credits
// within the balance tolerance.
func ValidateLettrageSet(lines []EntryLine) error {
	if len(lines) < 2 {
		return utils.NewValidationError("lines", "at least two entry lines are required")
	}
	accountId := lines[0].AccountId
	sumDebit := decimal.Zero
	sumCredit := decimal.Zero
	for _, l := range lines {
		if l.AccountId != accountId {
			return utils.NewValidationError("lines", "all entry lines must share one account")
		}
		if l.Letter != nil && *l.Letter != "" {
			return utils.NewValidationError("lines", "entry line is already lettered; dissolve its group first")
		}
		sumDebit = sumDebit.Add(l.Debit)
		sumCredit = sumCredit.Add(l.Credit)
	}
	if sumDebit.Sub(sumCredit).Abs().GreaterThanOrEqual(BalanceEpsilon) {
		return utils.ErrUnbalancedEntries
	}
	return nil
}

// HighestLetterInUse returns the lexicographically greatest letter ever
// assigned on the account, ordering shorter tokens before longer ones
// ("Z" < "AA"). Dissolved groups count too: the automatic sequence never
// hands out a token twice, even after its group is dissolved.
func HighestLetterInUse(ctx context.Context, entityId string, accountId int) (string, error) {
	db := config.GetDB()
	var letters []string
	err := db.WithContext(ctx).Model(&ReconciliationGroup{}).
		Where("entity_id = ? AND account_id = ?", entityId, accountId).
		Pluck("letter", &letters).Error
	if err != nil {
		return "", err
	}
	highest := ""
	for _, letter := range letters {
		if letterLess(highest, letter) {
			highest = letter
		}
	}
	return highest, nil
}

func letterLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// LetterInUse reports whether an active group on the account already holds
// the token.
func LetterInUse(ctx context.Context, entityId string, accountId int, letter string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&ReconciliationGroup{}).
		Where("entity_id = ? AND account_id = ? AND letter = ? AND dissolved_at IS NULL", entityId, accountId, letter).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetReconciliationGroup(ctx context.Context, id int) (*ReconciliationGroup, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[ReconciliationGroup](ctx, entityId, id)
}

func GetReconciliationGroups(ctx context.Context, accountId *int) ([]*ReconciliationGroup, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*ReconciliationGroup

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if accountId != nil {
		dbCtx = dbCtx.Where("account_id = ?", *accountId)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountUnletteredLines counts lines still unlettered on lettrable accounts,
// used by the closing reconciliation-completeness control.
func CountUnletteredLines(ctx context.Context, entityId string, from time.Time, to time.Time) (int64, error) {
	db := config.GetDB()
	var count int64
	sql := `
		SELECT COUNT(*)
		FROM entry_lines el
			JOIN journals j ON j.id = el.journal_id
			JOIN accounts a ON a.id = el.account_id
		WHERE el.entity_id = ?
			AND j.journal_date BETWEEN ? AND ?
			AND a.is_lettrable = true
			AND (el.letter IS NULL OR el.letter = '')
	`
	if err := db.WithContext(ctx).Raw(sql, entityId, from, to).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
