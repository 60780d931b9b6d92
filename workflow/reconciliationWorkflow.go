package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type LetterEntriesInput struct {
	EntryLineIds []int `json:"entry_line_ids" binding:"required"`
	// Letter is optional; when empty the next free token on the account is used.
	Letter string `json:"letter"`
}

// LetterEntries matches a balanced set of entry lines on one account and tags
// them with a letter token. The whole set is tagged or nothing is.
func LetterEntries(ctx context.Context, input *LetterEntriesInput) (*models.ReconciliationGroup, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	// lettrage per entity is serialized: token assignment stays unique and
	// a concurrent submission over the same lines fails the re-validation
	// below instead of silently re-lettering them
	locks, err := AcquireEntityPostingLock(ctx, entityId)
	if err != nil {
		return nil, err
	}
	defer locks.Release(ctx)

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// the candidate set is read under the lock so its unlettered state
	// holds until commit
	var lines []models.EntryLine
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_id = ? AND id IN ?", entityId, input.EntryLineIds).
		Find(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(lines) != len(input.EntryLineIds) {
		tx.Rollback()
		return nil, utils.NewValidationError("entry_line_ids", "one or more entry lines not found")
	}
	if err := models.ValidateLettrageSet(lines); err != nil {
		tx.Rollback()
		return nil, err
	}
	accountId := lines[0].AccountId

	letter := input.Letter
	if letter != "" {
		used, err := models.LetterInUse(ctx, entityId, accountId, letter)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if used {
			tx.Rollback()
			return nil, utils.NewValidationError("letter", "letter is already in use on this account")
		}
	} else {
		highest, err := models.HighestLetterInUse(ctx, entityId, accountId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		letter = models.NextLetterToken(highest)
	}

	now := time.Now()
	sumDebit := decimal.Zero
	sumCredit := decimal.Zero
	for i := range lines {
		sumDebit = sumDebit.Add(lines[i].Debit)
		sumCredit = sumCredit.Add(lines[i].Credit)
		if err := tx.WithContext(ctx).Model(&lines[i]).Updates(map[string]interface{}{
			"Letter":     letter,
			"LetteredAt": &now,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	userName, _ := utils.GetUserNameFromContext(ctx)
	group := models.ReconciliationGroup{
		EntityId:    entityId,
		AccountId:   accountId,
		Letter:      letter,
		LineCount:   len(lines),
		TotalDebit:  sumDebit,
		TotalCredit: sumCredit,
		LetteredBy:  userName,
	}
	if err := tx.WithContext(ctx).Create(&group).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "LetterEntries", "Commit", letter, err)
		return nil, err
	}
	return &group, nil
}

// DissolveGroup releases a lettrage: the lines become unlettered again and
// the group is kept as a dissolved record.
func DissolveGroup(ctx context.Context, groupId int) (*models.ReconciliationGroup, error) {

	logger := config.GetLogger()
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	// serialized with LetterEntries on the same entity lock
	locks, err := AcquireEntityPostingLock(ctx, entityId)
	if err != nil {
		return nil, err
	}
	defer locks.Release(ctx)

	group, err := utils.FetchModel[models.ReconciliationGroup](ctx, entityId, groupId)
	if err != nil {
		return nil, err
	}
	if group.DissolvedAt != nil {
		return nil, utils.NewValidationError("group", "group is already dissolved")
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var lines []models.EntryLine
	if err := tx.WithContext(ctx).
		Where("entity_id = ? AND account_id = ? AND letter = ?", entityId, group.AccountId, group.Letter).
		Find(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range lines {
		if err := tx.WithContext(ctx).Model(&lines[i]).Updates(map[string]interface{}{
			"Letter":     nil,
			"LetteredAt": nil,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	if err := tx.WithContext(ctx).Model(group).Update("DissolvedAt", &now).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "DissolveGroup", "Commit", group.Letter, err)
		return nil, err
	}
	return group, nil
}
