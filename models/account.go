package models

import (
	"context"
	"errors"
	"time"
	"unicode"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
)

// Account is a ledger account of the chart of accounts (classes 1-9).
// Postings reference accounts by id; free-text account fields are not allowed
// anywhere in the engine.
type Account struct {
	ID            int           `gorm:"primary_key" json:"id"`
	EntityId      string        `gorm:"index;not null" json:"entity_id"`
	AccountNumber string        `gorm:"index;size:20;not null" json:"account_number" binding:"required"`
	Label         string        `gorm:"size:255;not null" json:"label" binding:"required"`
	Class         int           `gorm:"index;not null" json:"class"`
	Nature        AccountNature `gorm:"type:enum('Debit','Credit');default:'Debit';size:10;not null" json:"nature" binding:"required"`
	IsLettrable   *bool         `gorm:"not null;default:false" json:"is_lettrable"`
	IsActive      *bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	AccountNumber string        `json:"account_number" binding:"required"`
	Label         string        `json:"label" binding:"required"`
	Nature        AccountNature `json:"nature" binding:"required"`
	IsLettrable   bool          `json:"is_lettrable"`
}

func (a *Account) GetEntityId() string {
	return a.EntityId
}

// AccountClassOf derives the account class from the leading digit of the
// account number.
func AccountClassOf(accountNumber string) (int, error) {
	if accountNumber == "" {
		return 0, utils.NewValidationError("account_number", "must not be empty")
	}
	for _, r := range accountNumber {
		if !unicode.IsDigit(r) {
			return 0, utils.NewValidationError("account_number", "must contain digits only")
		}
	}
	class := int(accountNumber[0] - '0')
	if class < 1 || class > 9 {
		return 0, utils.NewValidationError("account_number", "class must be 1-9")
	}
	return class, nil
}

// Balance-sheet accounts carry their balance into the next period.
func IsBalanceSheetClass(class int) bool {
	return class >= 1 && class <= 5
}

// Profit & loss accounts are zeroed on closing.
func IsProfitLossClass(class int) bool {
	return class == 6 || class == 7
}

func (input *NewAccount) validate(ctx context.Context, entityId string, id int) (int, error) {
	class, err := AccountClassOf(input.AccountNumber)
	if err != nil {
		return 0, err
	}
	if input.Nature != AccountNatureDebit && input.Nature != AccountNatureCredit {
		return 0, utils.NewValidationError("nature", "must be Debit or Credit")
	}
	if err := utils.ValidateUnique[Account](ctx, entityId, "account_number", input.AccountNumber, id); err != nil {
		return 0, err
	}
	return class, nil
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	class, err := input.validate(ctx, entityId, 0)
	if err != nil {
		return nil, err
	}

	account := Account{
		EntityId:      entityId,
		AccountNumber: input.AccountNumber,
		Label:         input.Label,
		Class:         class,
		Nature:        input.Nature,
		IsLettrable:   &input.IsLettrable,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	if err := clearRegistryCache(entityId); err != nil {
		return nil, err
	}
	return &account, nil
}

// Accounts are never deleted, only deactivated.
func MarkAccountActive(ctx context.Context, id int, isActive bool) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	account, err := utils.FetchModel[Account](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(account).Updates(Account{
		IsActive: &isActive,
	}).Error; err != nil {
		return nil, err
	}
	if err := clearRegistryCache(entityId); err != nil {
		return nil, err
	}
	return account, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}
	return utils.FetchModel[Account](ctx, entityId, id)
}

func GetAccounts(ctx context.Context, class *int, lettrable *bool) ([]*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, errors.New("entity id is required")
	}

	db := config.GetDB()
	var results []*Account

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if class != nil && *class > 0 {
		dbCtx = dbCtx.Where("class = ?", *class)
	}
	if lettrable != nil {
		dbCtx = dbCtx.Where("is_lettrable = ?", *lettrable)
	}
	if err := dbCtx.Order("account_number").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetRegistryAccounts returns the accountNumber -> id map of the entity,
// redis or db.
func GetRegistryAccounts(entityId string) (map[string]int, error) {
	var accounts []*Account
	var registry map[string]int

	exists, err := config.GetRedisObject("RegistryAccounts:"+entityId, &registry)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.Select("id", "account_number").
			Where("entity_id = ?", entityId).
			Where("is_active = ?", true).Find(&accounts).Error; err != nil {
			return nil, err
		}
		registry = make(map[string]int)
		for _, acc := range accounts {
			registry[acc.AccountNumber] = acc.ID
		}
		if err := config.SetRedisObject("RegistryAccounts:"+entityId, &registry, 0); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func clearRegistryCache(entityId string) error {
	return config.RemoveRedisKey("RegistryAccounts:" + entityId)
}

// ResolveAccount finds the registry account for a mandated account number.
func ResolveAccount(entityId string, accountNumber string) (int, error) {
	registry, err := GetRegistryAccounts(entityId)
	if err != nil {
		return 0, err
	}
	id, ok := registry[accountNumber]
	if !ok {
		return 0, errors.New("account " + accountNumber + " not found in registry")
	}
	return id, nil
}
