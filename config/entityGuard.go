package config

import (
	"context"
	"strings"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntityGuardPlugin enforces per-entity isolation by automatically scoping
// queries/updates/deletes to the request's entity_id when the model has an entity_id column.
//
// NOTE: this does NOT apply to Raw SQL queries. Those must include entity_id manually.
type EntityGuardPlugin struct{}

func NewEntityGuardPlugin() *EntityGuardPlugin { return &EntityGuardPlugin{} }

func (p *EntityGuardPlugin) Name() string { return "entity_guard" }

func (p *EntityGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("entity_guard:query", entityGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("entity_guard:row", entityGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("entity_guard:update", entityGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("entity_guard:delete", entityGuardCallback); err != nil {
		return err
	}
	return nil
}

func entityGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	entityID := entityIdFromContext(ctx)
	if entityID == "" {
		return
	}

	// Only apply if the current model/table includes an entity_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasEntityID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "entity_id") {
			hasEntityID = true
			break
		}
	}
	if !hasEntityID {
		return
	}

	// Don't duplicate an explicit entity filter.
	if whereHasEntityID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "entity_id"},
				Value:  entityID,
			},
		},
	})
}

func entityIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyEntityId).(string); ok && v != "" {
		return v
	}
	return ""
}

func whereHasEntityID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasEntityID(e) {
			return true
		}
	}
	return false
}

func exprHasEntityID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsEntityID(v.Column)
	case clause.IN:
		return colIsEntityID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasEntityID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasEntityID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "entity_id")
	default:
		return false
	}
}

func colIsEntityID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "entity_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "entity_id")
	default:
		return false
	}
}
