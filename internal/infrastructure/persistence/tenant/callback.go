package tenant

import (
	"reflect"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const column = "tenant_id"

// Callback provides GORM hooks for tenant stamping and filtering
type Callback struct {
	required bool
}

// NewCallback creates a tenant callback. When required is true every statement
// on a tenant-owned table fails unless a tenant is bound to the session.
func NewCallback(required bool) *Callback {
	return &Callback{required: required}
}

// Register installs the callbacks on db
func (tc *Callback) Register(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("tenant:before_create", tc.beforeCreate); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("tenant:before_query", tc.addFilter); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:before_update", tc.beforeUpdate); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:before_delete", tc.addFilter); err != nil {
		return err
	}
	return cb.Row().Before("gorm:row").Register("tenant:before_row", tc.addFilter)
}

// Unregister removes the callbacks, mainly for tests
func Unregister(db *gorm.DB) {
	cb := db.Callback()
	_ = cb.Create().Remove("tenant:before_create")
	_ = cb.Query().Remove("tenant:before_query")
	_ = cb.Update().Remove("tenant:before_update")
	_ = cb.Delete().Remove("tenant:before_delete")
	_ = cb.Row().Remove("tenant:before_row")
}

func (tc *Callback) beforeCreate(db *gorm.DB) {
	if !tc.ownsTenantColumn(db) {
		return
	}
	bound := FromContext(db.Statement.Context)
	if bound == uuid.Nil && tc.required {
		_ = db.AddError(ErrTenantIDRequired)
		return
	}
	eachScoped(db.Statement.ReflectValue, func(m shared.TenantScoped) bool {
		switch current := m.GetTenantID(); {
		case current == uuid.Nil:
			if bound == uuid.Nil {
				_ = db.AddError(ErrTenantIDRequired)
				return false
			}
			m.SetTenantID(bound)
		case bound != uuid.Nil && current != bound:
			tc.violation(db, current, bound)
			return false
		}
		return true
	})
}

func (tc *Callback) beforeUpdate(db *gorm.DB) {
	if !tc.ownsTenantColumn(db) {
		return
	}
	bound := FromContext(db.Statement.Context)
	if bound != uuid.Nil {
		if values, ok := db.Statement.Dest.(map[string]any); ok {
			if v, present := values[column]; present {
				if id, ok := v.(uuid.UUID); !ok || id != bound {
					tc.violation(db, uuid.Nil, bound)
					return
				}
			}
		}
		ok := true
		eachScoped(db.Statement.ReflectValue, func(m shared.TenantScoped) bool {
			if current := m.GetTenantID(); current != uuid.Nil && current != bound {
				tc.violation(db, current, bound)
				ok = false
			}
			return ok
		})
		if !ok {
			return
		}
	}
	tc.addFilter(db)
}

// violation records a tenant reassignment. DPanic panics in development builds.
func (tc *Callback) violation(db *gorm.DB, rowTenant, boundTenant uuid.UUID) {
	table := ""
	if db.Statement.Schema != nil {
		table = db.Statement.Schema.Table
	}
	logger.L(db.Statement.Context).DPanic("tenant integrity violation",
		zap.String("table", table),
		zap.String("row_tenant_id", rowTenant.String()),
		zap.String("session_tenant_id", boundTenant.String()),
	)
	_ = db.AddError(ErrTenantReassigned)
}

// addFilter adds tenant_id = ? unless the statement already filters on it
func (tc *Callback) addFilter(db *gorm.DB) {
	if db.Statement.Unscoped || !tc.ownsTenantColumn(db) || hasTenantCondition(db) {
		return
	}
	bound := FromContext(db.Statement.Context)
	if bound == uuid.Nil {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: bound},
	}})
}

func (tc *Callback) ownsTenantColumn(db *gorm.DB) bool {
	if db.Statement.Schema == nil {
		return false
	}
	return db.Statement.Schema.LookUpField(column) != nil
}

func hasTenantCondition(db *gorm.DB) bool {
	if c, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if exprMentionsTenant(expr) {
					return true
				}
			}
		}
	}
	return strings.Contains(db.Statement.SQL.String(), column)
}

func exprMentionsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == column
		}
		if s, ok := e.Column.(string); ok {
			return strings.Contains(s, column)
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == column
		}
	case clause.Expr:
		return strings.Contains(e.SQL, column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, column)
	case clause.AndConditions:
		for _, c := range e.Exprs {
			if exprMentionsTenant(c) {
				return true
			}
		}
	}
	return false
}

// eachScoped calls fn for every TenantScoped record in a struct or slice value.
// Iteration stops when fn returns false.
func eachScoped(v reflect.Value, fn func(shared.TenantScoped) bool) {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !visit(v.Index(i), fn) {
				return
			}
		}
	case reflect.Struct, reflect.Ptr:
		visit(v, fn)
	}
}

func visit(v reflect.Value, fn func(shared.TenantScoped) bool) bool {
	if v.Kind() != reflect.Ptr {
		if !v.CanAddr() {
			return true
		}
		v = v.Addr()
	}
	if v.IsNil() {
		return true
	}
	if m, ok := v.Interface().(shared.TenantScoped); ok {
		return fn(m)
	}
	return true
}
