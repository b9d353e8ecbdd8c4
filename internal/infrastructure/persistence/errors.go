package persistence

import (
	"errors"
	"strings"

	"github.com/erp/retail/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps storage failures to domain errors. Record-not-found
// becomes NotFound for resource. Everything else, tenant integrity failures
// included, becomes Unexpected. Domain errors pass through unchanged.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return shared.NewUnexpectedError(err)
}

// versionedWrite is the outcome of an update guarded by "version = ?". The
// stored version was read FOR UPDATE beforehand. A mismatch with the version
// root was loaded at, or an update that touched no row, is a Conflict.
// Success advances root to the version just written.
func versionedWrite(root shared.AggregateRoot, stored int, write func(next int) *gorm.DB, resource string) error {
	if stored != root.GetVersion() {
		return shared.NewConflictError(resource)
	}
	result := write(root.GetVersion() + 1)
	if result.Error != nil {
		return translateError(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError(resource)
	}
	root.IncrementVersion()
	return nil
}

const escapeClause = ` ESCAPE '\'`

// requireAffected turns an update or delete that touched no row into NotFound
func requireAffected(result *gorm.DB, resource string) error {
	if result.Error != nil {
		return translateError(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(resource)
	}
	return nil
}

// likePattern wraps a search term for a LIKE predicate
func likePattern(term string) string {
	return "%" + escapeLike(term) + "%"
}

// escapeLike escapes LIKE wildcards so term matches literally
func escapeLike(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
