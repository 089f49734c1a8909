// Package service holds the business logic between the HTTP layer and the
// repositories. Each service owns a narrow store interface so tests can
// substitute fakes; *repo.Repo satisfies all of them.
package service

import (
	"errors"

	"moneywise/internal/apperr"
	"moneywise/internal/repo"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// normalizePage clamps pagination inputs to sane bounds.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// notFound translates repo.ErrNotFound into a typed kind with a
// user-facing message, passing every other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.E(apperr.KindNotFound, msg)
	}
	return err
}
