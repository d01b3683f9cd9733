package repository

import (
	"errors"
	"strings"

	"feeportal/internal/domain"

	"gorm.io/gorm"
)

var (
	// ErrStaleVersion is returned when a conditional update matched no row.
	ErrStaleVersion = errors.New("record was modified concurrently")
	// ErrInUse is returned when a row is still referenced by others.
	ErrInUse = errors.New("record is still referenced")
)

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page, limit = domain.NormalizePage(page, limit)
		return db.Offset(domain.Offset(page, limit)).Limit(limit)
	}
}

// likeEscape is the ESCAPE character of every LIKE clause.
const likeEscape = "!"

// likePattern lower-cases s and escapes LIKE wildcards. Use with ESCAPE '!'.
func likePattern(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, `%`, likeEscape+`%`, `_`, likeEscape+`_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
