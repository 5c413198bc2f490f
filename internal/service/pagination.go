package service

import (
	"gorm.io/gorm"
)

// Pagination selects one page of a list. Page is 1-based.
type Pagination struct {
	Page int
	Size int
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

func (p Pagination) scope(db *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Size)
}
