package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Specification narrows or shapes a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Apply chains specs onto db in order.
func Apply(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Limit caps the number of rows. Zero or negative means no cap.
type Limit struct {
	Rows int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	if s.Rows <= 0 {
		return db
	}
	return db.Limit(s.Rows)
}

// ColumnEquals is an equality filter on a quoted column name.
type ColumnEquals struct {
	Column string
	Value  interface{}
}

func (s ColumnEquals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: clause.Column{Name: s.Column}, Value: s.Value})
}
