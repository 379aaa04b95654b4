package specification

import "gorm.io/gorm"

// Specification composes query predicates onto a GORM builder. Leaf
// repositories fold any number of them over the base query before
// running it.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
