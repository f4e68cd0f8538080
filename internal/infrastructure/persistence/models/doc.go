// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM concerns; each model converts to and from its domain type.
//
// - base.go: base persistence models (BaseModel, AggregateModel)
// - ledger.go: parties and ledger transactions
package models
