// Package models contains the GORM persistence models for the credit tables.
// Domain types stay free of ORM tags; each model converts with ToDomain and
// a ...ModelFromDomain constructor.
package models
