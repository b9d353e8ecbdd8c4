// Package models contains the GORM persistence models of the retail back end.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain entity with ToDomain and <Model>FromDomain.
//
// Every model is tenant-owned and implements shared.TenantScoped, through which
// the tenant callbacks stamp and verify ownership.
package models
