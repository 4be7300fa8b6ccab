package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
)

// SharedHelpers contains query fragments common to the repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyScope restricts a query to the caller's tenant and organisation.
// Cross-tenant rows must never leak, so every scoped read goes through here.
func (h *SharedHelpers) ApplyScope(query *gorm.DB, scope models.AuthContext) *gorm.DB {
	return query.Where("tenant_id = ? AND organisation_id = ?", scope.TenantID, scope.OrganisationID)
}

// ApplyPaginationAndSort applies pagination and sorting with a whitelist of
// sortable columns.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"marks":      true,
		"level":      true,
		"title":      true,
		"priority":   true,
		"attempt":    true,
	}

	if sortBy != "" && allowedSortColumns[sortBy] {
		order := "asc"
		if sortOrder == "desc" {
			order = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortBy, order))
	} else {
		query = query.Order("created_at desc")
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func getDB(base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return base
}
