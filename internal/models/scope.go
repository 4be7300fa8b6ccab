package models

import "github.com/google/uuid"

// SystemUserID marks rows written by the engine itself (generated tests).
const SystemUserID = "system"

// AuthContext is the already-validated caller identity supplied on every
// operation. Every repository read and write is scoped by
// (TenantID, OrganisationID).
type AuthContext struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	OrganisationID uuid.UUID `json:"organisation_id"`
	UserID         string    `json:"user_id"`
}

// IsSystem reports whether the context is the engine's own identity.
func (c AuthContext) IsSystem() bool {
	return c.UserID == SystemUserID
}
