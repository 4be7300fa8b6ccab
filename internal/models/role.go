package models

// UserRole is the coarse role carried in the identity token. Authoring and
// review surfaces are gated on it; attempt surfaces only need authentication.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleTeacher  UserRole = "teacher"
	RoleReviewer UserRole = "reviewer"
	RoleStudent  UserRole = "student"
)
