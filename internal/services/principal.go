package services

import "github.com/franciscosanchezn/foodgram-api/internal/models"

// Principal is the authenticated caller. A zero UserID means anonymous.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanModify reports whether p may change a recipe written by authorID
func (p Principal) CanModify(authorID uint) bool {
	return p.IsAuthenticated() && (p.UserID == authorID || p.IsAdmin())
}
