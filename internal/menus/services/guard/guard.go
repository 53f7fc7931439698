// Package guard decides whether an identity may act on a menu or a dish.
package guard

import "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"

type Action int

const (
	Read Action = iota
	Write
)

var ErrForbidden = models.NewError(models.ErrForbidden, "access denied")

// Decide is called after the ownership record was loaded, so absence has
// already been reported as not found.
func Decide(id models.Identity, o models.Ownership, action Action) error {
	if action != Read && action != Write {
		return ErrForbidden
	}

	switch id.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager, models.RoleUser:
		if id.UserID == o.OwnerID {
			return nil
		}

		return ErrForbidden
	default:
		return ErrForbidden
	}
}
