package service

import "github.com/murdoch-its/complaints-api/internal/models"

// canAssignRole reports whether the acting role may change another entity's
// role or type through an update/replace. Shared by the account and
// complainant services so the strip-privileged-field rule lives in one place.
func canAssignRole(actor models.AccountRole) bool {
	return actor == models.RoleAdmin
}
