package models

import "time"

// AccountRole represents the staff roles handling complaint tickets.
type AccountRole string

const (
	RoleAdmin        AccountRole = "admin"
	RoleInvestigator AccountRole = "investigator"
)

// Account represents a staff member stored in the accounts table.
type Account struct {
	ID         string      `db:"id" json:"id"`
	Name       string      `db:"name" json:"name"`
	Email      string      `db:"email" json:"email"`
	Role       AccountRole `db:"role" json:"role"`
	Department *string     `db:"department" json:"department,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"-"`
	UpdatedAt  time.Time   `db:"updated_at" json:"-"`
}

// AccountView is the public projection of an account.
type AccountView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       AccountRole `json:"role"`
	Department *string     `json:"department,omitempty"`
}

// Transform projects the account onto its public field whitelist.
func (a *Account) Transform() AccountView {
	return AccountView{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		Department: a.Department,
	}
}

// AccountFilter captures the equality filters accepted by the list endpoint.
type AccountFilter struct {
	Name       string
	Email      string
	Role       string
	Department string
	Page       int
	PerPage    int
}
