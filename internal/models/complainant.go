package models

import "time"

// ComplainantType classifies who is filing the complaint.
type ComplainantType string

const (
	ComplainantStaff     ComplainantType = "staff"
	ComplainantStudent   ComplainantType = "student"
	ComplainantPublic    ComplainantType = "public"
	ComplainantAnonymous ComplainantType = "anonymous"
)

// Complainant represents a person filing complaints.
type Complainant struct {
	ID        string           `db:"id" json:"id"`
	FirstName string           `db:"first_name" json:"firstName"`
	LastName  string           `db:"last_name" json:"lastName"`
	Email     string           `db:"email" json:"email"`
	Type      *ComplainantType `db:"type" json:"type,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"-"`
	UpdatedAt time.Time        `db:"updated_at" json:"-"`
}

// ComplainantView is the public projection of a complainant.
type ComplainantView struct {
	ID        string           `json:"id"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Email     string           `json:"email"`
	Type      *ComplainantType `json:"type,omitempty"`
}

// Transform projects the complainant onto its public field whitelist.
func (c *Complainant) Transform() ComplainantView {
	return ComplainantView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Type:      c.Type,
	}
}

// ComplainantFilter captures the equality filters accepted by the list endpoint.
type ComplainantFilter struct {
	Email   string
	Type    string
	Page    int
	PerPage int
}
