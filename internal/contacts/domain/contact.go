package domain

import "time"

// DateLayout is the wire and storage format of birthdays.
const DateLayout = "2006-01-02"

// Contact belongs to exactly one user; every lookup is scoped by OwnerID.
type Contact struct {
	ID        string
	OwnerID   string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  *time.Time // date only, UTC midnight
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactPatch carries the fields of a partial update. Nil means unchanged.
// ClearBirthday removes the birthday.
type ContactPatch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	Birthday      *time.Time
	ClearBirthday bool
	Note          *string
}

// Apply returns c with the patch applied.
func (p ContactPatch) Apply(c Contact) Contact {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	switch {
	case p.ClearBirthday:
		c.Birthday = nil
	case p.Birthday != nil:
		b := *p.Birthday
		c.Birthday = &b
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
	return c
}

// ContactPage is one page of a cursor listing. NextCursor is empty on the
// last page.
type ContactPage struct {
	Contacts   []Contact
	NextCursor string
}
