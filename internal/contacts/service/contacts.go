package service

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/idx"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	maxQueryLength = 100
)

// ContactInput is a full contact as submitted by the caller. Birthday is
// YYYY-MM-DD or empty.
type ContactInput struct {
	FirstName string `field:"first_name" validate:"required,max=100"`
	LastName  string `field:"last_name"  validate:"required,max=100"`
	Email     string `field:"email"      validate:"required,email,max=254"`
	Phone     string `field:"phone"      validate:"required,phone"`
	Birthday  string `field:"birthday"   validate:"omitempty,datetime=2006-01-02"`
	Note      string `field:"note"       validate:"max=2000"`
}

// ContactPatchInput changes only the non-nil fields. An empty Birthday or
// Note clears it.
type ContactPatchInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *string
	Note      *string
}

// ContactService manages the caller's own contacts. Every operation is
// scoped by the principal: another user's contact is indistinguishable from
// a missing one.
type ContactService struct {
	Store store.Store

	// PageSize is the default page length of List and the batch size Search
	// fetches with.
	PageSize int
	// BirthdayWindow is the number of days UpcomingBirthdays looks ahead,
	// today included.
	BirthdayWindow int

	Now func() time.Time
}

// Create validates in and stores it as a new contact of p.
func (s *ContactService) Create(ctx context.Context, p domain.Principal, in ContactInput) (domain.Contact, error) {
	in = in.normalize()
	if err := validateInput(in); err != nil {
		return domain.Contact{}, err
	}
	bday, err := parseBirthday(in.Birthday)
	if err != nil {
		return domain.Contact{}, err
	}

	now := s.now()
	c := domain.Contact{
		ID:        idx.New().String(),
		OwnerID:   p.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  bday,
		Note:      in.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Contacts().CreateContact(ctx, c); err != nil {
		return domain.Contact{}, err
	}
	return c, nil
}

// Get returns one contact of p.
func (s *ContactService) Get(ctx context.Context, p domain.Principal, id string) (domain.Contact, error) {
	if !idx.Valid(id) {
		return domain.Contact{}, ErrNotFound
	}
	c, err := s.Store.Contacts().GetContact(ctx, p.ID, id)
	if err != nil {
		return domain.Contact{}, mapNotFound(err)
	}
	return c, nil
}

// Update applies a partial change. The merged contact is validated as a
// whole before anything is written.
func (s *ContactService) Update(ctx context.Context, p domain.Principal, id string, in ContactPatchInput) (domain.Contact, error) {
	existing, err := s.Get(ctx, p, id)
	if err != nil {
		return domain.Contact{}, err
	}

	in = in.normalize()
	if err := validateInput(in.mergeInto(inputFromContact(existing))); err != nil {
		return domain.Contact{}, err
	}
	patch, err := in.toPatch()
	if err != nil {
		return domain.Contact{}, err
	}

	updated := patch.Apply(existing)
	updated.UpdatedAt = s.now()
	if err := s.Store.Contacts().UpdateContact(ctx, updated); err != nil {
		return domain.Contact{}, mapNotFound(err)
	}
	return updated, nil
}

// Replace overwrites every field of the contact with in.
func (s *ContactService) Replace(ctx context.Context, p domain.Principal, id string, in ContactInput) (domain.Contact, error) {
	return s.Update(ctx, p, id, ContactPatchInput{
		FirstName: &in.FirstName,
		LastName:  &in.LastName,
		Email:     &in.Email,
		Phone:     &in.Phone,
		Birthday:  &in.Birthday,
		Note:      &in.Note,
	})
}

// Delete removes one contact of p.
func (s *ContactService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if !idx.Valid(id) {
		return ErrNotFound
	}
	return mapNotFound(s.Store.Contacts().DeleteContact(ctx, p.ID, id))
}

// List returns the page of p's contacts that follows the cursor after (a
// contact id; empty for the first page). limit <= 0 means PageSize.
func (s *ContactService) List(ctx context.Context, p domain.Principal, after string, limit int) (domain.ContactPage, error) {
	if after != "" && !idx.Valid(after) {
		return domain.ContactPage{}, invalid("after", "must be a contact id")
	}
	limit = s.clampLimit(limit)

	// One extra row tells whether another page exists.
	rows, err := s.Store.Contacts().ListContacts(ctx, p.ID, after, limit+1)
	if err != nil {
		return domain.ContactPage{}, err
	}

	page := domain.ContactPage{Contacts: rows}
	if len(rows) > limit {
		page.Contacts = rows[:limit]
		page.NextCursor = rows[limit-1].ID
	}
	return page, nil
}

// Search yields p's contacts whose first name, last name or email contains
// query, ignoring case, in id order. Pages are fetched lazily as the caller
// ranges; each range starts from the beginning. An invalid query yields a
// single ValidationError.
func (s *ContactService) Search(ctx context.Context, p domain.Principal, query string) iter.Seq2[domain.Contact, error] {
	query = strings.TrimSpace(query)
	batch := s.clampLimit(0)

	return func(yield func(domain.Contact, error) bool) {
		switch {
		case query == "":
			yield(domain.Contact{}, invalid("query", "required"))
			return
		case len(query) > maxQueryLength:
			yield(domain.Contact{}, invalid("query", "must be at most 100 characters"))
			return
		}

		after := ""
		for {
			rows, err := s.Store.Contacts().SearchContacts(ctx, p.ID, query, after, batch)
			if err != nil {
				yield(domain.Contact{}, err)
				return
			}
			for _, c := range rows {
				if !yield(c, nil) {
					return
				}
			}
			if len(rows) < batch {
				return
			}
			after = rows[len(rows)-1].ID
		}
	}
}

func (s *ContactService) clampLimit(limit int) int {
	def := s.PageSize
	if def <= 0 {
		def = DefaultPageSize
	}
	switch {
	case limit <= 0:
		limit = def
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return limit
}

func (s *ContactService) now() time.Time { return clock(s.Now) }

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (in ContactInput) normalize() ContactInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Birthday = strings.TrimSpace(in.Birthday)
	in.Note = strings.TrimSpace(in.Note)
	return in
}

func inputFromContact(c domain.Contact) ContactInput {
	in := ContactInput{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Note:      c.Note,
	}
	if c.Birthday != nil {
		in.Birthday = c.Birthday.Format(domain.DateLayout)
	}
	return in
}

func (in ContactPatchInput) normalize() ContactPatchInput {
	for _, f := range []**string{&in.FirstName, &in.LastName, &in.Email, &in.Phone, &in.Birthday, &in.Note} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	return in
}

func (in ContactPatchInput) mergeInto(base ContactInput) ContactInput {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.FirstName, in.FirstName)
	set(&base.LastName, in.LastName)
	set(&base.Email, in.Email)
	set(&base.Phone, in.Phone)
	set(&base.Birthday, in.Birthday)
	set(&base.Note, in.Note)
	return base
}

func (in ContactPatchInput) toPatch() (domain.ContactPatch, error) {
	patch := domain.ContactPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Note:      in.Note,
	}
	if in.Birthday != nil {
		bday, err := parseBirthday(*in.Birthday)
		if err != nil {
			return domain.ContactPatch{}, err
		}
		patch.Birthday = bday
		patch.ClearBirthday = bday == nil
	}
	return patch, nil
}

// parseBirthday turns YYYY-MM-DD into a UTC date; empty is no birthday.
func parseBirthday(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil, invalid("birthday", "must be a date formatted YYYY-MM-DD")
	}
	return &t, nil
}
