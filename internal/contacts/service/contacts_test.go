package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

func contactIn(first, last, email string) ContactInput {
	return ContactInput{FirstName: first, LastName: last, Email: email, Phone: "+61 400 000 000"}
}

func TestContacts_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	in := contactIn(" Grace ", "Hopper", "grace@example.com")
	in.Birthday = "1906-12-09"
	in.Note = "admiral"
	c, err := e.Contacts.Create(ctx, p, in)
	require.NoError(t, err)
	require.Equal(t, "Grace", c.FirstName)
	require.Equal(t, p.ID, c.OwnerID)
	require.NotNil(t, c.Birthday)
	require.Equal(t, "1906-12-09", c.Birthday.Format(domain.DateLayout))

	got, err := e.Contacts.Get(ctx, p, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
	require.Equal(t, "admiral", got.Note)
	require.Equal(t, "1906-12-09", got.Birthday.Format(domain.DateLayout))

	_, err = e.Contacts.Get(ctx, p, "not-an-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContacts_CreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	tests := []struct {
		name  string
		in    ContactInput
		field string
	}{
		{"missing first name", ContactInput{LastName: "Doe", Email: "j@example.com", Phone: "0400000000"}, "first_name"},
		{"bad email", contactIn("John", "Doe", "john-at-example"), "email"},
		{"bad phone", ContactInput{FirstName: "John", LastName: "Doe", Email: "j@example.com", Phone: "call me"}, "phone"},
		{"bad date", ContactInput{FirstName: "John", LastName: "Doe", Email: "j@example.com", Phone: "0400000000", Birthday: "1990-02-30"}, "birthday"},
		{"date in wrong layout", ContactInput{FirstName: "John", LastName: "Doe", Email: "j@example.com", Phone: "0400000000", Birthday: "01/02/1990"}, "birthday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Contacts.Create(ctx, p, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestContacts_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "a@example.com", "alice")
	e.verifiedUser(t, "b@example.com", "bob")
	_, alice := e.login(t, "a@example.com")
	_, bob := e.login(t, "b@example.com")

	same := contactIn("John", "Doe", "john@example.com")
	ca, err := e.Contacts.Create(ctx, alice, same)
	require.NoError(t, err)
	cb, err := e.Contacts.Create(ctx, bob, same)
	require.NoError(t, err)

	_, err = e.Contacts.Get(ctx, alice, cb.ID)
	require.ErrorIs(t, err, ErrNotFound)

	first := "Mallory"
	_, err = e.Contacts.Update(ctx, alice, cb.ID, ContactPatchInput{FirstName: &first})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, e.Contacts.Delete(ctx, alice, cb.ID), ErrNotFound)

	page, err := e.Contacts.List(ctx, alice, "", 0)
	require.NoError(t, err)
	require.Len(t, page.Contacts, 1)
	require.Equal(t, ca.ID, page.Contacts[0].ID)

	var found []string
	for c, err := range e.Contacts.Search(ctx, alice, "doe") {
		require.NoError(t, err)
		found = append(found, c.ID)
	}
	require.Equal(t, []string{ca.ID}, found)

	got, err := e.Contacts.Get(ctx, bob, cb.ID)
	require.NoError(t, err)
	require.Equal(t, "John", got.FirstName)
}

func TestContacts_UpdateReplaceDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	in := contactIn("John", "Doe", "john@example.com")
	in.Birthday = "1990-04-01"
	in.Note = "met at conf"
	c, err := e.Contacts.Create(ctx, p, in)
	require.NoError(t, err)

	phone := "+1 555 0100"
	updated, err := e.Contacts.Update(ctx, p, c.ID, ContactPatchInput{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, updated.Phone)
	require.Equal(t, "John", updated.FirstName)
	require.NotNil(t, updated.Birthday)

	empty := ""
	updated, err = e.Contacts.Update(ctx, p, c.ID, ContactPatchInput{Birthday: &empty, Note: &empty})
	require.NoError(t, err)
	require.Nil(t, updated.Birthday)
	require.Empty(t, updated.Note)

	got, err := e.Contacts.Get(ctx, p, c.ID)
	require.NoError(t, err)
	require.Nil(t, got.Birthday)
	require.Equal(t, phone, got.Phone)

	bad := "not-an-email"
	_, err = e.Contacts.Update(ctx, p, c.ID, ContactPatchInput{Email: &bad})
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.Contacts.Update(ctx, p, c.ID, ContactPatchInput{FirstName: &empty})
	require.ErrorIs(t, err, ErrValidation)

	replaced, err := e.Contacts.Replace(ctx, p, c.ID, contactIn("Jane", "Roe", "jane@example.com"))
	require.NoError(t, err)
	require.Equal(t, "Jane", replaced.FirstName)
	require.Equal(t, "jane@example.com", replaced.Email)
	require.Equal(t, c.CreatedAt.Unix(), replaced.CreatedAt.Unix())

	require.NoError(t, e.Contacts.Delete(ctx, p, c.ID))
	require.ErrorIs(t, e.Contacts.Delete(ctx, p, c.ID), ErrNotFound)
	_, err = e.Contacts.Get(ctx, p, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContacts_ListPagination(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	var ids []string
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		c, err := e.Contacts.Create(ctx, p, contactIn(name, "Test", name+"@example.com"))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	var seen []string
	cursor := ""
	pages := 0
	for {
		page, err := e.Contacts.List(ctx, p, cursor, 2)
		require.NoError(t, err)
		pages++
		for _, c := range page.Contacts {
			seen = append(seen, c.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	require.Equal(t, 3, pages)
	require.Equal(t, ids, seen)

	page, err := e.Contacts.List(ctx, p, "", 5)
	require.NoError(t, err)
	require.Len(t, page.Contacts, 5)
	require.Empty(t, page.NextCursor)

	_, err = e.Contacts.List(ctx, p, "bogus", 2)
	require.ErrorIs(t, err, ErrValidation)
}

func TestContacts_Search(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	doe, err := e.Contacts.Create(ctx, p, contactIn("John", "Doe", "jd@example.com"))
	require.NoError(t, err)
	_, err = e.Contacts.Create(ctx, p, contactIn("Jane", "Smith", "jane@example.com"))
	require.NoError(t, err)
	_, err = e.Contacts.Create(ctx, p, contactIn("Bob", "Brown", "bob@example.com"))
	require.NoError(t, err)

	for _, q := range []string{"doe", "DOE", "Doe", " dOe "} {
		t.Run(q, func(t *testing.T) {
			var got []domain.Contact
			for c, err := range e.Contacts.Search(ctx, p, q) {
				require.NoError(t, err)
				got = append(got, c)
			}
			require.Len(t, got, 1)
			require.Equal(t, doe.ID, got[0].ID)
		})
	}

	t.Run("matches email", func(t *testing.T) {
		n := 0
		for _, err := range e.Contacts.Search(ctx, p, "@EXAMPLE.com") {
			require.NoError(t, err)
			n++
		}
		require.Equal(t, 3, n)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		for _, err := range e.Contacts.Search(ctx, p, "%") {
			require.NoError(t, err)
			t.Fatal("no contact contains a percent sign")
		}
	})

	t.Run("empty query", func(t *testing.T) {
		n := 0
		for _, err := range e.Contacts.Search(ctx, p, "  ") {
			require.ErrorIs(t, err, ErrValidation)
			n++
		}
		require.Equal(t, 1, n)
	})

	t.Run("folds non-ascii case", func(t *testing.T) {
		zoe, err := e.Contacts.Create(ctx, p, contactIn("Zoë", "ÖSTERBERG", "zoe@example.com"))
		require.NoError(t, err)

		for _, q := range []string{"ÖSTERBERG", "österberg", "Österberg"} {
			var got []domain.Contact
			for c, err := range e.Contacts.Search(ctx, p, q) {
				require.NoError(t, err)
				got = append(got, c)
			}
			require.Len(t, got, 1, "query %q", q)
			require.Equal(t, zoe.ID, got[0].ID)
		}
	})
}

func TestContacts_SearchPagesLazily(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.Contacts.PageSize = 2
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	var want []string
	for _, name := range []string{"Ann", "Anna", "Annie", "Anne", "Hannah"} {
		c, err := e.Contacts.Create(ctx, p, contactIn(name, "Smith", "x@example.com"))
		require.NoError(t, err)
		want = append(want, c.ID)
	}

	seq := e.Contacts.Search(ctx, p, "ann")
	collect := func() []string {
		var ids []string
		for c, err := range seq {
			require.NoError(t, err)
			ids = append(ids, c.ID)
		}
		return ids
	}

	require.Equal(t, want, collect())
	// Ranging again starts over.
	require.Equal(t, want, collect())

	var first []string
	for c, err := range seq {
		require.NoError(t, err)
		first = append(first, c.ID)
		break
	}
	require.Equal(t, want[:1], first)
}
