package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBirthdayWindow(t *testing.T) {
	w := birthdayWindow(date(2025, time.December, 28), 7)
	require.Len(t, w, 7)
	require.Equal(t, 0, w[1228])
	require.Equal(t, 3, w[1231])
	require.Equal(t, 5, w[102])
	require.Equal(t, 6, w[103])
	require.NotContains(t, w, 104)

	t.Run("feb 29 on mar 1 in common years", func(t *testing.T) {
		w := birthdayWindow(date(2025, time.February, 27), 3)
		require.Equal(t, 2, w[301])
		require.Equal(t, 2, w[229])
	})

	t.Run("feb 29 is its own day in leap years", func(t *testing.T) {
		w := birthdayWindow(date(2028, time.February, 27), 3)
		require.Equal(t, 2, w[229])
		require.Equal(t, 1, w[228])
		require.NotContains(t, w, 301)
	})
}

func TestUpcomingBirthdays(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, p := e.login(t, "ada@example.com")

	add := func(name, bday string) domain.Contact {
		in := contactIn(name, "Test", name+"@example.com")
		in.Birthday = bday
		c, err := e.Contacts.Create(ctx, p, in)
		require.NoError(t, err)
		return c
	}

	jan2 := add("jan2", "1990-01-02")
	dec28 := add("dec28", "1985-12-28")
	jan3 := add("jan3", "2000-01-03")
	add("jan4", "2000-01-04")
	add("dec27", "1970-12-27")
	add("none", "")
	leap := add("leap", "1992-02-29")
	mar1 := add("mar1", "1991-03-01")

	names := func(cs []domain.Contact) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.FirstName)
		}
		return out
	}

	t.Run("wraps across the year end", func(t *testing.T) {
		got, err := e.Contacts.UpcomingBirthdays(ctx, p, date(2025, time.December, 28))
		require.NoError(t, err)
		require.Equal(t, []string{dec28.FirstName, jan2.FirstName, jan3.FirstName}, names(got))
	})

	t.Run("leap day observed on mar 1", func(t *testing.T) {
		got, err := e.Contacts.UpcomingBirthdays(ctx, p, date(2025, time.February, 25))
		require.NoError(t, err)
		// Same day, so ordered by id.
		require.Equal(t, []string{leap.FirstName, mar1.FirstName}, names(got))
	})

	t.Run("leap day in a leap year", func(t *testing.T) {
		got, err := e.Contacts.UpcomingBirthdays(ctx, p, date(2028, time.February, 23))
		require.NoError(t, err)
		require.Equal(t, []string{leap.FirstName}, names(got))

		got, err = e.Contacts.UpcomingBirthdays(ctx, p, date(2028, time.March, 1))
		require.NoError(t, err)
		require.Equal(t, []string{mar1.FirstName}, names(got))
	})

	t.Run("other users see nothing", func(t *testing.T) {
		e.verifiedUser(t, "bob@example.com", "bob")
		_, bob := e.login(t, "bob@example.com")
		got, err := e.Contacts.UpcomingBirthdays(ctx, bob, date(2025, time.December, 28))
		require.NoError(t, err)
		require.Empty(t, got)
	})
}
