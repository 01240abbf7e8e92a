package service

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

// DefaultBirthdayWindow is how many days UpcomingBirthdays covers, today
// included.
const DefaultBirthdayWindow = 7

// UpcomingBirthdays returns p's contacts whose birthday falls within the
// window starting at today's calendar date, ordered by how soon the
// birthday comes, then by id. The window wraps across the year end. In
// non-leap years a Feb 29 birthday is celebrated on Mar 1.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, p domain.Principal, today time.Time) ([]domain.Contact, error) {
	days := s.BirthdayWindow
	if days <= 0 {
		days = DefaultBirthdayWindow
	}

	offsets := birthdayWindow(today, days)
	rows, err := s.Store.Contacts().ListContactsByBirthday(ctx, p.ID, slices.Sorted(maps.Keys(offsets)))
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rows, func(a, b domain.Contact) int {
		return cmp.Or(
			cmp.Compare(offsets[monthDay(*a.Birthday)], offsets[monthDay(*b.Birthday)]),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return rows, nil
}

// birthdayWindow maps each month/day key (month*100+day) celebrated in the
// days starting at today to its distance from today.
func birthdayWindow(today time.Time, days int) map[int]int {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	out := make(map[int]int, days+1)
	for i := range days {
		d := start.AddDate(0, 0, i)
		out[monthDay(d)] = i
		if d.Month() == time.March && d.Day() == 1 && !isLeapYear(d.Year()) {
			out[229] = i
		}
	}
	return out
}

func monthDay(t time.Time) int { return int(t.Month())*100 + t.Day() }

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
