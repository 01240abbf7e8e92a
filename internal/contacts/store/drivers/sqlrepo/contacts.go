package sqlrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
)

const contactColumns = `id, owner_id, first_name, last_name, email, phone, birthday,
	note, created_at, updated_at`

type contactRow struct {
	ID        string         `db:"id"`
	OwnerID   string         `db:"owner_id"`
	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	Email     string         `db:"email"`
	Phone     string         `db:"phone"`
	Birthday  sql.NullTime   `db:"birthday"`
	Note      sql.NullString `db:"note"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r contactRow) domain() domain.Contact {
	c := domain.Contact{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Note:      r.Note.String,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.Birthday.Valid {
		y, m, d := r.Birthday.Time.Date()
		b := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		c.Birthday = &b
	}
	return c
}

func mapContacts(rows []contactRow) []domain.Contact {
	out := make([]domain.Contact, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out
}

// birthdayArgs returns the stored date and its month*100+day key.
func birthdayArgs(b *time.Time) (sql.NullTime, sql.NullInt64) {
	if b == nil {
		return sql.NullTime{}, sql.NullInt64{}
	}
	y, m, d := b.Date()
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true},
		sql.NullInt64{Int64: int64(m)*100 + int64(d), Valid: true}
}

type contactsRepo struct {
	ext sqlx.ExtContext
	d   Dialect
}

func (r *contactsRepo) CreateContact(ctx context.Context, c domain.Contact) error {
	bday, mmdd := birthdayArgs(c.Birthday)
	_, err := r.ext.ExecContext(ctx, r.ext.Rebind(`
		INSERT INTO contacts (`+contactColumns+`, birth_mmdd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.OwnerID, c.FirstName, c.LastName, c.Email, c.Phone, bday,
		nullString(c.Note), c.CreatedAt.UTC(), c.UpdatedAt.UTC(), mmdd,
	)
	return err
}

func (r *contactsRepo) GetContact(ctx context.Context, ownerID, id string) (domain.Contact, error) {
	var row contactRow
	q := r.ext.Rebind(`SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = ? AND id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &row, q, ownerID, id); err != nil {
		return domain.Contact{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *contactsRepo) UpdateContact(ctx context.Context, c domain.Contact) error {
	bday, mmdd := birthdayArgs(c.Birthday)
	return requireOne(r.ext.ExecContext(ctx, r.ext.Rebind(`
		UPDATE contacts
		SET first_name = ?, last_name = ?, email = ?, phone = ?, birthday = ?,
		    birth_mmdd = ?, note = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`),
		c.FirstName, c.LastName, c.Email, c.Phone, bday,
		mmdd, nullString(c.Note), c.UpdatedAt.UTC(),
		c.OwnerID, c.ID,
	))
}

func (r *contactsRepo) DeleteContact(ctx context.Context, ownerID, id string) error {
	return requireOne(r.ext.ExecContext(ctx,
		r.ext.Rebind(`DELETE FROM contacts WHERE owner_id = ? AND id = ?`),
		ownerID, id,
	))
}

func (r *contactsRepo) ListContacts(ctx context.Context, ownerID, after string, limit int) ([]domain.Contact, error) {
	return r.SearchContacts(ctx, ownerID, "", after, limit)
}

func (r *contactsRepo) SearchContacts(
	ctx context.Context,
	ownerID, query, after string,
	limit int,
) ([]domain.Contact, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = ? AND id > ?`)
	args := []any{ownerID, after}

	if query = strings.TrimSpace(query); query != "" {
		pat := "%" + escapeLike(strings.ToLower(query)) + "%"
		lower := r.d.lower()
		b.WriteString(` AND (` + lower + `(first_name) LIKE ? ESCAPE '\'` +
			` OR ` + lower + `(last_name) LIKE ? ESCAPE '\'` +
			` OR ` + lower + `(email) LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat)
	}

	b.WriteString(` ORDER BY id LIMIT ?`)
	args = append(args, limit)

	var rows []contactRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(b.String()), args...); err != nil {
		return nil, err
	}
	return mapContacts(rows), nil
}

func (r *contactsRepo) ListContactsByBirthday(
	ctx context.Context,
	ownerID string,
	monthDays []int,
) ([]domain.Contact, error) {
	if len(monthDays) == 0 {
		return nil, nil
	}

	q, args, err := sqlx.In(
		`SELECT `+contactColumns+` FROM contacts WHERE owner_id = ? AND birth_mmdd IN (?) ORDER BY id`,
		ownerID, monthDays,
	)
	if err != nil {
		return nil, err
	}

	var rows []contactRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(q), args...); err != nil {
		return nil, err
	}
	return mapContacts(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
