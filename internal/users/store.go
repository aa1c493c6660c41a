package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/samber/lo"
)

const tableName = "users"

const selectColumns = `id, email, username, birthdate, city, password, enabled, created_at, updated_at`

// User is a row read back from the users table.
type User struct {
	ID        int64
	Email     string
	Username  string
	Birthdate sql.NullTime
	City      string
	Password  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser describes an insert. Nil fields are left out of the statement so
// the database applies its own default or constraint. Values are always
// bound as parameters, malformed ones included.
type NewUser struct {
	Email     *string
	Username  *string
	Birthdate *string
	City      *string
	Password  *string
	Enabled   *bool
}

type column struct {
	name  string
	value any
}

func (u NewUser) columns() []column {
	var cols []column
	add := func(name string, set bool, value func() any) {
		if set {
			cols = append(cols, column{name: name, value: value()})
		}
	}
	add("email", u.Email != nil, func() any { return *u.Email })
	add("username", u.Username != nil, func() any { return *u.Username })
	add("birthdate", u.Birthdate != nil, func() any { return *u.Birthdate })
	add("city", u.City != nil, func() any { return *u.City })
	add("password", u.Password != nil, func() any { return *u.Password })
	add("enabled", u.Enabled != nil, func() any { return *u.Enabled })
	return cols
}

// Store runs parameterized statements against the users table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func buildInsert(u NewUser, returning bool) (string, []any) {
	cols := u.columns()
	if len(cols) == 0 {
		query := `INSERT INTO ` + pq.QuoteIdentifier(tableName) + ` DEFAULT VALUES`
		if returning {
			query += ` RETURNING ` + selectColumns
		}
		return query, nil
	}

	names := lo.Map(cols, func(c column, _ int) string { return pq.QuoteIdentifier(c.name) })
	placeholders := lo.Map(cols, func(_ column, i int) string { return fmt.Sprintf("$%d", i+1) })
	args := lo.Map(cols, func(c column, _ int) any { return c.value })

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		pq.QuoteIdentifier(tableName),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
	if returning {
		query += ` RETURNING ` + selectColumns
	}
	return query, args
}

// Insert returns the number of affected rows.
func (s *Store) Insert(ctx context.Context, u NewUser) (int64, error) {
	query, args := buildInsert(u, false)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert user: rows affected: %w", err)
	}
	return affected, nil
}

// InsertReturning inserts u and returns the stored row, defaults included.
func (s *Store) InsertReturning(ctx context.Context, u NewUser) (User, error) {
	query, args := buildInsert(u, true)
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM `+pq.QuoteIdentifier(tableName)+` WHERE email = $1 ORDER BY id LIMIT 1`,
		email,
	)
	user, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM `+pq.QuoteIdentifier(tableName)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+pq.QuoteIdentifier(tableName)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE `+pq.QuoteIdentifier(tableName)); err != nil {
		return fmt.Errorf("truncate users: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Birthdate,
		&u.City,
		&u.Password,
		&u.Enabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
