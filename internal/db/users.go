package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proajob/proajob/internal/types"
)

// GetUserByEmail returns the account with email, or nil when none exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, COALESCE(r.nombre_rol, ''), u.created_at
		 FROM users u LEFT JOIN roles r ON r.id_rol = u.id_rol
		 WHERE u.email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// UpsertUser creates or updates the account with email and returns its id.
// The role must be one of the fixed role names.
func (db *DB) UpsertUser(ctx context.Context, name, email, passwordHash, role string) (int, error) {
	var id int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, id_rol)
		 VALUES ($1, $2, $3, (SELECT id_rol FROM roles WHERE nombre_rol = $4))
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash, id_rol = EXCLUDED.id_rol
		 RETURNING id`,
		name, email, passwordHash, role,
	).Scan(&id)
	if err != nil {
		return 0, classify("failed to upsert user", err)
	}
	return id, nil
}

// ListUsersWithRoles returns every account with its role name.
func (db *DB) ListUsersWithRoles(ctx context.Context) ([]types.User, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, COALESCE(r.nombre_rol, '')
		 FROM users u LEFT JOIN roles r ON r.id_rol = u.id_rol
		 ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListRoles returns the fixed roles.
func (db *DB) ListRoles(ctx context.Context) ([]types.Role, error) {
	rows, err := db.pool.Query(ctx, `SELECT id_rol, nombre_rol FROM roles ORDER BY id_rol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []types.Role{}
	for rows.Next() {
		var r types.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
