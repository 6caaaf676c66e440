package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// CreateRoom inserts a room owned by adminID. The slug is the client-facing
// room identifier.
func (p *Postgres) CreateRoom(ctx context.Context, slug, adminID string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO rooms (slug, admin_id)
		VALUES ($1, $2)
		RETURNING id, slug, admin_id, created_at
	`, slug, adminID)

	var rm Room
	if err := row.Scan(&rm.ID, &rm.Slug, &rm.AdminID, &rm.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return Room{}, ErrRoomExists
		}
		return Room{}, err
	}
	return rm, nil
}

// GetRoomBySlug fetches room metadata by slug
func (p *Postgres) GetRoomBySlug(ctx context.Context, slug string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, slug, admin_id, created_at
		FROM rooms
		WHERE slug = $1
	`, slug)

	var rm Room
	if err := row.Scan(&rm.ID, &rm.Slug, &rm.AdminID, &rm.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, err
	}
	return rm, nil
}

// ListRooms returns rooms sorted by creation time, newest first
func (p *Postgres) ListRooms(ctx context.Context, limit, offset int) ([]Room, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, slug, admin_id, created_at
		FROM rooms
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Slug, &rm.AdminID, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}
