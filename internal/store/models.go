package store

import "time"

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

type Room struct {
	ID        string
	Slug      string
	AdminID   string
	CreatedAt time.Time
}
