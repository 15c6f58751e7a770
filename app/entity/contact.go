package entity

import "time"

type Contact struct {
	ID        uint64
	OwnerID   uint64
	Name      string
	Email     string
	Phone     string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}
