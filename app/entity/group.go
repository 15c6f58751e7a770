package entity

import "time"

type Group struct {
	ID          uint64
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Document struct {
	ID        uint64
	GroupID   uint64
	SenderID  uint64
	URL       string
	FileName  string
	FileExt   string
	CreatedAt time.Time
}
