package entity

import "time"

// Comment is created by the chat room on a valid inbound message.
// The room only appends comments; it never updates or deletes them.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	BlogID    string    `json:"blog_id" db:"blog_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
