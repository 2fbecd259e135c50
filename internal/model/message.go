package model

import "time"

// Message represents an inbound message submitted via the public contact form.
// The dashboard only reads messages.
type Message struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"is_read"`
}

// Status returns the label shown in the inbox status column.
func (m Message) Status() string {
	if m.Read {
		return "read"
	}
	return "new"
}
