package models

import "time"

// Chat exists iff its request exists; participants are the request's
// user and assigned mechanic.
type Chat struct {
	ID            string     `json:"id"`
	RequestID     string     `json:"request_id"`
	Participants  []string   `json:"participants"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Unread        int        `json:"unread"`
}

type Message struct {
	ID          string        `json:"id"`
	ChatID      string        `json:"chat_id"`
	SenderID    string        `json:"sender_id"`
	Body        string        `json:"body,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	SentAt      time.Time     `json:"sent_at"`
	ReadBy      []ReadReceipt `json:"read_by,omitempty"`
}

type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type ReadReceipt struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// ReadBy reports whether the message carries a read receipt for the
// given user.
func (m *Message) ReadByUser(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
