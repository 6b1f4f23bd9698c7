package domain

import "time"

// Todo is a stored task row.
type Todo struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	DueAt     time.Time `json:"due_at"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskItem is the read-only view of a task used when scheduling reminders.
// A zero DueAt means the due time could not be parsed.
type TaskItem struct {
	Text  string
	DueAt time.Time
	Done  bool
}

// Snapshot is a single read of the task source.
type Snapshot struct {
	Items    []TaskItem
	Nickname string
}

// Permission is the outcome of a notification permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// Utterance is one request to the speech backend.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Pitch float64
}
