package types

import "fmt"

// TodoStatus represents the status of a todo
type TodoStatus string

const (
	TodoStatusOpen TodoStatus = "open"
	TodoStatusDone TodoStatus = "done"
)

// AllTodoStatuses returns all valid todo statuses
func AllTodoStatuses() []TodoStatus {
	return []TodoStatus{
		TodoStatusOpen,
		TodoStatusDone,
	}
}

// IsValid checks if the todo status is valid
func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusOpen,
		TodoStatusDone:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as TodoStatusOpen.
func (s TodoStatus) Normalize() TodoStatus {
	if s == "" {
		return TodoStatusOpen
	}
	return s
}

func (s TodoStatus) String() string {
	return string(s)
}

// ParseTodoStatus parses a string into a TodoStatus
func ParseTodoStatus(s string) (TodoStatus, error) {
	status := TodoStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid todo status: %s", s)
	}
	return status, nil
}

// CreatedVia records which path created a todo
type CreatedVia string

const (
	CreatedViaManual       CreatedVia = "manual"
	CreatedViaSlackWebhook CreatedVia = "slack_webhook"
)

// IsValid checks if the origin is a known one
func (c CreatedVia) IsValid() bool {
	switch c {
	case CreatedViaManual, CreatedViaSlackWebhook:
		return true
	default:
		return false
	}
}

func (c CreatedVia) String() string {
	return string(c)
}
