package service

import "streaksage/internal/domain"

// Event types pushed to live subscribers.
const (
	EventTaskCreated     = "task_created"
	EventTaskUpdated     = "task_updated"
	EventTaskDeleted     = "task_deleted"
	EventTaskCompleted   = "task_completed"
	EventProgressUpdated = "progress_updated"
	EventReflectionSaved = "reflection_saved"
)

// Publisher fans events out to live subscribers. Publish must not block.
type Publisher interface {
	Publish(eventType string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// ProgressEvent is the payload of EventProgressUpdated.
type ProgressEvent struct {
	Progress *domain.StreakHistory `json:"progress"`
	// User is set only when the completion made the day perfect.
	User *domain.User `json:"user,omitempty"`
}
