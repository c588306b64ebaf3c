package state

import (
	"time"

	"github.com/google/uuid"
)

// MaxTasks is the number of lever tasks a day can hold.
const MaxTasks = 3

// Task is one of the day's lever tasks.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTask returns an incomplete task with a fresh id.
func NewTask(title string, createdAt time.Time) Task {
	return Task{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: createdAt,
	}
}

func indexOfTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
