package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/yukikurage/taskledger/internal/errors"
)

type TaskStatus string

const (
	TaskStatusBacklog  TaskStatus = "BACKLOG"
	TaskStatusTodo     TaskStatus = "TODO"
	TaskStatusDoing    TaskStatus = "DOING"
	TaskStatusDone     TaskStatus = "DONE"
	TaskStatusArchived TaskStatus = "ARCHIVED"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusDoing,
	TaskStatusDone,
	TaskStatusArchived,
}

type TaskPriority string

const (
	TaskPriorityCritical TaskPriority = "CRITICAL"
	TaskPriorityHigh     TaskPriority = "HIGH"
	TaskPriorityMedium   TaskPriority = "MEDIUM"
	TaskPriorityLow      TaskPriority = "LOW"
)

var TaskPriorities = []TaskPriority{
	TaskPriorityCritical,
	TaskPriorityHigh,
	TaskPriorityMedium,
	TaskPriorityLow,
}

// ParseStatus accepts a status literal in any letter case.
func ParseStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(TaskStatuses, status) {
		return "", fmt.Errorf("%w: status must be one of BACKLOG, TODO, DOING, DONE, ARCHIVED (got %q)", apierrors.ErrValidation, s)
	}
	return status, nil
}

// ParsePriority accepts a priority literal in any letter case.
func ParsePriority(s string) (TaskPriority, error) {
	priority := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(TaskPriorities, priority) {
		return "", fmt.Errorf("%w: priority must be one of CRITICAL, HIGH, MEDIUM, LOW (got %q)", apierrors.ErrValidation, s)
	}
	return priority, nil
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DefaultTaskDuration is the gap between a new task's start and end time.
const DefaultTaskDuration = 24 * time.Hour

type Task struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Assignees   []string       `json:"assignees"`
	Priority    TaskPriority   `json:"priority"`
	Status      TaskStatus     `json:"status"`
	History     []HistoryEntry `json:"history"`
	Comments    []Comment      `json:"comments"`
}

func (t *Task) IsAssignee(username string) bool {
	return slices.Contains(t.Assignees, username)
}

// HistoryEntry records one change to a task. Entries are only ever appended.
type HistoryEntry struct {
	Actor       string    `json:"username"`
	Description string    `json:"change"`
	Timestamp   time.Time `json:"timestamp"`
}

type Comment struct {
	Actor     string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
