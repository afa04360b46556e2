package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskledger/internal/constants"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
)

// TaskField names a task attribute that Edit can replace.
type TaskField string

const (
	TaskFieldTitle       TaskField = "title"
	TaskFieldDescription TaskField = "description"
	TaskFieldStartTime   TaskField = "start_time"
	TaskFieldEndTime     TaskField = "end_time"
)

var TaskFields = []TaskField{TaskFieldTitle, TaskFieldDescription, TaskFieldStartTime, TaskFieldEndTime}

// ParseTaskField accepts "start-time" as well as "start_time".
func ParseTaskField(s string) (TaskField, error) {
	field := TaskField(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !slices.Contains(TaskFields, field) {
		return "", fmt.Errorf("%w: field must be one of title, description, start_time, end_time (got %q)", apierrors.ErrValidation, s)
	}
	return field, nil
}

// TaskService applies task mutations. It does not check permissions: the
// caller has already decided the actor may edit the task. Every applied
// change appends exactly one history entry and returns the audit line the
// caller writes once the owning project is saved.
type TaskService struct {
	now func() time.Time
}

// NewTaskService creates a new TaskService. A nil clock means time.Now.
func NewTaskService(clock func() time.Time) *TaskService {
	if clock == nil {
		clock = time.Now
	}
	return &TaskService{now: clock}
}

func (s *TaskService) timestamp() time.Time {
	return s.now().UTC()
}

// New builds a BACKLOG/LOW task running for one day from now.
func (s *TaskService) New(title, description string) models.Task {
	start := s.timestamp()
	return models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		StartTime:   start,
		EndTime:     start.Add(models.DefaultTaskDuration),
		Assignees:   []string{},
		Priority:    models.TaskPriorityLow,
		Status:      models.TaskStatusBacklog,
		History:     []models.HistoryEntry{},
		Comments:    []models.Comment{},
	}
}

func (s *TaskService) appendHistory(task *models.Task, actor, description string) {
	task.History = append(task.History, models.HistoryEntry{
		Actor:       actor,
		Description: description,
		Timestamp:   s.timestamp(),
	})
}

// ChangeStatus sets the status. Every transition is allowed, ARCHIVED
// included.
func (s *TaskService) ChangeStatus(task *models.Task, actor string, status models.TaskStatus) string {
	old := task.Status
	task.Status = status
	s.appendHistory(task, actor, fmt.Sprintf("Status changed from %s to %s", old, status))
	return fmt.Sprintf("%s changed status of task %s from %s to %s", actor, task.ID, old, status)
}

func (s *TaskService) ChangePriority(task *models.Task, actor string, priority models.TaskPriority) string {
	old := task.Priority
	task.Priority = priority
	s.appendHistory(task, actor, fmt.Sprintf("Priority changed from %s to %s", old, priority))
	return fmt.Sprintf("%s changed priority of task %s from %s to %s", actor, task.ID, old, priority)
}

// Assign adds assignee. Assigning someone already assigned changes nothing
// and returns ok=false.
func (s *TaskService) Assign(task *models.Task, actor, assignee string) (line string, ok bool) {
	if task.IsAssignee(assignee) {
		return "", false
	}
	task.Assignees = append(task.Assignees, assignee)
	s.appendHistory(task, actor, fmt.Sprintf("User %s assigned to task", assignee))
	return fmt.Sprintf("%s assigned %s to task %s", actor, assignee, task.ID), true
}

// Unassign removes assignee. Removing someone not assigned returns ok=false.
func (s *TaskService) Unassign(task *models.Task, actor, assignee string) (line string, ok bool) {
	if !task.IsAssignee(assignee) {
		return "", false
	}
	task.Assignees = slices.DeleteFunc(task.Assignees, func(u string) bool { return u == assignee })
	s.appendHistory(task, actor, fmt.Sprintf("User %s unassigned from task", assignee))
	return fmt.Sprintf("%s unassigned %s from task %s", actor, assignee, task.ID), true
}

func (s *TaskService) AddComment(task *models.Task, actor, content string) string {
	task.Comments = append(task.Comments, models.Comment{
		Actor:     actor,
		Content:   content,
		Timestamp: s.timestamp(),
	})
	s.appendHistory(task, actor, fmt.Sprintf("Comment added: %s", content))
	return fmt.Sprintf("%s added a comment to task %s: %s", actor, task.ID, content)
}

// Edit replaces one field. Times use constants.TimeLayout and are read as UTC.
func (s *TaskService) Edit(task *models.Task, actor string, field TaskField, value string) (string, error) {
	var label string
	switch field {
	case TaskFieldTitle:
		task.Title = value
		label = "title"
	case TaskFieldDescription:
		task.Description = value
		label = "description"
	case TaskFieldStartTime, TaskFieldEndTime:
		t, err := ParseTaskTime(value)
		if err != nil {
			return "", err
		}
		if field == TaskFieldStartTime {
			task.StartTime = t
			label = "start time"
		} else {
			task.EndTime = t
			label = "end time"
		}
	default:
		return "", fmt.Errorf("%w: unknown task field %q", apierrors.ErrValidation, field)
	}

	s.appendHistory(task, actor, fmt.Sprintf("Task %s changed to %s", label, value))
	return fmt.Sprintf("Task %s of %s changed to %s by %s", label, task.ID, value, actor), nil
}

// ParseTaskTime parses "YYYY-MM-DD HH:MM:SS" as UTC.
func ParseTaskTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.TimeLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time must look like YYYY-MM-DD HH:MM:SS (got %q)", apierrors.ErrValidation, value)
	}
	return t, nil
}
