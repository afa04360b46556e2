package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/taskledger/internal/constants"
	"github.com/yukikurage/taskledger/internal/models"
	"github.com/yukikurage/taskledger/internal/utils"
)

// HistoryEntryDTO represents one task change
type HistoryEntryDTO struct {
	Username  string    `json:"username" yaml:"username"`
	Change    string    `json:"change" yaml:"change"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// CommentDTO represents a task comment
type CommentDTO struct {
	Username  string    `json:"username" yaml:"username"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// TaskDTO represents a task with its history and comments
type TaskDTO struct {
	ID          string              `json:"id" yaml:"id"`
	Title       string              `json:"title" yaml:"title"`
	Description string              `json:"description" yaml:"description"`
	Status      models.TaskStatus   `json:"status" yaml:"status"`
	Priority    models.TaskPriority `json:"priority" yaml:"priority"`
	StartTime   time.Time           `json:"start_time" yaml:"start_time"`
	EndTime     time.Time           `json:"end_time" yaml:"end_time"`
	Assignees   []string            `json:"assignees" yaml:"assignees"`
	History     []HistoryEntryDTO   `json:"history" yaml:"history"`
	Comments    []CommentDTO        `json:"comments" yaml:"comments"`
}

// TaskListItemDTO represents a task in list output (minimal data)
type TaskListItemDTO struct {
	ID        string              `json:"id" yaml:"id"`
	Title     string              `json:"title" yaml:"title"`
	Status    models.TaskStatus   `json:"status" yaml:"status"`
	Priority  models.TaskPriority `json:"priority" yaml:"priority"`
	Assignees []string            `json:"assignees" yaml:"assignees"`
	EndTime   time.Time           `json:"end_time" yaml:"end_time"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO        `json:"tasks" yaml:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination" yaml:"pagination"`
}

// BoardColumnDTO holds the tasks in one status
type BoardColumnDTO struct {
	Status models.TaskStatus `json:"status" yaml:"status"`
	Tasks  []TaskListItemDTO `json:"tasks" yaml:"tasks"`
}

// BoardDTO groups a project's tasks by status, in board order
type BoardDTO struct {
	Project string           `json:"project" yaml:"project"`
	Columns []BoardColumnDTO `json:"columns" yaml:"columns"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		StartTime:   task.StartTime,
		EndTime:     task.EndTime,
		Assignees:   append([]string{}, task.Assignees...),
		History:     make([]HistoryEntryDTO, len(task.History)),
		Comments:    make([]CommentDTO, len(task.Comments)),
	}
	for i, h := range task.History {
		dto.History[i] = HistoryEntryDTO{Username: h.Actor, Change: h.Description, Timestamp: h.Timestamp}
	}
	for i, c := range task.Comments {
		dto.Comments[i] = CommentDTO{Username: c.Actor, Content: c.Content, Timestamp: c.Timestamp}
	}
	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:        task.ID.String(),
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		Assignees: append([]string{}, task.Assignees...),
		EndTime:   task.EndTime,
	}
}

// ToTaskListResponse converts one page of tasks
func ToTaskListResponse(tasks []models.Task, page utils.PaginationResponse) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, t := range tasks {
		items[i] = ToTaskListItemDTO(t)
	}
	return TaskListResponse{Tasks: items, Pagination: page}
}

// ToBoardDTO places every task in its status column. Columns are always
// present, even when empty.
func ToBoardDTO(project models.Project) BoardDTO {
	board := BoardDTO{
		Project: project.Title,
		Columns: make([]BoardColumnDTO, len(models.TaskStatuses)),
	}
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		board.Columns[i] = BoardColumnDTO{Status: status, Tasks: []TaskListItemDTO{}}
		index[status] = i
	}
	for _, t := range project.Tasks {
		i := index[t.Status]
		board.Columns[i].Tasks = append(board.Columns[i].Tasks, ToTaskListItemDTO(t))
	}
	return board
}

func (d TaskDTO) Header() []string {
	return []string{"FIELD", "VALUE"}
}

func (d TaskDTO) Rows() [][]string {
	rows := [][]string{
		{"id", d.ID},
		{"title", d.Title},
		{"description", d.Description},
		{"status", string(d.Status)},
		{"priority", string(d.Priority)},
		{"start", d.StartTime.Format(constants.TimeLayout)},
		{"end", d.EndTime.Format(constants.TimeLayout)},
		{"assignees", joinNames(d.Assignees)},
	}
	for _, h := range d.History {
		rows = append(rows, []string{"history", h.Timestamp.Format(constants.TimeLayout) + " " + h.Username + ": " + h.Change})
	}
	for _, c := range d.Comments {
		rows = append(rows, []string{"comment", c.Timestamp.Format(constants.TimeLayout) + " " + c.Username + ": " + c.Content})
	}
	return rows
}

func (d TaskListResponse) Header() []string {
	return []string{"#", "ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEES", "END"}
}

func (d TaskListResponse) Rows() [][]string {
	offset := (d.Pagination.Page - 1) * d.Pagination.Limit
	if offset < 0 {
		offset = 0
	}
	rows := make([][]string, len(d.Tasks))
	for i, t := range d.Tasks {
		rows[i] = []string{
			strconv.Itoa(offset + i + 1), t.ID, t.Title, string(t.Status), string(t.Priority),
			joinNames(t.Assignees), t.EndTime.Format(constants.TimeLayout),
		}
	}
	return rows
}

func (d BoardDTO) Header() []string {
	header := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = string(c.Status)
	}
	return header
}

// Rows lays the columns out side by side, one task title per cell.
func (d BoardDTO) Rows() [][]string {
	depth := 0
	for _, c := range d.Columns {
		depth = max(depth, len(c.Tasks))
	}
	rows := make([][]string, depth)
	for r := range rows {
		rows[r] = make([]string, len(d.Columns))
		for i, c := range d.Columns {
			if r < len(c.Tasks) {
				rows[r][i] = c.Tasks[r].Title
			}
		}
	}
	return rows
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
