package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskledger/internal/models"
	"github.com/yukikurage/taskledger/internal/utils"
)

func testProject() models.Project {
	p := models.NewProject("Launch", "alice")
	p.Members = append(p.Members, "bob")
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, spec := range []struct {
		title  string
		status models.TaskStatus
	}{
		{"Draft spec", models.TaskStatusDoing},
		{"Review", models.TaskStatusBacklog},
		{"Plan", models.TaskStatusBacklog},
	} {
		p.Tasks = append(p.Tasks, models.Task{
			Title:     spec.title,
			Status:    spec.status,
			Priority:  models.TaskPriorityLow,
			StartTime: start,
			EndTime:   start.Add(24 * time.Hour),
		})
	}
	return p
}

func TestToProjectListDTO_Role(t *testing.T) {
	p := testProject()

	asLeader := ToProjectListDTO([]models.Project{p}, "alice")
	require.Len(t, asLeader.Projects, 1)
	assert.Equal(t, RoleLeader, asLeader.Projects[0].Role)
	assert.Equal(t, 2, asLeader.Projects[0].Members)
	assert.Equal(t, 3, asLeader.Projects[0].Tasks)

	asMember := ToProjectListDTO([]models.Project{p}, "bob")
	assert.Equal(t, RoleMember, asMember.Projects[0].Role)
	assert.Equal(t, "1", asMember.Rows()[0][0])
}

func TestToBoardDTO(t *testing.T) {
	board := ToBoardDTO(testProject())

	assert.Equal(t, []string{"BACKLOG", "TODO", "DOING", "DONE", "ARCHIVED"}, board.Header())
	require.Len(t, board.Columns, 5)
	assert.Len(t, board.Columns[0].Tasks, 2)
	assert.Empty(t, board.Columns[1].Tasks)
	assert.Len(t, board.Columns[2].Tasks, 1)

	rows := board.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Review", "", "Draft spec", "", ""}, rows[0])
	assert.Equal(t, []string{"Plan", "", "", "", ""}, rows[1])
}

func TestToTaskDTO(t *testing.T) {
	task := testProject().Tasks[0]
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	task.Assignees = []string{"bob"}
	task.History = []models.HistoryEntry{{Actor: "alice", Description: "User bob assigned to task", Timestamp: ts}}
	task.Comments = []models.Comment{{Actor: "bob", Content: "on it", Timestamp: ts}}

	d := ToTaskDTO(task)
	assert.Equal(t, "alice", d.History[0].Username)
	assert.Equal(t, "on it", d.Comments[0].Content)

	rows := d.Rows()
	assert.Contains(t, rows, []string{"start", "2024-05-01 09:00:00"})
	assert.Contains(t, rows, []string{"assignees", "bob"})
	assert.Contains(t, rows, []string{"comment", "2024-05-01 10:00:00 bob: on it"})
}

func TestTaskListResponse_RowsNumberAcrossPages(t *testing.T) {
	p := testProject()
	resp := ToTaskListResponse(p.Tasks[2:], utils.PaginationResponse{Page: 2, Limit: 2, Total: 3})

	rows := resp.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0][0])
	assert.Equal(t, "-", rows[0][5])
}
