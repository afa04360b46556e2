package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/taskledger/internal/errors"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("doing")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDoing, status)

	_, err = ParseStatus("IN_PROGRESS")
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestParsePriority(t *testing.T) {
	priority, err := ParsePriority(" Critical ")
	require.NoError(t, err)
	assert.Equal(t, TaskPriorityCritical, priority)

	_, err = ParsePriority("URGENT")
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestTaskRecordRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	task := Task{
		ID:          uuid.New(),
		Title:       "Spec",
		Description: "write it",
		StartTime:   start,
		EndTime:     start.Add(DefaultTaskDuration),
		Assignees:   []string{"bob", "carol"},
		Priority:    TaskPriorityHigh,
		Status:      TaskStatusDoing,
		History: []HistoryEntry{
			{Actor: "alice", Description: "User bob assigned to task", Timestamp: start.Add(time.Minute)},
			{Actor: "bob", Description: "Status changed from BACKLOG to DOING", Timestamp: start.Add(2 * time.Minute)},
		},
		Comments: []Comment{
			{Actor: "bob", Content: "first", Timestamp: start.Add(3 * time.Minute)},
			{Actor: "alice", Content: "second", Timestamp: start.Add(4 * time.Minute)},
		},
	}

	data, err := json.MarshalIndent(task, "", "    ")
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, task, decoded)
}

func TestTaskRecordFieldNames(t *testing.T) {
	data, err := json.Marshal(Task{
		ID:       uuid.New(),
		Priority: TaskPriorityLow,
		Status:   TaskStatusBacklog,
		History:  []HistoryEntry{{Actor: "alice", Description: "x"}},
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "title", "description", "start_time", "end_time", "assignees", "priority", "status", "history", "comments"} {
		assert.Contains(t, raw, key)
	}
	entry := raw["history"].([]any)[0].(map[string]any)
	assert.Equal(t, "alice", entry["username"])
	assert.Equal(t, "x", entry["change"])
}

func TestTaskRecordRejectsUnknownStatus(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"status":"WAITING","priority":"LOW"}`), &task)
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestProjectHelpers(t *testing.T) {
	p := NewProject("Launch", "alice")
	assert.True(t, p.IsLeader("alice"))
	assert.True(t, p.IsMember("alice"))
	assert.Empty(t, p.Tasks)

	task := Task{ID: uuid.New(), Title: "Spec"}
	p.Tasks = append(p.Tasks, task)
	require.NotNil(t, p.FindTask(task.ID))
	assert.True(t, p.RemoveTask(task.ID))
	assert.False(t, p.RemoveTask(task.ID))
	assert.Nil(t, p.FindTask(task.ID))
}
