package models

import (
	"slices"

	"github.com/google/uuid"
)

// Project is the aggregate root: it owns its tasks and is loaded and
// persisted as one record.
type Project struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Leader  string    `json:"leader"`
	Members []string  `json:"members"`
	Tasks   []Task    `json:"tasks"`
}

// NewProject creates a project led by leader, who is also its first member.
func NewProject(title, leader string) Project {
	return Project{
		ID:      uuid.New(),
		Title:   title,
		Leader:  leader,
		Members: []string{leader},
		Tasks:   []Task{},
	}
}

func (p *Project) IsLeader(username string) bool {
	return p.Leader == username
}

func (p *Project) IsMember(username string) bool {
	return slices.Contains(p.Members, username)
}

// FindTask returns a pointer into p.Tasks, or nil.
func (p *Project) FindTask(id uuid.UUID) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// RemoveTask drops the task with the given id and reports whether it existed.
func (p *Project) RemoveTask(id uuid.UUID) bool {
	before := len(p.Tasks)
	p.Tasks = slices.DeleteFunc(p.Tasks, func(t Task) bool { return t.ID == id })
	return len(p.Tasks) != before
}

// FindProject returns the index of the project with the given id, or -1.
func FindProject(projects []Project, id uuid.UUID) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
