package dto

import (
	"strconv"

	"github.com/yukikurage/taskledger/internal/models"
)

// Project roles as shown to a member
const (
	RoleLeader = "Leader"
	RoleMember = "Member"
)

// UserDTO represents a user without credentials
type UserDTO struct {
	Username string      `json:"username" yaml:"username"`
	Email    string      `json:"email,omitempty" yaml:"email,omitempty"`
	Role     models.Role `json:"role" yaml:"role"`
	Active   bool        `json:"active" yaml:"active"`
}

// ProjectListItemDTO is one row of a member's project list
type ProjectListItemDTO struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Leader  string `json:"leader" yaml:"leader"`
	Role    string `json:"role" yaml:"role"`
	Members int    `json:"members" yaml:"members"`
	Tasks   int    `json:"tasks" yaml:"tasks"`
}

// ProjectListDTO represents the projects a user belongs to
type ProjectListDTO struct {
	Projects []ProjectListItemDTO `json:"projects" yaml:"projects"`
}

// ProjectDTO represents a project with its members
type ProjectDTO struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Leader  string   `json:"leader" yaml:"leader"`
	Members []string `json:"members" yaml:"members"`
	Tasks   int      `json:"tasks" yaml:"tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Active:   user.Active,
	}
}

// ToProjectListDTO converts projects to list rows, with viewer's role in each
func ToProjectListDTO(projects []models.Project, viewer string) ProjectListDTO {
	items := make([]ProjectListItemDTO, len(projects))
	for i, p := range projects {
		role := RoleMember
		if p.IsLeader(viewer) {
			role = RoleLeader
		}
		items[i] = ProjectListItemDTO{
			ID:      p.ID.String(),
			Title:   p.Title,
			Leader:  p.Leader,
			Role:    role,
			Members: len(p.Members),
			Tasks:   len(p.Tasks),
		}
	}
	return ProjectListDTO{Projects: items}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:      project.ID.String(),
		Title:   project.Title,
		Leader:  project.Leader,
		Members: append([]string{}, project.Members...),
		Tasks:   len(project.Tasks),
	}
}

func (d UserDTO) Header() []string {
	return []string{"USERNAME", "EMAIL", "ROLE", "ACTIVE"}
}

func (d UserDTO) Rows() [][]string {
	return [][]string{{d.Username, d.Email, string(d.Role), strconv.FormatBool(d.Active)}}
}

func (d ProjectListDTO) Header() []string {
	return []string{"#", "ID", "TITLE", "LEADER", "ROLE", "MEMBERS", "TASKS"}
}

func (d ProjectListDTO) Rows() [][]string {
	rows := make([][]string, len(d.Projects))
	for i, p := range d.Projects {
		rows[i] = []string{
			strconv.Itoa(i + 1), p.ID, p.Title, p.Leader, p.Role,
			strconv.Itoa(p.Members), strconv.Itoa(p.Tasks),
		}
	}
	return rows
}

func (d ProjectDTO) Header() []string {
	return []string{"FIELD", "VALUE"}
}

func (d ProjectDTO) Rows() [][]string {
	return [][]string{
		{"id", d.ID},
		{"title", d.Title},
		{"leader", d.Leader},
		{"members", joinNames(d.Members)},
		{"tasks", strconv.Itoa(d.Tasks)},
	}
}
