package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskledger/internal/audit"
	"github.com/yukikurage/taskledger/internal/authz"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
	"github.com/yukikurage/taskledger/internal/repository"
	"github.com/yukikurage/taskledger/internal/utils"
	"go.uber.org/zap"
)

// ProjectOptions tunes membership rules.
type ProjectOptions struct {
	// AllowUnregisteredMembers skips the identity lookup in AddMember.
	AllowUnregisteredMembers bool
}

// ProjectService provides business logic for projects and the tasks they
// own. Each mutation is one read-modify-write of the projects collection;
// the audit line is written after the save succeeds.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	tasks       *TaskService
	audit       audit.Sink
	logger      *zap.Logger
	opts        ProjectOptions
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	tasks *TaskService,
	sink audit.Sink,
	logger *zap.Logger,
	opts ProjectOptions,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		tasks:       tasks,
		audit:       sink,
		logger:      logger.Named("projects"),
		opts:        opts,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	Status   *models.TaskStatus
	Assignee string
	Page     int
	PageSize int
}

// Create creates a project led by actor.
func (s *ProjectService) Create(ctx context.Context, actor *models.User, title string) (*models.Project, error) {
	if err := authz.RequireActive(actor); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: project title cannot be empty", apierrors.ErrValidation)
	}

	project := models.NewProject(title, actor.Username)
	if err := s.projectRepo.Create(ctx, &project); err != nil {
		return nil, wrap("create project", err)
	}

	s.record("Project %s created by user %s", project.ID, actor.Username)
	return &project, nil
}

// ListProjects returns the projects actor is a member of.
func (s *ProjectService) ListProjects(ctx context.Context, actor *models.User) ([]models.Project, error) {
	if err := authz.RequireActive(actor); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListByMember(ctx, actor.Username)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	return projects, nil
}

// GetProject returns a project to one of its members.
func (s *ProjectService) GetProject(ctx context.Context, actor *models.User, projectID uuid.UUID) (*models.Project, error) {
	if err := authz.RequireActive(actor); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, wrap("find project", err)
	}
	if err := authz.RequireMember(project, actor.Username); err != nil {
		return nil, err
	}
	return project, nil
}

// AddMember adds username to the project. Leader only.
func (s *ProjectService) AddMember(ctx context.Context, actor *models.User, projectID uuid.UUID, username string) error {
	if err := authz.RequireActive(actor); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", apierrors.ErrValidation)
	}
	if !s.opts.AllowUnregisteredMembers {
		if _, err := s.userRepo.FindByUsername(ctx, username); err != nil {
			return wrap("find user", err)
		}
	}

	err := s.projectRepo.Update(ctx, projectID, func(p *models.Project) error {
		if err := authz.RequireLeader(p, actor.Username); err != nil {
			return err
		}
		if p.IsMember(username) {
			return fmt.Errorf("%w: %s", apierrors.ErrAlreadyMember, username)
		}
		p.Members = append(p.Members, username)
		return nil
	})
	if err != nil {
		return wrap("add member", err)
	}

	s.record("User %s added to project %s by %s", username, projectID, actor.Username)
	return nil
}

// RemoveMember removes username from the project. Leader only; the leader
// cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, actor *models.User, projectID uuid.UUID, username string) error {
	if err := authz.RequireActive(actor); err != nil {
		return err
	}

	err := s.projectRepo.Update(ctx, projectID, func(p *models.Project) error {
		if err := authz.RequireLeader(p, actor.Username); err != nil {
			return err
		}
		if p.IsLeader(username) {
			return fmt.Errorf("%w: %s", apierrors.ErrCannotRemoveLeader, username)
		}
		if !p.IsMember(username) {
			return fmt.Errorf("%w: %s", apierrors.ErrNotMember, username)
		}
		p.Members = slices.DeleteFunc(p.Members, func(m string) bool { return m == username })
		return nil
	})
	if err != nil {
		return wrap("remove member", err)
	}

	s.record("User %s removed from project %s by %s", username, projectID, actor.Username)
	return nil
}

// Delete removes the project and all its tasks. Leader only.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, projectID uuid.UUID) error {
	if err := authz.RequireActive(actor); err != nil {
		return err
	}

	err := s.projectRepo.Delete(ctx, projectID, func(p *models.Project) error {
		return authz.RequireLeader(p, actor.Username)
	})
	if err != nil {
		return wrap("delete project", err)
	}

	s.record("Project %s deleted by user %s", projectID, actor.Username)
	return nil
}

// CreateTask appends a new task to the project. Leader only.
func (s *ProjectService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if err := authz.RequireActive(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title cannot be empty", apierrors.ErrValidation)
	}

	task := s.tasks.New(title, input.Description)
	err := s.projectRepo.Update(ctx, input.ProjectID, func(p *models.Project) error {
		if err := authz.RequireLeader(p, actor.Username); err != nil {
			return err
		}
		p.Tasks = append(p.Tasks, task)
		return nil
	})
	if err != nil {
		return nil, wrap("create task", err)
	}

	s.record("Task %s created by user %s in project %s", task.ID, actor.Username, input.ProjectID)
	return &task, nil
}

// DeleteTask removes a task from the project. Leader only.
func (s *ProjectService) DeleteTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) error {
	if err := authz.RequireActive(actor); err != nil {
		return err
	}

	err := s.projectRepo.Update(ctx, projectID, func(p *models.Project) error {
		if err := authz.RequireLeader(p, actor.Username); err != nil {
			return err
		}
		if !p.RemoveTask(taskID) {
			return fmt.Errorf("%w: %s", apierrors.ErrTaskNotFound, taskID)
		}
		return nil
	})
	if err != nil {
		return wrap("delete task", err)
	}

	s.record("Task %s deleted by %s in project %s", taskID, actor.Username, projectID)
	return nil
}

// ListTasks returns one page of the project's tasks matching filter, plus
// the number of matches before paging.
func (s *ProjectService) ListTasks(ctx context.Context, actor *models.User, projectID uuid.UUID, filter TaskFilter) ([]models.Task, utils.PaginationResponse, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, utils.PaginationResponse{}, err
	}

	matched := make([]models.Task, 0, len(project.Tasks))
	for _, t := range project.Tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Assignee != "" && !t.IsAssignee(filter.Assignee) {
			continue
		}
		matched = append(matched, t)
	}

	page := utils.NewPaginationParams(filter.Page, filter.PageSize)
	return utils.Paginate(matched, page), page.Response(len(matched)), nil
}

// GetTask returns one task to a project member.
func (s *ProjectService) GetTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID) (*models.Task, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	task := project.FindTask(taskID)
	if task == nil {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrTaskNotFound, taskID)
	}
	return task, nil
}

// ChangeStatus sets a task's status. Leader or assignee.
func (s *ProjectService) ChangeStatus(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(_ *models.Project, t *models.Task) (string, error) {
		return s.tasks.ChangeStatus(t, actor.Username, status), nil
	})
}

// ChangePriority sets a task's priority. Leader or assignee.
func (s *ProjectService) ChangePriority(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, priority models.TaskPriority) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(_ *models.Project, t *models.Task) (string, error) {
		return s.tasks.ChangePriority(t, actor.Username, priority), nil
	})
}

// Assign adds a project member to the task's assignees. Assigning someone
// already assigned is a silent no-op.
func (s *ProjectService) Assign(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, assignee string) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(p *models.Project, t *models.Task) (string, error) {
		if !p.IsMember(assignee) {
			return "", fmt.Errorf("%w: %s", apierrors.ErrNotMember, assignee)
		}
		line, _ := s.tasks.Assign(t, actor.Username, assignee)
		return line, nil
	})
}

// Unassign removes someone from the task's assignees. Unassigning someone
// not assigned is a silent no-op.
func (s *ProjectService) Unassign(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, assignee string) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(_ *models.Project, t *models.Task) (string, error) {
		line, _ := s.tasks.Unassign(t, actor.Username, assignee)
		return line, nil
	})
}

// AddComment appends a comment. Leader or assignee.
func (s *ProjectService) AddComment(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, content string) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(_ *models.Project, t *models.Task) (string, error) {
		return s.tasks.AddComment(t, actor.Username, content), nil
	})
}

// EditTask replaces one task field. Leader or assignee.
func (s *ProjectService) EditTask(ctx context.Context, actor *models.User, projectID, taskID uuid.UUID, field TaskField, value string) (*models.Task, error) {
	return s.mutateTask(ctx, actor, projectID, taskID, func(_ *models.Project, t *models.Task) (string, error) {
		return s.tasks.Edit(t, actor.Username, field, value)
	})
}

// mutateTask loads the project, checks that actor may edit the task and
// applies fn. An empty audit line from fn means nothing changed and the
// save is skipped.
func (s *ProjectService) mutateTask(
	ctx context.Context,
	actor *models.User,
	projectID, taskID uuid.UUID,
	fn func(*models.Project, *models.Task) (string, error),
) (*models.Task, error) {
	if err := authz.RequireActive(actor); err != nil {
		return nil, err
	}

	var (
		line   string
		result models.Task
	)
	err := s.projectRepo.Update(ctx, projectID, func(p *models.Project) error {
		if err := authz.RequireMember(p, actor.Username); err != nil {
			return err
		}
		task := p.FindTask(taskID)
		if task == nil {
			return fmt.Errorf("%w: %s", apierrors.ErrTaskNotFound, taskID)
		}
		if err := authz.RequireTaskEditor(p, task, actor.Username); err != nil {
			return err
		}

		l, err := fn(p, task)
		if err != nil {
			return err
		}
		line = l
		result = *task
		if line == "" {
			return repository.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		return nil, wrap("update task", err)
	}

	if line != "" {
		s.record("%s", line)
	}
	return &result, nil
}

func (s *ProjectService) record(format string, args ...any) {
	if err := audit.Recordf(s.audit, format, args...); err != nil {
		s.logger.Error("failed to write audit log", zap.Error(err))
	}
}
