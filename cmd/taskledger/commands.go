package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskledger/internal/app"
	"github.com/yukikurage/taskledger/internal/dto"
	"github.com/yukikurage/taskledger/internal/models"
	"github.com/yukikurage/taskledger/internal/render"
	"github.com/yukikurage/taskledger/internal/services"
)

type cmdEnv struct {
	app    *app.App
	out    io.Writer
	format string
}

func (e *cmdEnv) render(v any) error {
	return render.Render(e.out, e.format, v)
}

func (e *cmdEnv) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format+"\n", args...)
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *cmdEnv, args []string) error
}

var commands = []command{
	{"register", "create a user account", cmdRegister},
	{"create-admin", "create an admin (no --user needed for the first one)", cmdCreateAdmin},
	{"deactivate-user", "admin: block a user from logging in", cmdSetActive(false)},
	{"activate-user", "admin: let a deactivated user log in again", cmdSetActive(true)},
	{"purge-data", "admin: delete every user, project and audit line", cmdPurge},
	{"create-project", "create a project you lead", cmdCreateProject},
	{"projects", "list your projects with your role", cmdProjects},
	{"project", "show a project and its members", cmdProject},
	{"board", "show a project's tasks by status", cmdBoard},
	{"add-member", "leader: add a user to a project", cmdAddMember},
	{"remove-member", "leader: remove a user from a project", cmdRemoveMember},
	{"delete-project", "leader: delete a project and its tasks", cmdDeleteProject},
	{"create-task", "leader: add a task to a project", cmdCreateTask},
	{"delete-task", "leader: delete a task", cmdDeleteTask},
	{"tasks", "list a project's tasks", cmdTasks},
	{"task", "show a task with history and comments", cmdTask},
	{"set-status", "change a task's status", cmdSetStatus},
	{"set-priority", "change a task's priority", cmdSetPriority},
	{"assign", "assign a project member to a task", cmdAssign},
	{"unassign", "remove an assignee from a task", cmdUnassign},
	{"comment", "comment on a task", cmdComment},
	{"edit-task", "change a task's title, description, start_time or end_time", cmdEditTask},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// flags wraps a FlagSet with the --user/--password pair every
// authenticated command takes.
type flags struct {
	*flag.FlagSet
	user     *string
	password *string
}

func newFlags(name string, withAuth bool) *flags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &flags{FlagSet: fs}
	if withAuth {
		f.user = fs.String("user", "", "username to act as")
		f.password = fs.String("password", "", "password of --user")
	}
	return f
}

func (f *flags) parse(args []string) error {
	if err := f.Parse(args); err != nil {
		return usagef("%s: %v", f.Name(), err)
	}
	if f.NArg() != 0 {
		return usagef("%s: unexpected arguments: %q", f.Name(), strings.Join(f.Args(), " "))
	}
	return nil
}

func (f *flags) login(ctx context.Context, e *cmdEnv) (*models.User, error) {
	if *f.user == "" {
		return nil, usagef("%s: --user is required", f.Name())
	}
	return e.app.Auth.Authenticate(ctx, *f.user, *f.password)
}

func required(cmd, flagName, value string) error {
	if strings.TrimSpace(value) == "" {
		return usagef("%s: --%s is required", cmd, flagName)
	}
	return nil
}

func parseID(cmd, flagName, value string) (uuid.UUID, error) {
	if err := required(cmd, flagName, value); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, usagef("%s: --%s must be a UUID: %v", cmd, flagName, err)
	}
	return id, nil
}

func cmdRegister(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("register", false)
	username := f.String("user", "", "new username")
	email := f.String("email", "", "email address")
	password := f.String("password", "", "new password")
	if err := f.parse(args); err != nil {
		return err
	}

	user, err := e.app.Auth.Register(ctx, services.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	return e.render(dto.ToUserDTO(*user))
}

func cmdCreateAdmin(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("create-admin", true)
	username := f.String("username", "", "new admin username")
	newPassword := f.String("new-password", "", "new admin password")
	if err := f.parse(args); err != nil {
		return err
	}

	var actor *models.User
	if *f.user != "" {
		var err error
		if actor, err = f.login(ctx, e); err != nil {
			return err
		}
	}
	admin, err := e.app.Auth.CreateAdmin(ctx, actor, services.CreateAdminInput{
		Username: *username,
		Password: *newPassword,
	})
	if err != nil {
		return err
	}
	return e.render(dto.ToUserDTO(*admin))
}

func cmdSetActive(active bool) func(context.Context, *cmdEnv, []string) error {
	name := "deactivate-user"
	if active {
		name = "activate-user"
	}
	return func(ctx context.Context, e *cmdEnv, args []string) error {
		f := newFlags(name, true)
		username := f.String("username", "", "target username")
		if err := f.parse(args); err != nil {
			return err
		}
		if err := required(name, "username", *username); err != nil {
			return err
		}
		actor, err := f.login(ctx, e)
		if err != nil {
			return err
		}
		if err := e.app.Auth.SetActive(ctx, actor, *username, active); err != nil {
			return err
		}
		if active {
			e.printf("User %s activated", *username)
		} else {
			e.printf("User %s deactivated", *username)
		}
		return nil
	}
}

func cmdPurge(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("purge-data", true)
	yes := f.Bool("yes", false, "confirm deleting all data")
	if err := f.parse(args); err != nil {
		return err
	}
	if !*yes {
		return usagef("purge-data: refusing to delete all data without --yes")
	}
	actor, err := f.login(ctx, e)
	if err != nil {
		return err
	}
	if err := e.app.Auth.Purge(ctx, actor); err != nil {
		return err
	}
	e.printf("All data purged")
	return nil
}

func cmdCreateProject(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("create-project", true)
	title := f.String("title", "", "project title")
	if err := f.parse(args); err != nil {
		return err
	}
	actor, err := f.login(ctx, e)
	if err != nil {
		return err
	}
	project, err := e.app.Projects.Create(ctx, actor, *title)
	if err != nil {
		return err
	}
	return e.render(dto.ToProjectDTO(*project))
}

func cmdProjects(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("projects", true)
	if err := f.parse(args); err != nil {
		return err
	}
	actor, err := f.login(ctx, e)
	if err != nil {
		return err
	}
	projects, err := e.app.Projects.ListProjects(ctx, actor)
	if err != nil {
		return err
	}
	return e.render(dto.ToProjectListDTO(projects, actor.Username))
}

// projectCommand parses --project after the auth flags and logs in.
func projectCommand(ctx context.Context, e *cmdEnv, f *flags, args []string) (*models.User, uuid.UUID, error) {
	projectID := f.String("project", "", "project id")
	if err := f.parse(args); err != nil {
		return nil, uuid.Nil, err
	}
	id, err := parseID(f.Name(), "project", *projectID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	actor, err := f.login(ctx, e)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return actor, id, nil
}

func cmdProject(ctx context.Context, e *cmdEnv, args []string) error {
	actor, id, err := projectCommand(ctx, e, newFlags("project", true), args)
	if err != nil {
		return err
	}
	project, err := e.app.Projects.GetProject(ctx, actor, id)
	if err != nil {
		return err
	}
	return e.render(dto.ToProjectDTO(*project))
}

func cmdBoard(ctx context.Context, e *cmdEnv, args []string) error {
	actor, id, err := projectCommand(ctx, e, newFlags("board", true), args)
	if err != nil {
		return err
	}
	project, err := e.app.Projects.GetProject(ctx, actor, id)
	if err != nil {
		return err
	}
	return e.render(dto.ToBoardDTO(*project))
}

func cmdAddMember(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("add-member", true)
	username := f.String("username", "", "user to add")
	actor, id, err := projectCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	if err := e.app.Projects.AddMember(ctx, actor, id, *username); err != nil {
		return err
	}
	e.printf("User %s added to project %s", *username, id)
	return nil
}

func cmdRemoveMember(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("remove-member", true)
	username := f.String("username", "", "user to remove")
	actor, id, err := projectCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	if err := required("remove-member", "username", *username); err != nil {
		return err
	}
	if err := e.app.Projects.RemoveMember(ctx, actor, id, *username); err != nil {
		return err
	}
	e.printf("User %s removed from project %s", *username, id)
	return nil
}

func cmdDeleteProject(ctx context.Context, e *cmdEnv, args []string) error {
	actor, id, err := projectCommand(ctx, e, newFlags("delete-project", true), args)
	if err != nil {
		return err
	}
	if err := e.app.Projects.Delete(ctx, actor, id); err != nil {
		return err
	}
	e.printf("Project %s deleted", id)
	return nil
}

func cmdCreateTask(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("create-task", true)
	title := f.String("title", "", "task title")
	description := f.String("description", "", "task description")
	actor, id, err := projectCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	task, err := e.app.Projects.CreateTask(ctx, actor, services.CreateTaskInput{
		ProjectID:   id,
		Title:       *title,
		Description: *description,
	})
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdTasks(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("tasks", true)
	status := f.String("status", "", "only tasks in this status")
	assignee := f.String("assignee", "", "only tasks assigned to this user")
	page := f.Int("page", 1, "page number")
	pageSize := f.Int("page-size", 0, "tasks per page")
	actor, id, err := projectCommand(ctx, e, f, args)
	if err != nil {
		return err
	}

	filter := services.TaskFilter{Assignee: *assignee, Page: *page, PageSize: *pageSize}
	if *status != "" {
		s, err := models.ParseStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = &s
	}
	tasks, pagination, err := e.app.Projects.ListTasks(ctx, actor, id, filter)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskListResponse(tasks, pagination))
}

// taskCommand parses --project and --task after the command's own flags.
func taskCommand(ctx context.Context, e *cmdEnv, f *flags, args []string) (*models.User, uuid.UUID, uuid.UUID, error) {
	taskID := f.String("task", "", "task id")
	actor, projectID, err := projectCommand(ctx, e, f, args)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	id, err := parseID(f.Name(), "task", *taskID)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	return actor, projectID, id, nil
}

func cmdTask(ctx context.Context, e *cmdEnv, args []string) error {
	actor, projectID, taskID, err := taskCommand(ctx, e, newFlags("task", true), args)
	if err != nil {
		return err
	}
	task, err := e.app.Projects.GetTask(ctx, actor, projectID, taskID)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdDeleteTask(ctx context.Context, e *cmdEnv, args []string) error {
	actor, projectID, taskID, err := taskCommand(ctx, e, newFlags("delete-task", true), args)
	if err != nil {
		return err
	}
	if err := e.app.Projects.DeleteTask(ctx, actor, projectID, taskID); err != nil {
		return err
	}
	e.printf("Task %s deleted", taskID)
	return nil
}

func cmdSetStatus(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("set-status", true)
	value := f.String("status", "", "BACKLOG|TODO|DOING|DONE|ARCHIVED")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	status, err := models.ParseStatus(*value)
	if err != nil {
		return err
	}
	task, err := e.app.Projects.ChangeStatus(ctx, actor, projectID, taskID, status)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdSetPriority(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("set-priority", true)
	value := f.String("priority", "", "CRITICAL|HIGH|MEDIUM|LOW")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	priority, err := models.ParsePriority(*value)
	if err != nil {
		return err
	}
	task, err := e.app.Projects.ChangePriority(ctx, actor, projectID, taskID, priority)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdAssign(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("assign", true)
	username := f.String("username", "", "member to assign")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	if err := required("assign", "username", *username); err != nil {
		return err
	}
	task, err := e.app.Projects.Assign(ctx, actor, projectID, taskID, *username)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdUnassign(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("unassign", true)
	username := f.String("username", "", "assignee to remove")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	if err := required("unassign", "username", *username); err != nil {
		return err
	}
	task, err := e.app.Projects.Unassign(ctx, actor, projectID, taskID, *username)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdComment(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("comment", true)
	text := f.String("text", "", "comment text")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	if err := required("comment", "text", *text); err != nil {
		return err
	}
	task, err := e.app.Projects.AddComment(ctx, actor, projectID, taskID, *text)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}

func cmdEditTask(ctx context.Context, e *cmdEnv, args []string) error {
	f := newFlags("edit-task", true)
	fieldName := f.String("field", "", "title|description|start_time|end_time")
	value := f.String("value", "", "new value; times as \"YYYY-MM-DD HH:MM:SS\"")
	actor, projectID, taskID, err := taskCommand(ctx, e, f, args)
	if err != nil {
		return err
	}
	field, err := services.ParseTaskField(*fieldName)
	if err != nil {
		return err
	}
	task, err := e.app.Projects.EditTask(ctx, actor, projectID, taskID, field, *value)
	if err != nil {
		return err
	}
	return e.render(dto.ToTaskDTO(*task))
}
