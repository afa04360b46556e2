// Package authz holds the capability checks gating every mutation. Each
// guard returns nil or an error wrapping errors.ErrUnauthorized.
package authz

import (
	"fmt"

	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
)

// RequireActive rejects deactivated accounts
func RequireActive(user *models.User) error {
	if user == nil || !user.Active {
		return fmt.Errorf("%w: account is not active", apierrors.ErrUnauthorized)
	}
	return nil
}

// RequireAdmin checks the role only; admins are not scoped to projects.
func RequireAdmin(user *models.User) error {
	if user == nil || !user.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apierrors.ErrUnauthorized)
	}
	return nil
}

// RequireMember checks if username belongs to the project
func RequireMember(project *models.Project, username string) error {
	if !project.IsMember(username) {
		return fmt.Errorf("%w: %s is not a member of project %s", apierrors.ErrUnauthorized, username, project.ID)
	}
	return nil
}

// RequireLeader checks if username leads the project
func RequireLeader(project *models.Project, username string) error {
	if !project.IsLeader(username) {
		return fmt.Errorf("%w: only the leader of project %s can do this", apierrors.ErrUnauthorized, project.ID)
	}
	return nil
}

// RequireTaskEditor allows the project leader and the task's current
// assignees. Other members have read-only access.
func RequireTaskEditor(project *models.Project, task *models.Task, username string) error {
	if project.IsLeader(username) || task.IsAssignee(username) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot edit task %s", apierrors.ErrUnauthorized, username, task.ID)
}
