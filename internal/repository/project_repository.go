package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/models"
)

// CollectionProjectRepository is a RecordStore implementation of
// ProjectRepository. Every write re-reads and rewrites the full projects
// collection under its lock.
type CollectionProjectRepository struct {
	projects *Collection[models.Project]
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(store RecordStore, locks *Locks) ProjectRepository {
	return &CollectionProjectRepository{
		projects: NewCollection[models.Project](CollectionProjects, store, locks),
	}
}

// Create creates a new project
func (r *CollectionProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.projects.Update(ctx, func(projects []models.Project) ([]models.Project, error) {
		if models.FindProject(projects, project.ID) >= 0 {
			return nil, fmt.Errorf("%w: project %s", apierrors.ErrAlreadyExists, project.ID)
		}
		return append(projects, *project), nil
	})
}

// FindByID finds a project by ID
func (r *CollectionProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	projects, err := r.projects.All(ctx)
	if err != nil {
		return nil, err
	}
	i := models.FindProject(projects, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrProjectNotFound, id)
	}
	return &projects[i], nil
}

// ListByMember lists all projects a user belongs to
func (r *CollectionProjectRepository) ListByMember(ctx context.Context, username string) ([]models.Project, error) {
	projects, err := r.projects.All(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsMember(username) {
			result = append(result, p)
		}
	}
	return result, nil
}

// Update applies fn to the stored project and persists the collection
func (r *CollectionProjectRepository) Update(ctx context.Context, id uuid.UUID, fn func(*models.Project) error) error {
	return r.projects.Update(ctx, func(projects []models.Project) ([]models.Project, error) {
		i := models.FindProject(projects, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrProjectNotFound, id)
		}
		if err := fn(&projects[i]); err != nil {
			return nil, err
		}
		return projects, nil
	})
}

// Delete deletes a project together with its tasks
func (r *CollectionProjectRepository) Delete(ctx context.Context, id uuid.UUID, guard func(*models.Project) error) error {
	return r.projects.Update(ctx, func(projects []models.Project) ([]models.Project, error) {
		i := models.FindProject(projects, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrProjectNotFound, id)
		}
		if guard != nil {
			if err := guard(&projects[i]); err != nil {
				return nil, err
			}
		}
		return append(projects[:i], projects[i+1:]...), nil
	})
}

// Purge drops the projects collection
func (r *CollectionProjectRepository) Purge(ctx context.Context) error {
	return r.projects.Drop(ctx)
}
