package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/yukikurage/taskledger/internal/models"
)

// Collection names
const (
	CollectionUsers    = "users"
	CollectionAdmins   = "admins"
	CollectionProjects = "projects"
)

// Record is one serialized entity inside a collection.
type Record = json.RawMessage

// ErrNoChanges may be returned by an update callback to skip the save.
var ErrNoChanges = errors.New("no changes")

// RecordStore loads and saves whole named collections
type RecordStore interface {
	// Load returns the records of collection in stored order, or an empty
	// slice when the collection does not exist yet.
	Load(ctx context.Context, collection string) ([]Record, error)

	// Save replaces the collection. A failed save leaves the previously
	// saved content readable.
	Save(ctx context.Context, collection string, records []Record) error

	// Drop removes the collection entirely
	Drop(ctx context.Context, collection string) error
}

// UserRepository defines the interface for user and admin data access
type UserRepository interface {
	// Create stores a user in the collection matching its role. Usernames
	// are unique across users and admins, emails across users.
	Create(ctx context.Context, user *models.User) error

	// FindByUsername searches users first, then admins
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns every record of the given role
	List(ctx context.Context, role models.Role) ([]models.User, error)

	// SetActive sets the active flag of an ordinary user and reports
	// whether the stored value changed
	SetActive(ctx context.Context, username string, active bool) (bool, error)

	// Purge drops both user collections
	Purge(ctx context.Context) error
}

// ProjectRepository defines the interface for project aggregate access
type ProjectRepository interface {
	// Create appends a new project to the collection
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// ListByMember lists all projects the user is a member of
	ListByMember(ctx context.Context, username string) ([]models.Project, error)

	// Update re-reads the collection, applies fn to the stored project and
	// writes the whole collection back. Returning ErrNoChanges from fn skips
	// the write; any other error aborts it.
	Update(ctx context.Context, id uuid.UUID, fn func(*models.Project) error) error

	// Delete removes the project once guard accepts the stored aggregate
	Delete(ctx context.Context, id uuid.UUID, guard func(*models.Project) error) error

	// Purge drops the projects collection
	Purge(ctx context.Context) error
}
