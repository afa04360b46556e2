// Package app wires configuration, storage, audit and services into one
// runtime context. Nothing in it is global: each App owns its resources.
package app

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskledger/internal/audit"
	"github.com/yukikurage/taskledger/internal/config"
	"github.com/yukikurage/taskledger/internal/database"
	"github.com/yukikurage/taskledger/internal/repository"
	"github.com/yukikurage/taskledger/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store       repository.RecordStore
	Audit       *audit.Log
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository

	Auth     *services.AuthService
	Projects *services.ProjectService
	Tasks    *services.TaskService

	db *gorm.DB
}

// New opens the record store and the audit log named by cfg.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.Audit, err = audit.Open(cfg.Audit.Path)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	hasher, err := services.NewPasswordHasher(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	locks := repository.NewLocks()
	a.UserRepo = repository.NewUserRepository(store, locks)
	a.ProjectRepo = repository.NewProjectRepository(store, locks)
	a.Tasks = services.NewTaskService(nil)
	a.Auth = services.NewAuthService(a.UserRepo, a.ProjectRepo, hasher, a.Audit, logger)
	a.Projects = services.NewProjectService(a.ProjectRepo, a.UserRepo, a.Tasks, a.Audit, logger, services.ProjectOptions{
		AllowUnregisteredMembers: cfg.Projects.AllowUnregisteredMembers,
	})

	logger.Debug("runtime ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("audit", cfg.Audit.Path),
	)
	return a, nil
}

func (a *App) openStore() (repository.RecordStore, error) {
	if a.Config.Storage.Driver == config.DriverFile {
		store, err := repository.NewFileStore(a.Config.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return store, nil
	}

	db, err := database.Connect(a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	return repository.NewGormStore(db), nil
}

// Close releases the audit file and any database connection.
func (a *App) Close() error {
	var errs []error
	if a.Audit != nil {
		errs = append(errs, a.Audit.Close())
		a.Audit = nil
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
		a.db = nil
	}
	return errors.Join(errs...)
}
