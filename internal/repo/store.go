package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskhub/internal/core/config"
	"taskhub/internal/core/database"
	"taskhub/internal/domain"
)

// Store bundles the repositories of one backend.
type Store struct {
	Driver string
	Users  domain.UserRepository
	Tasks  domain.TaskRepository
	close  func(context.Context) error
}

func NewMemoryStore() *Store {
	return &Store{
		Driver: "memory",
		Users:  NewMemoryUserRepo(),
		Tasks:  NewMemoryTaskRepo(),
		close:  func(context.Context) error { return nil },
	}
}

// Open connects the backend named by c.Driver and prepares its schema/indexes.
func Open(ctx context.Context, c config.DB, l *zap.Logger) (*Store, error) {
	switch c.Driver {
	case "memory":
		l.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil

	case "mongo", "mongodb":
		db, disconnect, err := database.NewMongo(ctx, database.MongoOpts{
			URI:               c.DSN,
			Database:          c.Database,
			Username:          c.Username,
			Password:          c.Password,
			MaxPoolSize:       c.MaxOpenConns,
			ConnectTimeoutSec: c.ConnectTimeoutSec,
		})
		if err != nil {
			return nil, err
		}
		users, tasks := NewMongoUserRepo(db), NewMongoTaskRepo(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = disconnect(ctx)
			return nil, fmt.Errorf("users indexes: %w", err)
		}
		if err := tasks.EnsureIndexes(ctx); err != nil {
			_ = disconnect(ctx)
			return nil, fmt.Errorf("tasks indexes: %w", err)
		}
		return &Store{Driver: "mongo", Users: users, Tasks: tasks, close: disconnect}, nil

	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             c.Driver,
			DSN:                c.DSN,
			Username:           c.Username,
			Password:           c.Password,
			MaxOpenConns:       c.MaxOpenConns,
			MaxIdleConns:       c.MaxIdleConns,
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
			LogLevel:           c.LogLevel,
		})
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := db.WithContext(ctx).AutoMigrate(GormModels()...); err != nil {
				return nil, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: c.Driver,
			Users:  NewUserRepo(db),
			Tasks:  NewTaskRepo(db),
			close:  func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", c.Driver)
}

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }
