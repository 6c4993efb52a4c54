package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

const (
	taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

	selectTasks = `SELECT ` + taskColumns + ` FROM tasks`

	orderNewestFirst = ` ORDER BY created_at DESC, id DESC`

	pingTimeout = 5 * time.Second
)

// Options configures Open.
type Options struct {
	Dialect      Dialect
	DSN          string
	MaxOpenConns int
	AutoMigrate  bool
	// Clock overrides time.Now for CreatedAt/UpdatedAt.
	Clock func() time.Time
}

// Store implements store.TaskStore on top of database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	logger  *slog.Logger
}

// Ensure Store implements store.TaskStore interface
var _ store.TaskStore = (*Store)(nil)

// Open connects to the database described by opts, verifies the connection,
// and optionally applies pending migrations.
func Open(ctx context.Context, opts Options, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	dsn := opts.DSN
	if opts.Dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(opts.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	switch opts.Dialect {
	case DialectSQLite:
		// A single connection serializes writers.
		db.SetMaxOpenConns(1)
	case DialectPostgres:
		maxOpen := opts.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 10
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(max(1, maxOpen/2))
		db.SetConnMaxLifetime(5 * time.Minute)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported SQL dialect %q", opts.Dialect)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.AutoMigrate {
		if err := Migrate(logger.WithLogger(ctx, log), db, opts.Dialect, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	log.Info("database connection established", slog.String("dialect", string(opts.Dialect)))

	s := New(db, opts.Dialect, log)
	if opts.Clock != nil {
		s.now = opts.Clock
	}
	return s, nil
}

// New wraps an already open database.
func New(db *sql.DB, dialect Dialect, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		logger:  log.With(slog.String("component", "sql_task_store")),
	}
}

// sqliteDSN appends the pragmas every connection needs.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// timestamp returns the current time at the precision every backend keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// GetAll implements store.TaskStore.GetAll
func (s *Store) GetAll(ctx context.Context) ([]*domain.Task, error) {
	return s.list(ctx, "get_all", selectTasks+orderNewestFirst)
}

// GetByID implements store.TaskStore.GetByID
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.getByID(ctx, s.db, id, false)
}

func (s *Store) getByID(ctx context.Context, db store.DBTX, id int64, lock bool) (*domain.Task, error) {
	query := selectTasks + ` WHERE id = ?`
	if lock {
		query += s.dialect.lockSuffix()
	}

	task, err := scanTask(db.QueryRowContext(ctx, s.dialect.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to read task", MapError(err))
	}
	return task, nil
}

// Create implements store.TaskStore.Create
func (s *Store) Create(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Build validates; the ID is assigned by the database.
	task, err := input.Build(0, s.timestamp())
	if err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return nil, err
	}
	if task.DueDate != nil {
		due := task.DueDate.Truncate(time.Microsecond)
		task.DueDate = &due
	}

	query := s.dialect.rebind(`INSERT INTO tasks
		(title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err = s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		s.dialect.nullTimeArg(task.DueDate),
		s.dialect.timeArg(task.CreatedAt),
		s.dialect.timeArg(task.UpdatedAt),
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *Store) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}
	if patch.DueDate.Value != nil {
		due := patch.DueDate.Value.UTC().Truncate(time.Microsecond)
		patch.DueDate = domain.Some(due)
	}

	var updated *domain.Task
	err := store.RunInTransaction(logger.WithLogger(ctx, log), s.db, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}

		existing.Apply(patch, s.timestamp())

		query := s.dialect.rebind(`UPDATE tasks
			SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
			WHERE id = ?`)
		result, err := tx.ExecContext(ctx, query,
			existing.Title,
			existing.Description,
			string(existing.Status),
			string(existing.Priority),
			s.dialect.nullTimeArg(existing.DueDate),
			s.dialect.timeArg(existing.UpdatedAt),
			id,
		)
		if err != nil {
			return store.NewStoreError("task", "update", "failed to update task", MapError(err))
		}
		if err := checkRowsAffected(result); err != nil {
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("task updated", slog.Int64("task_id", id))
	return updated, nil
}

// Delete implements store.TaskStore.Delete
func (s *Store) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return nil
}

// FindByStatus implements store.TaskStore.FindByStatus
func (s *Store) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	return s.list(ctx, "find_by_status", selectTasks+` WHERE status = ?`+orderNewestFirst, string(status))
}

// FindByPriority implements store.TaskStore.FindByPriority
func (s *Store) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return s.list(ctx, "find_by_priority", selectTasks+` WHERE priority = ?`+orderNewestFirst, string(priority))
}

// Search implements store.TaskStore.Search
func (s *Store) Search(ctx context.Context, query string) ([]*domain.Task, error) {
	where := ` WHERE ` + s.dialect.containsExpr("title") +
		` OR ` + s.dialect.containsExpr("coalesce(description, '')")
	return s.list(ctx, "search", selectTasks+where+orderNewestFirst, query, query)
}

func (s *Store) list(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", op, "failed to query tasks", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", op, "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", op, "error iterating task rows", MapError(err))
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
		priority    string
		dueDate     nullTime
		createdAt   nullTime
		updatedAt   nullTime
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&priority,
		&dueDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if task.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	if task.Priority, err = domain.ParsePriority(priority); err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	task.DueDate = dueDate.Ptr()
	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time
	return &task, nil
}
