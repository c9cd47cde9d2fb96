package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/querybench/querybench/internal/domain"
	"github.com/querybench/querybench/internal/store"
)

// SeedSpec sizes the benchmark population.
type SeedSpec struct {
	Owners             int
	TasksPerOwner      int
	AnnotationsPerTask int
}

// DefaultSeedSpec is the reference workload: 20 owners, 100 tasks per
// owner, 2 annotations per task (2000 tasks, 4000 annotations).
func DefaultSeedSpec() SeedSpec {
	return SeedSpec{
		Owners:             20,
		TasksPerOwner:      100,
		AnnotationsPerTask: 2,
	}
}

// TotalTasks returns the number of tasks the spec seeds.
func (s SeedSpec) TotalTasks() int {
	return s.Owners * s.TasksPerOwner
}

// TotalAnnotations returns the number of annotations the spec seeds.
func (s SeedSpec) TotalAnnotations() int {
	return s.TotalTasks() * s.AnnotationsPerTask
}

// EntityCounts holds the row count per entity table.
type EntityCounts struct {
	Owners      int64
	Tasks       int64
	Annotations int64
}

var (
	insertOwnerSQL      = fmt.Sprintf("INSERT INTO %s (username) VALUES ($1) RETURNING id", domain.OwnerSchema.Name)
	insertTaskSQL       = fmt.Sprintf("INSERT INTO %s (title, is_done, owner_id) VALUES ($1, $2, $3) RETURNING id", domain.TaskSchema.Name)
	insertAnnotationSQL = fmt.Sprintf("INSERT INTO %s (body, task_id) VALUES ($1, $2)", domain.AnnotationSchema.Name)
)

// SeedStore bulk-creates the benchmark population. Entities are created
// once during the reset-and-seed phase and are read-only afterwards.
type SeedStore struct {
	logger *slog.Logger
}

// NewSeedStore creates a SeedStore. If logger is nil, a default logger
// will be used.
func NewSeedStore(logger *slog.Logger) *SeedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedStore{
		logger: logger.With(slog.String("component", "seed_store")),
	}
}

// Seed inserts the population described by spec inside one transaction
// scope on conn: either the whole population lands or none of it.
// Inserts are batched, one round trip per entity kind.
func (s *SeedStore) Seed(ctx context.Context, conn store.Beginner, spec SeedSpec) error {
	err := store.RunInScope(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
		owners, err := s.seedOwners(ctx, tx, spec)
		if err != nil {
			return err
		}

		taskIDs, err := s.seedTasks(ctx, tx, spec, owners)
		if err != nil {
			return err
		}

		return s.seedAnnotations(ctx, tx, spec, taskIDs)
	})
	if err != nil {
		return store.NewStoreError("entities", "seed", err)
	}

	s.logger.Info("population seeded",
		slog.Int("owners", spec.Owners),
		slog.Int("tasks", spec.TotalTasks()),
		slog.Int("annotations", spec.TotalAnnotations()))
	return nil
}

// seedOwners inserts the owner records and returns them with their
// storage-assigned IDs filled in, so downstream seeding works from the
// records themselves rather than re-deriving usernames.
func (s *SeedStore) seedOwners(ctx context.Context, tx pgx.Tx, spec SeedSpec) ([]*domain.Owner, error) {
	owners := make([]*domain.Owner, 0, spec.Owners)
	batch := &pgx.Batch{}
	for i := 1; i <= spec.Owners; i++ {
		owner, err := domain.NewOwner(fmt.Sprintf("user%d", i))
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
		batch.Queue(insertOwnerSQL, owner.Username)
	}

	ids, err := collectInsertedIDs(ctx, tx, batch, spec.Owners)
	if err != nil {
		return nil, err
	}
	for i, owner := range owners {
		owner.ID = ids[i]
	}
	return owners, nil
}

func (s *SeedStore) seedTasks(
	ctx context.Context,
	tx pgx.Tx,
	spec SeedSpec,
	owners []*domain.Owner,
) ([]int64, error) {
	batch := &pgx.Batch{}
	for _, owner := range owners {
		for t := 0; t < spec.TasksPerOwner; t++ {
			task, err := domain.NewTask(owner.ID, fmt.Sprintf("%s-task-%d", owner.Username, t), t%3 == 0)
			if err != nil {
				return nil, err
			}
			batch.Queue(insertTaskSQL, task.Title, task.Done, task.OwnerID)
		}
	}
	return collectInsertedIDs(ctx, tx, batch, spec.TotalTasks())
}

func (s *SeedStore) seedAnnotations(
	ctx context.Context,
	tx pgx.Tx,
	spec SeedSpec,
	taskIDs []int64,
) error {
	batch := &pgx.Batch{}
	for i, taskID := range taskIDs {
		// t is the task's index within its owner, matching its title.
		t := i % spec.TasksPerOwner
		for c := 1; c <= spec.AnnotationsPerTask; c++ {
			annotation, err := domain.NewAnnotation(taskID, fmt.Sprintf("c%d-%d", c, t))
			if err != nil {
				return err
			}
			batch.Queue(insertAnnotationSQL, annotation.Body, annotation.TaskID)
		}
	}

	br := tx.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return MapError(err)
		}
	}
	return nil
}

// collectInsertedIDs sends an all-RETURNING-id batch and reads the ids
// back in queue order.
func collectInsertedIDs(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, n int) ([]int64, error) {
	br := tx.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// InsertOwner inserts a single owner outside the bulk path. Used by the
// rollback scenarios, which need individually failing writes.
func (s *SeedStore) InsertOwner(ctx context.Context, db store.Execer, username string) error {
	owner, err := domain.NewOwner(username)
	if err != nil {
		return err
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (username) VALUES ($1)", domain.OwnerSchema.Name)
	if _, err := db.Exec(ctx, insertSQL, owner.Username); err != nil {
		return MapError(err)
	}
	return nil
}

// Counts returns the row count of each entity table.
func (s *SeedStore) Counts(ctx context.Context, q store.Querier) (EntityCounts, error) {
	var counts EntityCounts
	for _, c := range []struct {
		table string
		dst   *int64
	}{
		{domain.OwnerSchema.Name, &counts.Owners},
		{domain.TaskSchema.Name, &counts.Tasks},
		{domain.AnnotationSchema.Name, &counts.Annotations},
	} {
		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)
		if err := pgxscan.Get(ctx, q, c.dst, countSQL); err != nil {
			return EntityCounts{}, store.NewStoreError(c.table, "count", MapError(err))
		}
	}
	return counts, nil
}
