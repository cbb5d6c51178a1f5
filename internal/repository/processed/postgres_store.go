package processed

import (
	"context"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
)

const processedTable = "processed_videos"

// Pool is the subset of pgxpool.Pool used by PostgresStore
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps the set in the processed_videos table.
// Each mark is a single committed INSERT, so the set is durable as soon as it returns.
type PostgresStore struct {
	pool Pool
	psql sq.StatementBuilderType
	mu   sync.RWMutex
	set  model.ProcessedSet
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new instance of PostgresStore
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		set:  model.ProcessedSet{},
	}
}

// Load reads every processed ID from the table
func (s *PostgresStore) Load(ctx context.Context) (model.ProcessedSet, error) {
	query, args, err := s.psql.
		Select("video_id").
		From(processedTable).
		OrderBy("processed_at").
		ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to load processed videos")
	}
	defer rows.Close()

	set := model.ProcessedSet{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan processed video")
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate processed videos")
	}

	s.mu.Lock()
	s.set = set
	s.mu.Unlock()

	return set.Clone(), nil
}

func (s *PostgresStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Contains(id)
}

// MarkProcessed inserts id; inserting an existing id is a no-op
func (s *PostgresStore) MarkProcessed(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "video id is required")
	}

	query, args, err := s.psql.
		Insert(processedTable).
		Columns("video_id").
		Values(id).
		Suffix("ON CONFLICT (video_id) DO NOTHING").
		ToSql()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return handlePostgreSQLError(err, "failed to mark video processed")
	}

	s.mu.Lock()
	s.set.Add(id)
	s.mu.Unlock()
	return nil
}

func (s *PostgresStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.IDs()
}
