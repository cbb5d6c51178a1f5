package processed

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
)

func TestPostgresStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantIDs []string
		wantErr bool
	}{
		{
			name: "loads all ids",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id FROM processed_videos ORDER BY processed_at").
					WillReturnRows(pgxmock.NewRows([]string{"video_id"}).AddRow("vid2").AddRow("vid1"))
			},
			wantIDs: []string{"vid1", "vid2"},
		},
		{
			name: "empty table",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id FROM processed_videos").
					WillReturnRows(pgxmock.NewRows([]string{"video_id"}))
			},
			wantIDs: []string{},
		},
		{
			name: "missing table",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id FROM processed_videos").
					WillReturnError(&pgconn.PgError{Code: "42P01"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			store := NewPostgresStore(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			set, err := store.Load(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantIDs, set.IDs())
				assert.Equal(t, tt.wantIDs, store.List())
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_MarkProcessed(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		setup    func(mock pgxmock.PgxPoolIface)
		wantErr  bool
		wantCode string
	}{
		{
			name: "inserts id",
			id:   "vid1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO processed_videos").
					WithArgs("vid1").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "already present is not an error",
			id:   "vid1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO processed_videos .* ON CONFLICT").
					WithArgs("vid1").
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
		},
		{
			name: "connection error",
			id:   "vid1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO processed_videos").
					WithArgs("vid1").
					WillReturnError(&pgconn.PgError{Code: "08006"})
			},
			wantErr:  true,
			wantCode: apperrors.CodeStorage,
		},
		{
			name:     "empty id",
			id:       "",
			setup:    func(mock pgxmock.PgxPoolIface) {},
			wantErr:  true,
			wantCode: apperrors.CodeInvalidArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			store := NewPostgresStore(mock)

			err = store.MarkProcessed(context.Background(), tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				assert.False(t, store.Contains(tt.id))
			} else {
				require.NoError(t, err)
				assert.True(t, store.Contains(tt.id))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandlePostgreSQLError(t *testing.T) {
	assert.Nil(t, handlePostgreSQLError(nil, "noop"))

	err := handlePostgreSQLError(&pgconn.PgError{Code: "42P01"}, "failed to load")
	assert.Equal(t, apperrors.CodeStorage, err.Code)
	assert.Contains(t, err.Message, "processed migrate")

	err = handlePostgreSQLError(assert.AnError, "failed to load")
	assert.Equal(t, apperrors.CodeStorage, err.Code)
	assert.ErrorIs(t, err, assert.AnError)
}
