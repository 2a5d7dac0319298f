package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestTaskRepository_MoveStatusStaleRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), 0\) FROM "tasks"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.MoveStatus(context.Background(), uuid.New(), uuid.New(), models.TaskStatusTodo, models.TaskStatusDone)

	assert.ErrorIs(t, err, ErrStaleMove)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_MoveStatusCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), 0\) FROM "tasks"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MoveStatus(context.Background(), uuid.New(), uuid.New(), models.TaskStatusTodo, models.TaskStatusDone)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListPropagatesStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnError(errors.New("connection reset by peer"))

	projects, err := repo.List(context.Background(), ProjectFilter{})

	assert.Error(t, err)
	assert.Nil(t, projects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEntryRepository_StartMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "time_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO "time_entries"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_time_entries_one_active" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Start(context.Background(), &models.TimeEntry{UserID: uuid.New(), Description: "Focus"})

	assert.ErrorIs(t, err, ErrActiveEntryExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
