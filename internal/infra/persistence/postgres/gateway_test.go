package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/infra/persistence/snapshot"
	"frontdesk/pkg/domain"
)

const upsertSQL = `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`

func openMock(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://test/frontdesk", dsn)
		return db, nil
	})
	t.Cleanup(restore)

	mock.ExpectPing()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS state")).WillReturnResult(sqlmock.NewResult(0, 0))
	g, err := Open(context.Background(), "postgres://test/frontdesk")
	require.NoError(t, err)
	return g, mock
}

func TestOpenLoadEmpty(t *testing.T) {
	g, mock := openMock(t)
	mock.ExpectQuery("SELECT bucket, payload FROM state").WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))

	_, ok, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDecodesBuckets(t *testing.T) {
	g, mock := openMock(t)
	rows := sqlmock.NewRows([]string{"bucket", "payload"}).
		AddRow("rooms", []byte(`[{"id":"7","name":"Loft","status":"vacant"}]`)).
		AddRow("movements", []byte(`[{"id":3,"roomId":"7","movementType":"check_out","newStatus":"vacant","date":"2024-02-01","time":"11:00"}]`))
	mock.ExpectQuery("SELECT bucket, payload FROM state").WillReturnRows(rows)

	snap, ok, err := g.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, snap.Rooms, 1)
	assert.Equal(t, "Loft", snap.Rooms[0].Name)
	require.Len(t, snap.Movements, 1)
	assert.Equal(t, domain.MovementCheckOut, snap.Movements[0].Type)
	assert.Equal(t, int64(3), snap.Movements[0].ID)
}

func TestSaveUpsertsEveryBucketInOneTransaction(t *testing.T) {
	g, mock := openMock(t)
	mock.ExpectBegin()
	for _, name := range snapshot.Buckets {
		mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).WithArgs(name, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := g.Save(context.Background(), domain.Snapshot{Rooms: []domain.Room{{Base: domain.Base{ID: "1"}, Name: "A", Status: domain.StatusVacant}}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackOnFailure(t *testing.T) {
	g, mock := openMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).WithArgs(snapshot.BucketRooms, sqlmock.AnyArg()).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := g.Save(context.Background(), domain.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert rooms")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenFailsWhenPingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err = Open(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}

func TestOpenPropagatesOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") })
	defer restore()
	_, err := Open(context.Background(), "postgres://broken")
	require.Error(t, err)
}
