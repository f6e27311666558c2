package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*UserService, sqlmock.Sqlmock, *MockUserRepository, *MockTokenRepository, *miniredis.Miniredis) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		users, tokens := new(MockUserRepository), new(MockTokenRepository)
		return NewUserService(db, users, tokens, rdb), dbMock, users, tokens, mr
	}

	t.Run("success", func(t *testing.T) {
		svc, dbMock, users, tokens, mr := setup(t)
		mr.Set("user:9", "{}")
		dbMock.ExpectBegin()
		dbMock.ExpectCommit()
		users.On("SetActiveTx", ctx, mock.AnythingOfType("*sql.Tx"), 9, false).Return(nil).Once()
		tokens.On("DeleteByUserIDTx", ctx, mock.AnythingOfType("*sql.Tx"), 9).Return(nil).Once()

		require.NoError(t, svc.Deactivate(ctx, 1, 9))
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
		assert.False(t, mr.Exists("user:9"))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, dbMock, users, tokens, _ := setup(t)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()
		users.On("SetActiveTx", ctx, mock.Anything, 9, false).Return(sql.ErrNoRows).Once()

		err := svc.Deactivate(ctx, 1, 9)
		assert.ErrorIs(t, err, ErrUserNotFound)
		tokens.AssertNotCalled(t, "DeleteByUserIDTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("self deactivation", func(t *testing.T) {
		svc, dbMock, _, _, _ := setup(t)

		err := svc.Deactivate(ctx, 9, 9)
		assert.ErrorIs(t, err, ErrSelfDeactivation)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
