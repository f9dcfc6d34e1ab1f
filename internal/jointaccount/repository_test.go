package jointaccount

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionCols = []string{"id", "joint_account_id", "user_id", "is_active", "created_at"}

func TestRepository_Create_SubscribesOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO joint_accounts").
		WithArgs(10, "Flat").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).AddRow(7, 10, "Flat", now))
	mock.ExpectExec("INSERT INTO joint_account_subscriptions").
		WithArgs(7, 10).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ja, err := NewRepository(db).Create(context.Background(), 10, "Flat")
	require.NoError(t, err)
	assert.Equal(t, int64(7), ja.ID)
	assert.Equal(t, int64(10), ja.OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveSubscribers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM joint_account_subscriptions WHERE joint_account_id = \\$1 AND is_active = TRUE AND user_id <> \\$2").
		WithArgs(7, 10).
		WillReturnRows(sqlmock.NewRows(subscriptionCols).
			AddRow(2, 7, 20, true, now).
			AddRow(3, 7, 30, true, now))

	subs, err := NewRepository(db).ListActiveSubscribers(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(20), subs[0].UserID)
	assert.Equal(t, int64(30), subs[1].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IsActiveSubscriber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(7, 99).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewRepository(db).IsActiveSubscriber(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_Unsubscribe_NotSubscribed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE joint_account_subscriptions SET is_active = FALSE").
		WithArgs(7, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).Unsubscribe(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestService_Subscribe_OwnerOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM joint_accounts").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).AddRow(7, 10, "Flat", time.Now()))

	_, err = NewService(NewRepository(db)).Subscribe(context.Background(), 20, 7, &SubscribeRequest{UserID: 30})
	assert.ErrorIs(t, err, ErrNotOwner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Leave_OwnerStays(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM joint_accounts").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).AddRow(7, 10, "Flat", time.Now()))

	err = NewService(NewRepository(db)).Leave(context.Background(), 10, 7)
	assert.ErrorIs(t, err, ErrOwnerCannotLeave)
}
