package notification

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationCols = []string{"id", "recipient_id", "title", "message", "data", "is_read", "related_entity_type", "related_entity_id", "created_at"}

func TestInbox_MarkRead_NotRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(notificationCols).
			AddRow(5, 2, "t", "m", []byte(`{"type":"DONG_CREATED"}`), false, "DONG", 9, time.Now()))

	err = NewInbox(NewRepository(db)).MarkRead(context.Background(), 3, 5)
	assert.ErrorIs(t, err, ErrNotRecipient)
}

func TestInbox_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(notificationCols).
			AddRow(5, 2, "t", "m", nil, false, nil, nil, time.Now()))
	mock.ExpectExec("UPDATE notifications SET is_read = true WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewInbox(NewRepository(db)).MarkRead(context.Background(), 2, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInbox_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications WHERE recipient_id = \\$1 AND is_read = false").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE recipient_id = \\$1 AND is_read = false ORDER BY").
		WithArgs(int64(2), 20, 20).
		WillReturnRows(sqlmock.NewRows(notificationCols).
			AddRow(7, 2, "t", "m", []byte(`{"dong_id":"9"}`), false, "DONG", 9, time.Now()))

	items, total, err := NewInbox(NewRepository(db)).List(context.Background(), 2, 2, 20, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"dong_id":"9"}`, string(items[0].Data))
}
