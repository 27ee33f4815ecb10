package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestUnsentSinceReturnsRowsNewestFirst(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewNewsStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	cutoff := now.Add(-6 * time.Minute)
	desc := "설명"

	rows := pgxmock.NewRows([]string{
		"id", "title", "description", "original_link", "category", "pub_date", "notification_sent_at",
	}).
		AddRow(int64(2), "최신 기사", &desc, "https://news.example/2", "경제", now.Add(-time.Minute), nil).
		AddRow(int64(1), "이전 기사", nil, "https://news.example/1", "사회", now.Add(-4*time.Minute), nil)

	mock.ExpectQuery("SELECT id, title, description").
		WithArgs(cutoff).
		WillReturnRows(rows)

	items, err := store.UnsentSince(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(2), items[0].ID)
	require.Equal(t, "설명", items[0].Description)
	require.Equal(t, "", items[1].Description)
	require.Nil(t, items[0].NotifiedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsentSinceQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewNewsStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, title, description").
		WillReturnError(errors.New("connection reset"))

	_, err = store.UnsentSince(context.Background(), time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "query unsent news")
}

func TestMarkNotifiedGuardsOnNull(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewNewsStoreWithPool(mock)
	require.NoError(t, err)

	at := time.Unix(1700000000, 0).UTC()
	mock.ExpectExec("UPDATE news").
		WithArgs(int64(7), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkNotified(context.Background(), 7, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewNewsStoreWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewNewsStoreWithPool(nil)
	require.Error(t, err)
}
