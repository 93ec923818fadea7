package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"library-downloader/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/dir/library.db")
	require.Error(t, err)
}

func TestCreateAndGetBook(t *testing.T) {
	db := newTestDB(t)

	book := &models.Book{
		Title:    "Introduction to Computer Science",
		Author:   "A. Turing",
		FileSize: 5_000_000,
	}
	require.NoError(t, db.CreateBook(book))
	require.NotZero(t, book.ID)

	got, err := db.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, book.Title, got.Title)
	require.Equal(t, book.Author, got.Author)
	require.Equal(t, int64(5_000_000), got.FileSize)
}

func TestListBooks(t *testing.T) {
	db := newTestDB(t)

	books, err := db.ListBooks()
	require.NoError(t, err)
	require.Empty(t, books)

	require.NoError(t, db.CreateBook(&models.Book{Title: "Zoology Basics", FileSize: 100}))
	require.NoError(t, db.CreateBook(&models.Book{Title: "Algebra I", Author: "M. Chen", FileSize: 200}))

	books, err = db.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.Equal(t, "Algebra I", books[0].Title)
	require.Equal(t, "Zoology Basics", books[1].Title)
}

func TestGetBook_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBook(999)
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestRecordDownload_FillsDefaults(t *testing.T) {
	db := newTestDB(t)

	record := &models.DownloadRecord{BookID: 1, CostUSD: 0.48, Method: "mobile"}
	require.NoError(t, db.RecordDownload(record))
	require.NotZero(t, record.ID)
	require.False(t, record.CreatedAt.IsZero())
	require.Equal(t, record.CreatedAt.Format("2006-01"), record.Month)
}

func TestGetDownloadsForMonth(t *testing.T) {
	db := newTestDB(t)

	createdAt := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	for _, cost := range []float64{0.50, 1.25} {
		require.NoError(t, db.RecordDownload(&models.DownloadRecord{
			BookID:    1,
			CostUSD:   cost,
			Method:    "mobile",
			Month:     "2026-08",
			CreatedAt: createdAt,
		}))
	}
	require.NoError(t, db.RecordDownload(&models.DownloadRecord{
		BookID:    2,
		CostUSD:   3.00,
		Method:    "wifi",
		Month:     "2026-07",
		CreatedAt: createdAt.AddDate(0, -1, 0),
	}))

	records, err := db.GetDownloadsForMonth("2026-08")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 0.50, records[0].CostUSD)
	require.Equal(t, 1.25, records[1].CostUSD)

	records, err = db.GetDownloadsForMonth("2026-01")
	require.NoError(t, err)
	require.Empty(t, records)
}
