// Package database provides SQLite storage for the book catalog and the
// student spending ledger
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-downloader/pkg/models"

	_ "modernc.org/sqlite"
)

// ErrBookNotFound is returned when a book id has no catalog entry
var ErrBookNotFound = errors.New("book not found")

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT,
		file_size INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS download_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id INTEGER NOT NULL,
		cost_usd REAL NOT NULL,
		method TEXT NOT NULL,
		month TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_download_history_month ON download_history(month);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// GetBook returns the catalog entry for the given book id
func (db *DB) GetBook(id int64) (*models.Book, error) {
	query := `SELECT id, title, COALESCE(author, ''), COALESCE(file_size, 0) FROM books WHERE id = ?`

	var book models.Book
	err := db.conn.QueryRow(query, id).Scan(&book.ID, &book.Title, &book.Author, &book.FileSize)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}

	return &book, nil
}

// ListBooks returns the full catalog ordered by title
func (db *DB) ListBooks() ([]*models.Book, error) {
	query := `SELECT id, title, COALESCE(author, ''), COALESCE(file_size, 0) FROM books ORDER BY title`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// CreateBook inserts a catalog entry and sets its id
func (db *DB) CreateBook(book *models.Book) error {
	query := `INSERT INTO books (title, author, file_size) VALUES (?, ?, ?)`

	result, err := db.conn.Exec(query, book.Title, book.Author, book.FileSize)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get book id: %w", err)
	}
	book.ID = id

	return nil
}

// RecordDownload appends one row to the spending ledger and sets its id
func (db *DB) RecordDownload(record *models.DownloadRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.Month == "" {
		record.Month = record.CreatedAt.Format("2006-01")
	}

	query := `INSERT INTO download_history (book_id, cost_usd, method, month, created_at) VALUES (?, ?, ?, ?, ?)`

	result, err := db.conn.Exec(query, record.BookID, record.CostUSD, record.Method, record.Month, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record id: %w", err)
	}
	record.ID = id

	return nil
}

// GetDownloadsForMonth returns the ledger rows for a month in "2006-01" form
func (db *DB) GetDownloadsForMonth(month string) ([]*models.DownloadRecord, error) {
	query := `SELECT id, book_id, cost_usd, method, month, created_at
		FROM download_history WHERE month = ? ORDER BY created_at`

	rows, err := db.conn.Query(query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer rows.Close()

	var records []*models.DownloadRecord
	for rows.Next() {
		var record models.DownloadRecord
		if err := rows.Scan(&record.ID, &record.BookID, &record.CostUSD, &record.Method, &record.Month, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate download history: %w", err)
	}

	return records, nil
}
