package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"library-downloader/pkg/models"
)

// Catalog is the book-metadata lookup the HTTP source needs
type Catalog interface {
	GetBook(id int64) (*models.Book, error)
}

// HTTPSource serves book bytes from a remote file server via HTTP
// range requests
type HTTPSource struct {
	baseURL    string
	catalog    Catalog
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP-backed book source rooted at baseURL
func NewHTTPSource(baseURL string, catalog Catalog) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		catalog: catalog,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Resolve looks the book up in the catalog and verifies its remote size.
// The server's Content-Length wins over the catalog size when they disagree,
// since the remote file is what will actually be fetched.
func (s *HTTPSource) Resolve(ctx context.Context, bookID int64) (*Handle, error) {
	book, err := s.catalog.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	handle := &Handle{
		BookID:         bookID,
		Title:          book.Title,
		TotalSizeBytes: book.FileSize,
		URL:            fmt.Sprintf("%s/books/%d/file", s.baseURL, bookID),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, handle.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach book source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("book source returned status %d", resp.StatusCode)
	}

	if resp.ContentLength > 0 {
		handle.TotalSizeBytes = resp.ContentLength
	}

	return handle, nil
}

// FetchRange reads bytes [start, start+length) of the remote file
func (s *HTTPSource) FetchRange(ctx context.Context, handle *Handle, start, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid range length %d", length)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, handle.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, start+length-1))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch range: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		// Server ignored the range; only usable when we wanted the file head
		if start != 0 {
			return nil, fmt.Errorf("book source does not support range requests")
		}
	default:
		return nil, fmt.Errorf("book source returned status %d", resp.StatusCode)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(resp.Body, data); err != nil {
		return nil, fmt.Errorf("short read from book source: %w", err)
	}

	return data, nil
}
