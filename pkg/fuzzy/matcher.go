// Package fuzzy ranks catalog books against a free-form search query
package fuzzy

import (
	"sort"
	"strings"

	"library-downloader/pkg/models"
)

// Matcher scores books against search queries
type Matcher struct{}

// NewMatcher creates a new fuzzy matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// RankBooks returns the books matching the query, best match first,
// capped at limit. Books with no overlap with the query are dropped.
func (m *Matcher) RankBooks(query string, books []*models.Book, limit int) []*models.Book {
	if len(books) == 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	type scoredBook struct {
		book  *models.Book
		score float64
	}

	var scored []scoredBook
	for _, book := range books {
		score := m.score(query, book)
		if score > 0 {
			scored = append(scored, scoredBook{book: book, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	result := make([]*models.Book, len(scored))
	for i, s := range scored {
		result[i] = s.book
	}

	return result
}

// score weights title matches over author matches so a query naming a
// book outranks one that only matches the author
func (m *Matcher) score(query string, book *models.Book) float64 {
	return m.wordScore(query, book.Title) + 0.5*m.wordScore(query, book.Author)
}

// wordScore is the fraction of query words found in the text, with a
// bonus for whole-phrase containment
func (m *Matcher) wordScore(query, text string) float64 {
	query = strings.ToLower(query)
	text = strings.ToLower(text)

	queryWords := splitWords(query)
	if len(queryWords) == 0 {
		return 0.0
	}

	textWords := splitWords(text)
	matched := 0
	for _, qw := range queryWords {
		for _, tw := range textWords {
			if qw == tw || strings.HasPrefix(tw, qw) {
				matched++
				break
			}
		}
	}

	score := float64(matched) / float64(len(queryWords))
	if score > 0 && strings.Contains(text, query) {
		score += 1.0
	}

	return score
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' ' || r == ',' || r == ':'
	})
}
