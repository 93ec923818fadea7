package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"library-downloader/pkg/models"
)

func testCatalog() []*models.Book {
	return []*models.Book{
		{ID: 1, Title: "Introduction to Algebra", Author: "Mary Chen"},
		{ID: 2, Title: "Advanced Algebra and Geometry", Author: "John Smith"},
		{ID: 3, Title: "World History: Ancient Civilizations", Author: "Amara Okafor"},
		{ID: 4, Title: "Basic Chemistry", Author: "Chen Wei"},
	}
}

func TestRankBooks_TitleMatch(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("algebra", testCatalog(), 10)
	require.Len(t, results, 2)
	require.Equal(t, int64(1), results[0].ID)
	require.Equal(t, int64(2), results[1].ID)
}

func TestRankBooks_PhraseOutranksPartial(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("advanced algebra", testCatalog(), 10)
	require.NotEmpty(t, results)
	require.Equal(t, int64(2), results[0].ID)
}

func TestRankBooks_AuthorMatch(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("okafor", testCatalog(), 10)
	require.Len(t, results, 1)
	require.Equal(t, int64(3), results[0].ID)
}

func TestRankBooks_TitleOutranksAuthor(t *testing.T) {
	m := NewMatcher()

	// "chen" appears in book 1's author and book 4's author; "chemistry"
	// shares a prefix with nothing, so query "chen" alone hits authors only
	results := m.RankBooks("chemistry", testCatalog(), 10)
	require.NotEmpty(t, results)
	require.Equal(t, int64(4), results[0].ID)
}

func TestRankBooks_PrefixMatch(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("hist", testCatalog(), 10)
	require.Len(t, results, 1)
	require.Equal(t, int64(3), results[0].ID)
}

func TestRankBooks_NoMatch(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("quantum physics", testCatalog(), 10)
	require.Empty(t, results)
}

func TestRankBooks_EmptyQuery(t *testing.T) {
	m := NewMatcher()

	require.Empty(t, m.RankBooks("", testCatalog(), 10))
	require.Empty(t, m.RankBooks("   ", testCatalog(), 10))
}

func TestRankBooks_Limit(t *testing.T) {
	m := NewMatcher()

	results := m.RankBooks("algebra", testCatalog(), 1)
	require.Len(t, results, 1)
}

func TestRankBooks_EmptyCatalog(t *testing.T) {
	m := NewMatcher()

	require.Empty(t, m.RankBooks("algebra", nil, 10))
}
