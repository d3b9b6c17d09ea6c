package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: 2 * time.Second},
		baseURL:     serverURL,
		userAgent:   "OpenShelf-test",
		rateLimiter: newRateLimiter(time.Millisecond),
	}
}

func TestSearchByISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/isbn/9780441013593.json":
			w.Write([]byte(`{
				"key": "/books/OL24694460M",
				"title": "Dune",
				"authors": [{"key": "/authors/OL79034A"}],
				"publish_date": "1965",
				"description": "A desert planet epic.",
				"subjects": ["Science fiction", "Deserts"]
			}`))
		case "/authors/OL79034A.json":
			w.Write([]byte(`{"name": "Frank Herbert"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	meta, err := client.SearchByISBN(context.Background(), "978-0-441-01359-3")
	require.NoError(t, err)

	assert.Equal(t, "Dune", meta.Title)
	assert.Equal(t, "Frank Herbert", meta.Author)
	assert.Equal(t, "9780441013593", meta.ISBN)
	assert.Equal(t, 1965, meta.PublicationYear)
	assert.Equal(t, "A desert planet epic.", meta.Description)
	assert.Equal(t, "Science fiction", meta.Genre)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441013593-L.jpg", meta.CoverImage)
}

func TestSearchByISBN_WrappedDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"title": "Dune",
			"description": {"type": "/type/text", "value": "Wrapped description."}
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	meta, err := client.SearchByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Wrapped description.", meta.Description)
}

func TestSearchByISBN_Invalid(t *testing.T) {
	client := testClient("http://unused")

	_, err := client.SearchByISBN(context.Background(), "12345")
	assert.Error(t, err)
}

func TestSearchByISBN_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.SearchByISBN(context.Background(), "9780441013593")
	assert.Error(t, err)
}

func TestSearchByTitle_PicksBestMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		w.Write([]byte(`{
			"numFound": 2,
			"docs": [
				{
					"key": "/works/OL001W",
					"title": "Dune Messiah",
					"author_name": ["Frank Herbert"],
					"first_publish_year": 1969
				},
				{
					"key": "/works/OL002W",
					"title": "Dune",
					"author_name": ["Frank Herbert"],
					"first_publish_year": 1965,
					"isbn": ["9780441013593"],
					"cover_i": 12345,
					"subject": ["Science fiction"]
				}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	meta, err := client.SearchByTitle(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)

	assert.Equal(t, "Dune", meta.Title)
	assert.Equal(t, "9780441013593", meta.ISBN)
	assert.Equal(t, 1965, meta.PublicationYear)
	assert.Equal(t, "Science fiction", meta.Genre)
}

func TestSearchByTitle_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"numFound": 0, "docs": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.SearchByTitle(context.Background(), "No Such Book", "")
	assert.Error(t, err)
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1965", 1965},
		{"January 2, 2006", 2006},
		{"2018-10-24", 2018},
		{"Published in 1999 by Ace", 1999},
		{"n.d.", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractYear(tt.input), "input %q", tt.input)
	}
}
