package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryPriceRange_Success(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"category": "headphones",
			"min": 1499,
			"median": 14999,
			"max": 34999,
			"currency": "INR",
			"sample_size": 412
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	pr, err := client.CategoryPriceRange(context.Background(), "headphones")
	require.NoError(t, err)

	assert.Equal(t, "/v1/categories/headphones/prices", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "headphones", pr.Category)
	assert.Equal(t, 1499.0, pr.Min)
	assert.Equal(t, 14999.0, pr.Median)
	assert.Equal(t, 34999.0, pr.Max)
	assert.Equal(t, 412, pr.SampleSize)
}

func TestCategoryPriceRange_UnknownCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CategoryPriceRange(context.Background(), "widgets")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), "widgets")
}

func TestCategoryPriceRange_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CategoryPriceRange(context.Background(), "headphones")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownCategory)
}

func TestCategoryPriceRange_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"category":"headphones","min":1,"median":2,"max":3,"currency":"INR","sample_size":5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CategoryPriceRange(context.Background(), "headphones")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}
