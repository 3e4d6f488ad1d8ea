package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chocolate", req.Keyword)

		_, _ = w.Write([]byte(`[
			{"catalogCode": "CHOCO-9", "name": "Chocolate Dipped Strawberries", "minPrice": 29.99, "url": "choco-9"},
			{"name": "no sku"},
			"not an object"
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://shop.test", time.Second)
	products, err := c.FetchKeyword(context.Background(), "chocolate")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "CHOCO-9", products[0].SKU)
	assert.Equal(t, "https://shop.test/product/choco-9", products[0].PDPURL)
}

func TestClientFetchKeywordNonListIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL, "", time.Second).FetchKeyword(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClientFetchKeywordErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad-json" {
			_, _ = w.Write([]byte(`[{"catalogCode":`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/down", "", time.Second).FetchKeyword(context.Background(), "x")
	assert.Error(t, err)

	_, err = NewClient(srv.URL+"/bad-json", "", time.Second).FetchKeyword(context.Background(), "x")
	assert.Error(t, err)
}
