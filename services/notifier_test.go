package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihai888nextlab/ecotag/models"
)

func TestWebhookNotifierPushesUpdate(t *testing.T) {
	var received models.UpdateMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	n.ProductUpdated(&models.ProductRecord{
		Title: "Aria Jacket",
		Price: &models.PriceInfo{Raw: "€129", Amount: "129", Currency: "€"},
		URL:   "https://shop.example/p/1",
	})

	assert.Equal(t, models.ActionProductUpdated, received.Action)
	require.NotNil(t, received.Product)
	assert.Equal(t, "Aria Jacket", received.Product.Title)
	assert.Equal(t, "129", received.Product.Price.Amount)
}

func TestWebhookNotifierDropsOnUnreachableEndpoint(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1/hook")

	assert.NotPanics(t, func() {
		n.ProductUpdated(&models.ProductRecord{Title: "Dropped"})
	})
}

func TestWebhookNotifierDropsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	assert.NotPanics(t, func() {
		n.ProductUpdated(&models.ProductRecord{Title: "Rejected"})
	})
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier()
	assert.NotPanics(t, func() {
		n.ProductUpdated(&models.ProductRecord{Title: "Logged"})
		n.ProductUpdated(&models.ProductRecord{})
	})
}
