package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memFeed struct {
	feed []Notification
}

func (m *memFeed) Recent(_ context.Context, limit int) ([]Notification, error) {
	if limit <= 0 || limit > len(m.feed) {
		limit = len(m.feed)
	}
	return m.feed[:limit], nil
}

func (m *memFeed) MarkRead(_ context.Context, id uuid.UUID) error {
	for i := range m.feed {
		if m.feed[i].ID == id {
			m.feed[i].Read = true
		}
	}
	return nil
}

func (m *memFeed) MarkAllRead(context.Context) error {
	for i := range m.feed {
		m.feed[i].Read = true
	}
	return nil
}

func TestSeverityNormalization(t *testing.T) {
	require.Equal(t, "success", normalizeSeverity("success"))
	require.Equal(t, "warning", normalizeSeverity("warning"))
	require.Equal(t, "error", normalizeSeverity("error"))
	require.Equal(t, "info", normalizeSeverity(""))
	require.Equal(t, "info", normalizeSeverity("catastrophic"))
}

func TestFeedCarriesSeverityThroughListAndAck(t *testing.T) {
	feed := &memFeed{feed: []Notification{
		{ID: uuid.New(), Title: "Sale recorded", Severity: "success", CreatedAt: time.Now()},
		{ID: uuid.New(), Title: "Waste recorded", Severity: "warning", CreatedAt: time.Now()},
	}}
	handler := NewHandler(slog.Default(), feed, nil)

	router := chi.NewRouter()
	handler.MountRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/notifications", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	require.Equal(t, "success", listed[0].Severity)
	require.Equal(t, "warning", listed[1].Severity)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/notifications/"+feed.feed[1].ID.String()+"/read", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, feed.feed[1].Read)
	require.False(t, feed.feed[0].Read)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/notifications/read-all", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, feed.feed[0].Read)
}
