package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenario-analysis/web/internal/analysis"
	"scenario-analysis/web/internal/form"
)

func dialSession(t *testing.T, analyzer analysis.Analyzer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(t, analyzer))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/analyze"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) SessionEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event SessionEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestSessionEmitsSubmittingThenSuccess(t *testing.T) {
	analyzer := &stubAnalyzer{resp: completeResponse()}
	conn := dialSession(t, analyzer)

	require.NoError(t, conn.WriteJSON(SessionRequest{Scenario: "s", Constraints: "Budget: $10,000, Deadline: 6 weeks"}))

	pending := readEvent(t, conn)
	assert.Equal(t, EventState, pending.Type)
	assert.Equal(t, form.PhaseSubmitting, pending.Phase)
	assert.True(t, pending.Busy)
	assert.Equal(t, form.LabelBusy, pending.Label)
	assert.Nil(t, pending.Result)

	done := readEvent(t, conn)
	assert.Equal(t, form.PhaseSuccess, done.Phase)
	assert.False(t, done.Busy)
	assert.Equal(t, pending.ID, done.ID)
	require.NotNil(t, done.Result)
	assert.Equal(t, completeResponse(), *done.Result)

	calls := analyzer.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"Budget: $10,000", "Deadline: 6 weeks"}, calls[0].Constraints)
}

func TestSessionFailureThenResubmit(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("timeout")}
	conn := dialSession(t, analyzer)

	require.NoError(t, conn.WriteJSON(SessionRequest{Scenario: "s", Constraints: "c"}))
	assert.Equal(t, form.PhaseSubmitting, readEvent(t, conn).Phase)
	failed := readEvent(t, conn)
	assert.Equal(t, form.PhaseError, failed.Phase)
	assert.Equal(t, form.GenericError, failed.Message)
	assert.False(t, failed.Busy)

	analyzer.mu.Lock()
	analyzer.err = nil
	analyzer.resp = completeResponse()
	analyzer.mu.Unlock()

	require.NoError(t, conn.WriteJSON(SessionRequest{Scenario: "s", Constraints: "c"}))
	pending := readEvent(t, conn)
	assert.Equal(t, form.PhaseSubmitting, pending.Phase)
	assert.Empty(t, pending.Message)
	assert.Nil(t, pending.Result)
	assert.Equal(t, form.PhaseSuccess, readEvent(t, conn).Phase)
}

func TestSessionRejectsInvalidInput(t *testing.T) {
	analyzer := &stubAnalyzer{resp: completeResponse()}
	conn := dialSession(t, analyzer)

	require.NoError(t, conn.WriteJSON(SessionRequest{Scenario: "s"}))
	invalid := readEvent(t, conn)
	assert.Equal(t, EventInvalid, invalid.Type)
	assert.Equal(t, form.RequiredMessage, invalid.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	invalid = readEvent(t, conn)
	assert.Equal(t, EventInvalid, invalid.Type)
	assert.NotEmpty(t, invalid.Message)

	assert.Empty(t, analyzer.calls())
}

func TestSessionRejectsForeignOrigin(t *testing.T) {
	server, err := NewServer(Config{
		Analyzer:       &stubAnalyzer{},
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)
	router, err := server.Router()
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/analyze"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
