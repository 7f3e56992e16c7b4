package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAnalyzePostsRequest(t *testing.T) {
	var calls atomic.Int32
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scenario/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"scenarioSummary": "Launch a store",
			"potentialPitfalls": ["scope creep", "budget overrun"],
			"proposedStrategies": ["phase delivery"],
			"recommendedResources": ["PMBOK"],
			"disclaimer": "Not advice",
			"extra": true
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL + "/scenario/analyze"})
	require.NoError(t, err)

	resp, err := client.Analyze(context.Background(), Request{
		Scenario:    "Launch a store",
		Constraints: ParseConstraints("Budget: $10,000, Deadline: 6 weeks"),
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Launch a store", got.Scenario)
	assert.Equal(t, []string{"Budget: $10,000", "Deadline: 6 weeks"}, got.Constraints)
	assert.Equal(t, "Launch a store", resp.ScenarioSummary)
	assert.Equal(t, []string{"scope creep", "budget overrun"}, resp.PotentialPitfalls)
	assert.Equal(t, []string{"phase delivery"}, resp.ProposedStrategies)
	assert.Equal(t, []string{"PMBOK"}, resp.RecommendedResources)
	assert.Equal(t, "Not advice", resp.Disclaimer)
}

func TestClientAnalyzeSendsEmptyConstraintsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), Request{Scenario: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["constraints"]))
}

func TestClientAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		isStatus bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			isStatus: true,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			isStatus: true,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"scenarioSummary":`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client, err := NewClient(Config{Endpoint: srv.URL})
			require.NoError(t, err)

			_, err = client.Analyze(context.Background(), Request{Scenario: "x", Constraints: []string{"y"}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAnalysisFailed)
			assert.Equal(t, tc.isStatus, errors.Is(err, ErrStatus))
		})
	}
}

func TestClientAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client, err := NewClient(Config{Endpoint: endpoint, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), Request{Scenario: "x"})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.Equal(t, DefaultTimeout, client.Timeout())
}

func TestNewClientRejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"ftp://example.com/x", "/scenario/analyze", "http://"} {
		t.Run(endpoint, func(t *testing.T) {
			_, err := NewClient(Config{Endpoint: endpoint})
			assert.ErrorIs(t, err, ErrInvalidEndpoint)
		})
	}
}

func TestResponseSectionsSkipsAbsentLists(t *testing.T) {
	resp := Response{
		ScenarioSummary:      "s",
		ProposedStrategies:   []string{"a", "b"},
		RecommendedResources: []string{},
	}
	sections := resp.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, TitleStrategies, sections[0].Title)
	assert.Equal(t, []string{"a", "b"}, sections[0].Items)
}

func TestResponseSectionsOrder(t *testing.T) {
	resp := Response{
		PotentialPitfalls:    []string{"p"},
		ProposedStrategies:   []string{"s"},
		RecommendedResources: []string{"r"},
	}
	var titles []string
	for _, section := range resp.Sections() {
		titles = append(titles, section.Title)
	}
	assert.Equal(t, []string{TitlePitfalls, TitleStrategies, TitleResources}, titles)
}
