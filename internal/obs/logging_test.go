package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerIncludesAnnotations(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "debug")

	router := chi.NewRouter()
	router.Use(RequestLogger{Logger: logger}.Middleware)
	router.Post("/api/v1/budgets", func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "budget_id", "42")
		Annotate(r.Context(), "pricing_mode", "aggregate")
		w.WriteHeader(http.StatusCreated)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/budgets", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["message"])
	require.Equal(t, "info", line["level"])
	require.Equal(t, "/api/v1/budgets", line["route"])
	require.EqualValues(t, 201, line["status"])
	require.Equal(t, "42", line["budget_id"])
	require.Equal(t, "aggregate", line["pricing_mode"])
}

func TestRequestLoggerLevels(t *testing.T) {
	l := RequestLogger{Logger: newLogger(&bytes.Buffer{}, "json", "debug")}
	cases := []struct {
		path   string
		status int
		level  string
	}{
		{"/api/v1/budgets", http.StatusInternalServerError, "error"},
		{"/api/v1/budgets", http.StatusUnprocessableEntity, "warn"},
		{"/health/live", http.StatusOK, "debug"},
		{"/api/v1/products", http.StatusOK, "info"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		l.Logger = l.Logger.Output(&buf)
		l.event(tc.path, tc.status).Msg("x")
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, tc.level, line["level"], tc.path)
	}
}

func TestAnnotateWithoutBagIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NotPanics(t, func() { Annotate(req.Context(), "budget_id", "1") })

	ctx, fields := WithFields(req.Context())
	Annotate(ctx, "a", "1")
	Annotate(ctx, "b", "2")
	Annotate(ctx, "a", "3")
	var got []string
	fields.Each(func(k, v string) { got = append(got, k+"="+v) })
	require.Equal(t, []string{"a=3", "b=2"}, got)
}

func TestDescribeSQL(t *testing.T) {
	name, op := describeSQL("-- name: CreateBudget :one\nINSERT INTO budgets (user_id) VALUES ($1) RETURNING id")
	require.Equal(t, "CreateBudget", name)
	require.Equal(t, "INSERT", op)

	name, op = describeSQL("  select 1")
	require.Equal(t, "select", name)
	require.Equal(t, "SELECT", op)

	name, op = describeSQL("")
	require.Equal(t, "query", name)
	require.Equal(t, "UNKNOWN", op)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{5, 12.5}, ParseBucketsCSV(" 5, ,abc,-1,12.5"))
	require.Nil(t, ParseBucketsCSV(""))
}
