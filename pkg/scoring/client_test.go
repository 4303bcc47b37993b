package scoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/summarize/pkg/ports"
	"github.com/aretw0/summarize/pkg/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var request = ports.ScoreRequest{
	Context:         "Rivers carry water to the sea.",
	Question:        "Summarize the text.",
	StudentResponse: "Rivers move water into the ocean.",
}

func TestClient_Score(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/score/summary", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Main Idea":"Good","Wording":"Fair"}`))
	}))
	defer srv.Close()

	client := scoring.New(srv.URL + "/")
	payload, err := client.Score(context.Background(), request)
	require.NoError(t, err)

	assert.JSONEq(t, `{"Main Idea":"Good","Wording":"Fair"}`, string(payload))
	assert.Equal(t, map[string]string{
		"context":          request.Context,
		"question":         request.Question,
		"student_response": request.StudentResponse,
	}, got)
}

func TestClient_Endpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/score/summary", scoring.New("").Endpoint())
	assert.Equal(t, "http://scorer:9000/v2/score", scoring.New("http://scorer:9000/", scoring.WithPath("v2/score")).Endpoint())
	assert.Equal(t, "http://scorer:9000", scoring.New("http://scorer:9000", scoring.WithPath("")).Endpoint())
}

func TestClient_AnyStatus2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"error":"model returned prose"}`))
	}))
	defer srv.Close()

	payload, err := scoring.New(srv.URL).Score(context.Background(), request)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"model returned prose"}`, string(payload))
}

func TestClient_Failures(t *testing.T) {
	t.Run("Non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := scoring.New(srv.URL).Score(context.Background(), request)
		var sErr *scoring.StatusError
		require.True(t, errors.As(err, &sErr))
		assert.Equal(t, http.StatusBadGateway, sErr.StatusCode)
		assert.Equal(t, "upstream exploded", sErr.Body)
	})

	t.Run("Not JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("Main Idea: Good"))
		}))
		defer srv.Close()

		_, err := scoring.New(srv.URL).Score(context.Background(), request)
		assert.Error(t, err)
	})

	t.Run("Transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := scoring.New(url).Score(context.Background(), request)
		assert.Error(t, err)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		_, err := scoring.New(srv.URL, scoring.WithTimeout(50*time.Millisecond)).Score(context.Background(), request)
		assert.Error(t, err)
	})
}
