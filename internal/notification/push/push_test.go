package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSender_SendBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req batchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 3)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"id": "a"},
				{"id": "b", "error": "invalid token"},
			},
		})
	}))
	defer srv.Close()

	results, err := NewHTTPSender(srv.URL, "key").SendBatch(context.Background(), []Message{
		{ID: "a", Token: "t1"}, {ID: "b", Token: "t2"}, {ID: "c", Token: "t3"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrRejected)
	assert.ErrorIs(t, results[2].Err, ErrRejected)
}

func TestHTTPSender_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSender(srv.URL, "").SendBatch(context.Background(), []Message{{ID: "a"}})
	assert.Error(t, err)
}

func TestHTTPSender_BatchTooLarge(t *testing.T) {
	_, err := NewHTTPSender("http://unused", "").SendBatch(context.Background(), make([]Message, MaxBatchSize+1))
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestLogSender(t *testing.T) {
	results, err := LogSender{}.SendBatch(context.Background(), []Message{{ID: "x"}})
	require.NoError(t, err)
	assert.Equal(t, []Result{{MessageID: "x"}}, results)
}
