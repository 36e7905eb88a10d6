package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
)

func TestStartAndWaitPublish(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/publish", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer o1.secret", r.Header.Get("Authorization"))
		var req service.StartPublishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cfg-1", req.ConfigurationID)
		assert.Equal(t, "o1.secret", req.OwnerToken)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"attemptId": "a-1", "stage": "validating"})
	})
	mux.HandleFunc("/api/v1/publish/a-1", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		st := service.PublishStatus{AttemptID: "a-1", Stage: deploy.StagePersisting}
		if n >= 3 {
			st.Stage = deploy.StageComplete
			st.Done = true
			st.Result = &deploy.Result{Address: "bella", PublishedURL: "https://bella.maitr.de"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "o1.secret", nil)
	id, err := c.StartPublish(context.Background(), "cfg-1", "bella")
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)

	var seen []deploy.Stage
	st, err := c.WaitPublish(context.Background(), id, 5*time.Millisecond, func(s deploy.Stage, _ string) {
		seen = append(seen, s)
	})
	require.NoError(t, err)
	assert.Equal(t, "https://bella.maitr.de", st.Result.PublishedURL)
	assert.Equal(t, []deploy.Stage{deploy.StagePersisting, deploy.StageComplete}, seen)
}

func TestAPIErrorAndGetRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"tenant not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", nil).Tenant(context.Background(), "ghost")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDecodesJSONBodyWithoutContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no Content-Type: net/http sniffs it as text/plain
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"cfg-1","businessName":"Bella","status":"published"}}`))
	}))
	defer srv.Close()

	cfg, err := New(srv.URL, "", nil).Tenant(context.Background(), "bella")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "cfg-1", cfg.ID)
	assert.Equal(t, "Bella", cfg.BusinessName)
}
