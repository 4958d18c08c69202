package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"rizq/internal/client"
	"rizq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dropAfterCommit serves a deal whose PATCH commits but whose connection is
// closed before the response is written.
type dropAfterCommit struct {
	mu      sync.Mutex
	status  models.DealStatus
	commit  bool
	patches atomic.Int32
}

func (d *dropAfterCommit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		d.patches.Add(1)
		var body struct {
			Status models.DealStatus `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if d.commit {
			d.mu.Lock()
			d.status = body.Status
			d.mu.Unlock()
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	case http.MethodGet:
		d.mu.Lock()
		view := models.DealView{Deal: models.Deal{ID: 7, Status: d.status}}
		d.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestUpdateDealStatus_DroppedConnection(t *testing.T) {
	tests := []struct {
		name      string
		commit    bool
		wantErr   bool
		wantState models.DealStatus
	}{
		{"committed change reported as success", true, false, models.DealStatusActive},
		{"lost change stays transient", false, true, models.DealStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &dropAfterCommit{status: models.DealStatusPending, commit: tt.commit}
			ts := httptest.NewServer(h)
			defer ts.Close()

			c, err := client.New(ts.URL, "tok", client.WithRetry(3, 0))
			require.NoError(t, err)

			deal, err := c.UpdateDealStatus(context.Background(), 7, models.DealStatusActive)
			assert.Equal(t, int32(1), h.patches.Load(), "status changes are sent once")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsTransient(err), "got %v", err)
				assert.Nil(t, deal)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantState, deal.Status)
				assert.Equal(t, uint(7), deal.ID)
			}
		})
	}
}

func TestUpdateDealStatus_ConflictIsNotRetried(t *testing.T) {
	var patches atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		patches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error: "Cannot move deal from completed to active",
			Code:  models.CodeInvalidTransition,
		})
	}))
	defer ts.Close()

	c, err := client.New(ts.URL, "tok", client.WithRetry(3, 0))
	require.NoError(t, err)

	_, err = c.UpdateDealStatus(context.Background(), 7, models.DealStatusActive)
	assert.True(t, models.IsCode(err, models.CodeInvalidTransition), "got %v", err)
	assert.Equal(t, int32(1), patches.Load())
}
