package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsMember(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Service-Key")
		gotPath = r.URL.Path

		switch r.URL.Path {
		case "/api/v1/spaces/1/members/10":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/spaces/1/members/11":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewRosterClient(srv.URL, "roster-key", zap.NewNop())
	ctx := context.Background()

	present, err := c.IsMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "roster-key", gotKey)
	assert.Equal(t, "/api/v1/spaces/1/members/10", gotPath)

	present, err = c.IsMember(ctx, 1, 11)
	require.NoError(t, err, "absence from the roster is data, not an error")
	assert.False(t, present)

	_, err = c.IsMember(ctx, 1, 12)
	assert.Error(t, err)
}
