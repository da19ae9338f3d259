package linkedin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/socialiface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishUnconfiguredFailsDeterministically(t *testing.T) {
	c := NewClient(config.LinkedInConfig{}, false, time.Second)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "深度分析"})
	assert.False(t, res.Success)
	assert.Equal(t, "LinkedIn 凭证未配置", res.Error)
}

func TestPublishPostsUGC(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/ugcPosts", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"urn:li:share:6900000000000000000"}`))
	}))
	defer server.Close()

	c := NewClient(config.LinkedInConfig{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		AuthorURN:   "urn:li:organization:1234",
	}, false, time.Second)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "深度分析"})
	require.True(t, res.Success, "发布失败: %s", res.Error)
	assert.Equal(t, "urn:li:share:6900000000000000000", res.PostID)
	assert.Contains(t, res.URL, res.PostID)
}

func TestDeleteUnsupported(t *testing.T) {
	c := NewClient(config.LinkedInConfig{}, true, time.Second)
	err := c.Delete(context.Background(), "urn:li:share:1")
	assert.True(t, errors.Is(err, socialiface.ErrDeleteUnsupported))
}
