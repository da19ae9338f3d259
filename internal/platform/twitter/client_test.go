package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/socialiface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishUnconfiguredFailsDeterministically(t *testing.T) {
	c := NewClient(config.TwitterConfig{}, false, time.Second)

	for i := 0; i < 3; i++ {
		res := c.Publish(context.Background(), &socialiface.Post{Text: "hello"})
		assert.False(t, res.Success)
		assert.False(t, res.Mock)
		assert.Equal(t, "Twitter 凭证未配置", res.Error)
	}
}

func TestPublishMockMode(t *testing.T) {
	c := NewClient(config.TwitterConfig{}, true, time.Second)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "hello"})
	assert.True(t, res.Success)
	assert.True(t, res.Mock)
	assert.True(t, strings.HasPrefix(res.PostID, "mock-"))
	assert.Contains(t, res.URL, res.PostID)
}

func TestPublishPostsTweet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/2/tweets", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1790000000000000001"}}`))
	}))
	defer server.Close()

	c := NewClient(config.TwitterConfig{BaseURL: server.URL, AccessToken: "test-token"}, false, time.Second)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "市场观察"})
	require.True(t, res.Success, "发布失败: %s", res.Error)
	assert.False(t, res.Mock)
	assert.Equal(t, "1790000000000000001", res.PostID)
	assert.Equal(t, "https://twitter.com/i/web/status/1790000000000000001", res.URL)
}

func TestPublishRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(config.TwitterConfig{BaseURL: server.URL, AccessToken: "test-token"}, false, time.Second)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "x"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Twitter 发布失败")
}

func TestDelete(t *testing.T) {
	var deletedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(config.TwitterConfig{BaseURL: server.URL, AccessToken: "test-token"}, false, time.Second)

	require.NoError(t, c.Delete(context.Background(), "12345"))
	assert.Equal(t, "/2/tweets/12345", deletedPath)
}

func TestAccountStatusUnconfigured(t *testing.T) {
	c := NewClient(config.TwitterConfig{}, false, time.Second)
	status := c.AccountStatus(context.Background())
	assert.False(t, status.Connected)
	assert.Equal(t, "Twitter 凭证未配置", status.Error)

	mock := NewClient(config.TwitterConfig{}, true, time.Second)
	status = mock.AccountStatus(context.Background())
	assert.True(t, status.Connected)
	assert.True(t, status.Mock)
	assert.Empty(t, status.Error)
}
