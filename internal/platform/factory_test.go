package platform

import (
	"context"
	"testing"

	"tradekeep/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name string
	tag  string
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Publish(ctx context.Context, post *Post) *PublishResult {
	return &PublishResult{Success: true, PostID: s.tag}
}

func (s *stubAdapter) AccountStatus(ctx context.Context) *AccountStatus {
	return &AccountStatus{Platform: s.name, Connected: true}
}

func (s *stubAdapter) Delete(ctx context.Context, postID string) error {
	return ErrDeleteUnsupported
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("twitter")
	assert.False(t, ok)

	r.Register(&stubAdapter{name: "twitter", tag: "a"})
	adapter, ok := r.Get("twitter")
	require.True(t, ok)
	assert.Equal(t, "twitter", adapter.Name())

	// 同名覆盖
	r.Register(&stubAdapter{name: "twitter", tag: "b"})
	adapter, _ = r.Get("twitter")
	res := adapter.Publish(context.Background(), &Post{})
	assert.Equal(t, "b", res.PostID)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAdapter{name: "linkedin"})
	r.Register(&stubAdapter{name: "email"})
	r.Register(&stubAdapter{name: "twitter"})

	assert.Equal(t, []string{"email", "linkedin", "twitter"}, r.Names())
	assert.Len(t, r.All(), 3)
}

func TestNewRegistryFromConfigRegistersAllPlatforms(t *testing.T) {
	cfg := &config.Config{}
	r := NewRegistryFromConfig(cfg)

	assert.Equal(t, []string{
		PlatformEmail, PlatformInstagram, PlatformLinkedIn, PlatformTwitter,
	}, r.Names())
}
