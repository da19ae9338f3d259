package platform

import (
	"sort"
	"sync"

	"tradekeep/internal/config"
	"tradekeep/internal/platform/email"
	"tradekeep/internal/platform/instagram"
	"tradekeep/internal/platform/linkedin"
	"tradekeep/internal/platform/twitter"
)

// Registry 平台适配器注册表
// 所有平台派发都经过这里，未注册的平台一律按不支持处理
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// NewRegistryFromConfig 根据配置构建注册表并接入全部内置适配器
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	timeout := cfg.Publishing.PlatformTimeoutDuration()
	mock := cfg.Social.MockMode

	r := NewRegistry()
	r.Register(twitter.NewClient(cfg.Social.Twitter, mock, timeout))
	r.Register(linkedin.NewClient(cfg.Social.LinkedIn, mock, timeout))
	r.Register(instagram.NewClient(cfg.Social.Instagram, mock, timeout))
	r.Register(email.NewClient(cfg.SMTP, cfg.Social.Email.Recipients, mock))
	return r
}

// Register 注册适配器，同名覆盖
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Name()] = adapter
}

// Get 按平台名获取适配器
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names 已注册的平台名（有序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All 全部适配器（按平台名排序）
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		adapters = append(adapters, r.adapters[name])
	}
	return adapters
}
