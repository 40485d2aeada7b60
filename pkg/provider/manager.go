package provider

import (
	"fmt"
	"sort"
	"sync"

	"quoteboard/pkg/provider/core"
)

// ProviderManager 行情提供商注册表
type ProviderManager struct {
	providers map[string]core.QuoteProvider
	mu        sync.RWMutex
}

// NewProviderManager 创建新的提供商管理器
func NewProviderManager() *ProviderManager {
	return &ProviderManager{
		providers: make(map[string]core.QuoteProvider),
	}
}

// Register 注册行情提供商，同名覆盖
func (m *ProviderManager) Register(name string, provider core.QuoteProvider) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[name] = provider
	return nil
}

// Get 按名称获取行情提供商
func (m *ProviderManager) Get(name string) (core.QuoteProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, exists := m.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider '%s' not found", name)
	}
	return provider, nil
}

// List 返回已注册的提供商名称，按字母排序
func (m *ProviderManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister 注销提供商
func (m *ProviderManager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.providers[name]; !exists {
		return fmt.Errorf("provider '%s' not found", name)
	}
	delete(m.providers, name)
	return nil
}

// Close 关闭管理器，清理所有提供商资源
func (m *ProviderManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, provider := range m.providers {
		if closable, ok := provider.(core.Closable); ok {
			if err := closable.Close(); err != nil {
				errs = append(errs, fmt.Errorf("error closing provider '%s': %w", name, err))
			}
		}
	}
	m.providers = make(map[string]core.QuoteProvider)

	if len(errs) > 0 {
		return fmt.Errorf("errors occurred while closing providers: %v", errs)
	}
	return nil
}
