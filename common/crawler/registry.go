package crawler

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"
)

var (
	portalRegistry     = make(map[string]PortalAdapter)
	portalRegistryLock sync.RWMutex
)

// RegisterPortal validates and registers an adapter under its name.
func RegisterPortal(adapter PortalAdapter) error {
	if err := adapter.Validate(); err != nil {
		return err
	}

	portalRegistryLock.Lock()
	defer portalRegistryLock.Unlock()

	if _, exists := portalRegistry[adapter.Name]; exists {
		return fmt.Errorf("%w: %s registered twice", ErrInvalidAdapter, adapter.Name)
	}
	portalRegistry[adapter.Name] = adapter
	return nil
}

// MustRegisterPortal is RegisterPortal for package init functions.
func MustRegisterPortal(adapter PortalAdapter) {
	if err := RegisterPortal(adapter); err != nil {
		panic(err)
	}
}

// GetPortal returns the adapter registered under name.
func GetPortal(name string) (PortalAdapter, error) {
	portalRegistryLock.RLock()
	defer portalRegistryLock.RUnlock()

	adapter, ok := portalRegistry[name]
	if !ok {
		return PortalAdapter{}, fmt.Errorf("%w: %s", ErrUnknownPortal, name)
	}
	return adapter, nil
}

// PortalForURL finds the adapter whose host matches portalURL. A bare
// portal name is accepted as well.
func PortalForURL(portalURL string) (PortalAdapter, error) {
	portalURL = strings.TrimSpace(portalURL)
	if adapter, err := GetPortal(portalURL); err == nil {
		return adapter, nil
	}

	raw := portalURL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return PortalAdapter{}, fmt.Errorf("%w: %s", ErrUnknownPortal, portalURL)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	portalRegistryLock.RLock()
	defer portalRegistryLock.RUnlock()

	for _, adapter := range portalRegistry {
		h := adapter.Host()
		if host == h || strings.HasSuffix(host, "."+h) {
			return adapter, nil
		}
	}
	return PortalAdapter{}, fmt.Errorf("%w: %s", ErrUnknownPortal, portalURL)
}

// GetPortalRegistry returns a copy of the registry.
func GetPortalRegistry() map[string]PortalAdapter {
	portalRegistryLock.RLock()
	defer portalRegistryLock.RUnlock()

	registryCopy := make(map[string]PortalAdapter, len(portalRegistry))
	maps.Copy(registryCopy, portalRegistry)

	return registryCopy
}

// PortalNames returns the registered names in sorted order.
func PortalNames() []string {
	portalRegistryLock.RLock()
	defer portalRegistryLock.RUnlock()

	return slices.Sorted(maps.Keys(portalRegistry))
}
