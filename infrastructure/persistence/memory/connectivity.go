package memory

import "sync"

// ConnectivityMonitor is the in-process ports.Connectivity. It starts
// online; transitions are driven externally (health checks, SDK errors)
// and an offline-to-online transition fires the registered callbacks so
// queued order commits get replayed.
type ConnectivityMonitor struct {
	mu        sync.Mutex
	online    bool
	onRestore []func()
}

// NewConnectivityMonitor creates a monitor in the online state.
func NewConnectivityMonitor() *ConnectivityMonitor {
	return &ConnectivityMonitor{online: true}
}

// Online reports the current connectivity state.
func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline updates the state. Restore callbacks run synchronously, in
// registration order, only on the offline-to-online edge.
func (m *ConnectivityMonitor) SetOnline(online bool) {
	m.mu.Lock()
	restored := online && !m.online
	m.online = online
	callbacks := m.onRestore
	m.mu.Unlock()

	if restored {
		for _, cb := range callbacks {
			cb()
		}
	}
}

// OnRestore registers a callback for connectivity restoration.
func (m *ConnectivityMonitor) OnRestore(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRestore = append(m.onRestore, cb)
}
