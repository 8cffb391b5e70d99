package connection

// Target describes the server a command talks to.
type Target struct {
	Server string
	Token  string
	Socket string
}

// Manager builds clients for a target and reuses them across commands.
type Manager struct {
	target Target
	http   *HTTPClient
	socket *SocketClient
}

// NewManager creates a new connection manager.
func NewManager(target Target) *Manager {
	return &Manager{target: target}
}

// Target returns the configured target.
func (m *Manager) Target() Target {
	return m.target
}

// HTTP returns the admin API client.
func (m *Manager) HTTP() *HTTPClient {
	if m.http == nil {
		m.http = NewHTTPClient(m.target.Server, m.target.Token)
	}
	return m.http
}

// Socket returns the local socket client, or nil when no socket is
// configured.
func (m *Manager) Socket() *SocketClient {
	if m.target.Socket == "" {
		return nil
	}
	if m.socket == nil {
		m.socket = NewSocketClient(m.target.Socket)
	}
	return m.socket
}

// Close releases open connections.
func (m *Manager) Close() error {
	if m.socket != nil {
		return m.socket.Close()
	}
	return nil
}
