package connection

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"
)

// ErrCommandFailed is returned when the local socket answers with ERR.
var ErrCommandFailed = errors.New("local command failed")

// SocketClient talks to the local management socket.
type SocketClient struct {
	path    string
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

// NewSocketClient creates a new socket client.
func NewSocketClient(socketPath string) *SocketClient {
	return &SocketClient{path: socketPath, timeout: 5 * time.Second}
}

// Connect connects to the local socket.
func (c *SocketClient) Connect() error {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the socket connection.
func (c *SocketClient) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Execute sends a command and returns the reply line without its status
// prefix. Replies starting with ERR are returned as errors wrapping
// ErrCommandFailed.
func (c *SocketClient) Execute(cmd string) (string, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return "", err
		}
	}

	c.conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)

	if rest, ok := strings.CutPrefix(line, "ERR"); ok {
		return "", errors.Join(ErrCommandFailed, errors.New(strings.TrimSpace(rest)))
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "OK")), nil
}
