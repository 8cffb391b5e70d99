// Package connection provides connection management for retire-cli.
//
//   - http.go: HTTP/HTTPS client for the admin API
//   - socket.go: Unix socket client for the local management socket
//   - manager.go: builds and caches clients for the selected target
package connection
