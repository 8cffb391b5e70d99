// Package main provides the entry point for retire-cli.
//
// The CLI talks to a running retire-server over its admin API:
//
//   - status: show the retirement state and request count
//   - retire: start a retirement on demand
//   - health, ready: probe the server the way a load balancer would
//   - local: the same controls over the local management socket
//
// Usage:
//
//	retire-cli [global flags] command [flags]
//	retire-cli --server 10.0.0.5:8080 --token $TOKEN retire
//	retire-cli -o json status
package main
