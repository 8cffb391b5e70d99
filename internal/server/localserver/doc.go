// Package localserver provides a Unix socket server for local management.
//
// It accepts one command per line and answers with one line starting with
// "OK" or "ERR":
//
//	PING    -> OK pong
//	STATUS  -> OK state=<state> count=<n> max=<n> in_flight=<bool>
//	RETIRE  -> OK retiring | ERR already retiring | ERR manual retirement disabled
//
// Access is controlled by file system permissions on the socket; no API key
// is involved.
package localserver
