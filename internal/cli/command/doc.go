// Package command provides CLI command definitions for retire-cli.
//
// Commands:
//
//   - status: show the retirement state of a server
//   - retire: start a retirement on demand
//   - health, ready: probe a server
//   - local: talk to the local management socket (ping, status, retire)
//
// Commands use urfave/cli/v2 and print either a human-readable summary or
// JSON/YAML selected with --output.
package command
