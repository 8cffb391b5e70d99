package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/retire-go/internal/cli/connection"
)

// LocalCommand returns the local socket subcommand group.
func LocalCommand() *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Talk to the local management socket",
		Subcommands: []*cli.Command{
			{
				Name:   "ping",
				Usage:  "Check the local socket answers",
				Action: localExec("PING"),
			},
			{
				Name:   "status",
				Usage:  "Show the retirement state",
				Action: localExec("STATUS"),
			},
			{
				Name:   "retire",
				Usage:  "Start a retirement",
				Action: localExec("RETIRE"),
			},
		},
	}
}

func localExec(cmd string) cli.ActionFunc {
	return func(c *cli.Context) error {
		format, err := ParseFormat(ParseGlobalFlags(c).Output)
		if err != nil {
			return err
		}

		client := localClient(c)
		if client == nil {
			return fmt.Errorf("no local socket configured")
		}

		reply, err := client.Execute(cmd)
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(cmd), err)
		}

		w := c.App.Writer
		if done, err := render(w, format, parseFields(reply)); done {
			return err
		}
		fmt.Fprintln(w, reply)
		return nil
	}
}

func localClient(c *cli.Context) *connection.SocketClient {
	if mgr := GetConnectionManager(c); mgr != nil {
		return mgr.Socket()
	}
	if path := ParseGlobalFlags(c).Socket; path != "" {
		return connection.NewSocketClient(path)
	}
	return nil
}

// parseFields splits "k=v k=v" replies into a map. Words without "=" are
// collected under "message".
func parseFields(reply string) map[string]string {
	out := make(map[string]string)
	var words []string
	for _, f := range strings.Fields(reply) {
		if k, v, ok := strings.Cut(f, "="); ok {
			out[k] = v
			continue
		}
		words = append(words, f)
	}
	if len(words) > 0 {
		out["message"] = strings.Join(words, " ")
	}
	return out
}
