package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/retire-go/internal/cli/connection"
	"github.com/yndnr/retire-go/internal/infra/buildinfo"
)

const metadataConnMgr = "connMgr"

// App creates the CLI application.
func App() *cli.App {
	info := buildinfo.Get()
	return &cli.App{
		Name:    "retire-cli",
		Usage:   "Inspect and control retire-server processes",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			StatusCommand(),
			RetireCommand(),
			HealthCommand(),
			ReadyCommand(),
			LocalCommand(),
		},
		Before: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			c.App.Metadata[metadataConnMgr] = connection.NewManager(connection.Target{
				Server: flags.Server,
				Token:  flags.Token,
				Socket: flags.Socket,
			})
			return nil
		},
		After: func(c *cli.Context) error {
			if mgr := GetConnectionManager(c); mgr != nil {
				return mgr.Close()
			}
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "retire-server address (e.g., localhost:8080)",
			EnvVars: []string{"RETIRE_SERVER"},
			Value:   "localhost:8080",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Admin API bearer token",
			EnvVars: []string{"RETIRE_ADMIN_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "Local management socket path",
			EnvVars: []string{"RETIRE_LOCAL_SOCKET"},
			Value:   "/var/run/retire-server/retire-server.sock",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Token  string
	Socket string

	Output  string // table, json, yaml
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Token:   c.String("token"),
		Socket:  c.String("socket"),
		Output:  c.String("output"),
		Verbose: c.Bool("verbose"),
	}
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[metadataConnMgr].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// httpClient returns the admin API client, building one from the flags when
// Before did not run.
func httpClient(c *cli.Context) *connection.HTTPClient {
	if mgr := GetConnectionManager(c); mgr != nil {
		return mgr.HTTP()
	}
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, flags.Token)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
