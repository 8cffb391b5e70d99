package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/retire-go/internal/cli/connection"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the server is alive",
		Action: probe("/health"),
	}
}

// ReadyCommand returns the ready command. A retiring server is alive but
// not ready.
func ReadyCommand() *cli.Command {
	return &cli.Command{
		Name:   "ready",
		Usage:  "Check that the server accepts traffic",
		Action: probe("/ready"),
	}
}

type probeResult struct {
	Target string `json:"target" yaml:"target"`
	Path   string `json:"path" yaml:"path"`
	OK     bool   `json:"ok" yaml:"ok"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func probe(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		format, err := ParseFormat(ParseGlobalFlags(c).Output)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
		defer cancel()

		client := httpClient(c)
		result := probeResult{Target: client.BaseURL(), Path: path, OK: true}

		resp, err := client.Get(ctx, path)
		if err == nil {
			err = connection.ParseResponse(resp, nil)
		}
		if err != nil {
			result.OK = false
			result.Error = err.Error()
		}

		w := c.App.Writer
		if done, rerr := render(w, format, result); done {
			if rerr != nil {
				return rerr
			}
		} else if result.OK {
			fmt.Fprintf(w, "✓ %s ok\n  Target: %s\n", path, result.Target)
		} else {
			fmt.Fprintf(w, "✗ %s failed: %s\n  Target: %s\n", path, result.Error, result.Target)
		}

		if !result.OK {
			return fmt.Errorf("%s check failed", path)
		}
		return nil
	}
}
