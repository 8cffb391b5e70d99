package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/retire-go/internal/cli/connection"
)

// RetireStatus mirrors the server's retirement status response.
type RetireStatus struct {
	State        string      `json:"state" yaml:"state"`
	RequestCount int64       `json:"request_count" yaml:"request_count"`
	MaxRequests  int64       `json:"max_requests" yaml:"max_requests"`
	InFlight     bool        `json:"in_flight" yaml:"in_flight"`
	Retirement   *Retirement `json:"retirement,omitempty" yaml:"retirement,omitempty"`
}

// Retirement describes a pending retirement.
type Retirement struct {
	ID         string    `json:"id" yaml:"id"`
	Reason     string    `json:"reason" yaml:"reason"`
	DeferralMS int64     `json:"deferral_ms" yaml:"deferral_ms"`
	ExitAt     time.Time `json:"exit_at" yaml:"exit_at"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the retirement state of the server",
		Action: retireStatus,
	}
}

// RetireCommand returns the retire command.
func RetireCommand() *cli.Command {
	return &cli.Command{
		Name:  "retire",
		Usage: "Start a retirement on the server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the current state without retiring",
			},
		},
		Action: retireNow,
	}
}

func retireStatus(c *cli.Context) error {
	format, err := ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	st, err := fetchStatus(ctx, httpClient(c))
	if err != nil {
		return err
	}
	return printStatus(c, format, "Retirement Status", st)
}

func retireNow(c *cli.Context) error {
	format, err := ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	client := httpClient(c)
	if c.Bool("dry-run") {
		st, err := fetchStatus(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "[DRY RUN] Would retire server", client.BaseURL())
		return printStatus(c, format, "Current Status", st)
	}

	resp, err := client.Post(ctx, "/admin/v1/retire", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var st RetireStatus
	if err := connection.ParseResponse(resp, &st); err != nil {
		var apiErr *connection.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return fmt.Errorf("server is already retiring: %w", err)
		}
		return err
	}
	return printStatus(c, format, "Retirement Started", &st)
}

func fetchStatus(ctx context.Context, client *connection.HTTPClient) (*RetireStatus, error) {
	resp, err := client.Get(ctx, "/admin/v1/retire")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var st RetireStatus
	if err := connection.ParseResponse(resp, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func printStatus(c *cli.Context, format Format, title string, st *RetireStatus) error {
	w := c.App.Writer
	if done, err := render(w, format, st); done {
		return err
	}

	fmt.Fprintf(w, "%s\n\n", title)
	fmt.Fprintf(w, "State:          %s\n", st.State)
	if st.MaxRequests > 0 {
		fmt.Fprintf(w, "Requests:       %d / %d\n", st.RequestCount, st.MaxRequests)
	} else {
		fmt.Fprintf(w, "Requests:       %d (no threshold)\n", st.RequestCount)
	}
	fmt.Fprintf(w, "In Flight:      %t\n", st.InFlight)
	if r := st.Retirement; r != nil {
		fmt.Fprintf(w, "Retirement ID:  %s\n", r.ID)
		fmt.Fprintf(w, "Reason:         %s\n", r.Reason)
		fmt.Fprintf(w, "Deferral:       %s\n", time.Duration(r.DeferralMS)*time.Millisecond)
		fmt.Fprintf(w, "Exit At:        %s\n", r.ExitAt.Format(time.RFC3339))
	}
	return nil
}
