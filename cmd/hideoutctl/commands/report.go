package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/routes"
	"github.com/psykzz/avalon-hideout-mapper/internal/report"
)

type reportFlags struct {
	Zone     string
	Guild    string
	Server   string
	Notes    string
	Endpoint string
	Timeout  time.Duration
}

// reportResponse is either a created issue or an error message.
type reportResponse struct {
	Success     bool   `json:"success"`
	IssueURL    string `json:"issueUrl"`
	IssueNumber int    `json:"issueNumber"`
	Error       string `json:"error"`
}

func newReportCmd() *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Report a hideout to a running hideouts service",
		GroupID: "reports",
		Args:    cobra.NoArgs,
		Long: `Submit a hideout report. The fields are checked locally first, then
posted to the service which opens an issue for review.

Examples:
  hideoutctl report --zone AVALON-LIONEL-01 --guild "Night Watch" --server Europe
  hideoutctl report -z TNL-001 -g "Roads Runners" -s America --notes "Core" --endpoint https://hideouts.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := reportFields(flags)
			if _, verr := report.Validate(fields); verr != nil {
				return verr
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.Timeout)
			defer cancel()

			res, err := submitReport(ctx, http.DefaultClient, flags.Endpoint, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created issue #%d: %s\n", res.IssueNumber, res.IssueURL)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.Zone, "zone", "z", "", "Zone name")
	f.StringVarP(&flags.Guild, "guild", "g", "", "Guild name")
	f.StringVarP(&flags.Server, "server", "s", "", "Server: "+domain.ServerChoices())
	f.StringVar(&flags.Notes, "notes", "", "Additional notes (optional)")
	f.StringVarP(&flags.Endpoint, "endpoint", "e", "http://localhost:8080", "Base URL of the hideouts service")
	f.DurationVar(&flags.Timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}

// reportFields trims every value and leaves out empty notes.
func reportFields(f *reportFlags) map[string]any {
	fields := map[string]any{
		"zone":   strings.TrimSpace(f.Zone),
		"guild":  strings.TrimSpace(f.Guild),
		"server": strings.TrimSpace(f.Server),
	}
	if notes := strings.TrimSpace(f.Notes); notes != "" {
		fields["additional_notes"] = notes
	}
	return fields
}

func submitReport(ctx context.Context, client *http.Client, endpoint string, fields map[string]any) (*reportResponse, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	url := strings.TrimRight(endpoint, "/") + routes.ReportPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var res reportResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if resp.StatusCode != http.StatusCreated {
		if res.Error == "" {
			res.Error = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("report rejected (status %d): %s", resp.StatusCode, res.Error)
	}
	if !res.Success {
		return nil, errors.New("report was not created")
	}
	return &res, nil
}
