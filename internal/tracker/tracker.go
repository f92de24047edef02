// Package tracker is the write side of hideout reports: every accepted
// report becomes one issue in an external tracker.
package tracker

import (
	"context"
	"fmt"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// Tracker creates issues. Implementations make a single attempt per call.
type Tracker interface {
	CreateIssue(ctx context.Context, issue domain.Issue) (domain.IssueRef, error)
}

// GatewayError reports a failed call to the tracker.
// StatusCode is 0 when the request never got a response.
type GatewayError struct {
	Tracker    string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: create issue failed with status %d: %v", e.Tracker, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: create issue failed: %v", e.Tracker, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
