package domain

// Issue is what gets created in the external tracker.
type Issue struct {
	Title  string
	Body   string
	Labels []string
}

// IssueRef points at an issue created by the tracker.
type IssueRef struct {
	Number int
	URL    string
}

// ReportLabel is attached to every issue created from a hideout report.
const ReportLabel = "hideout-report"
