package report

import (
	"fmt"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// DefaultNotes replaces absent additional notes in the issue body.
const DefaultNotes = "No additional notes provided"

const bodyTemplate = `## Hideout Information

**Zone Name:**
%s

**Guild Name:**
%s

**Server:**
%s

**Date Spotted:**
%s

**Additional Notes:**
%s

---

**Verification:**
- [ ] I have verified the zone name is correct
- [ ] I have verified the guild name is spelled correctly
- [ ] I have selected the correct server%s
`

const footer = "\n---\n\n_This report was submitted via the automated submission endpoint._"

// Formatter turns a validated request into a tracker issue.
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a formatter. A nil clock uses time.Now.
func NewFormatter(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

// Format builds the issue. Only interpolated user values are escaped; the
// template itself, and the server enum, are written as is.
func (f *Formatter) Format(req Request, geoInfo string, includeGeo bool) domain.Issue {
	notes := DefaultNotes
	if req.Notes != "" {
		notes = EscapeMarkdown(req.Notes)
	}

	tail := footer
	if includeGeo {
		tail += fmt.Sprintf("\n_Requester info: %s_", EscapeMarkdown(geoInfo))
	}

	body := fmt.Sprintf(bodyTemplate,
		EscapeMarkdown(req.Zone),
		EscapeMarkdown(req.Guild),
		req.Server,
		f.now().UTC().Format("2006-01-02"),
		notes,
		tail,
	)

	return domain.Issue{
		Title:  fmt.Sprintf("[HIDEOUT] %s in %s", req.Guild, req.Zone),
		Body:   body,
		Labels: []string{domain.ReportLabel},
	}
}
