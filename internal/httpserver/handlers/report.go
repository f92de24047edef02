package handlers

import (
	"errors"
	"net/http"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/report"
)

type createReportResponse struct {
	Success     bool   `json:"success"`
	IssueURL    string `json:"issueUrl"`
	IssueNumber int    `json:"issueNumber"`
}

var statusByKind = map[report.Kind]int{
	report.KindMethodNotAllowed: http.StatusMethodNotAllowed,
	report.KindConfiguration:    http.StatusInternalServerError,
	report.KindMalformedRequest: http.StatusBadRequest,
	report.KindValidation:       http.StatusBadRequest,
	report.KindGateway:          http.StatusInternalServerError,
}

// CreateHideoutReport turns a submitted report into a tracker issue.
// It accepts every method so that non-POST requests get the JSON 405.
// The requester is read from the platform headers whatever TrustProxy says;
// it is only logged and quoted in the issue, never used for access control.
func CreateHideoutReport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := d.Reports.Submit(r.Context(), report.Inbound{
			Method:    r.Method,
			Body:      r.Body,
			Requester: report.RequesterFromHeaders(r.Header),
		})
		if err != nil {
			writeFailure(w, d, err)
			return
		}

		writeJSON(w, http.StatusCreated, createReportResponse{
			Success:     true,
			IssueURL:    ref.URL,
			IssueNumber: ref.Number,
		})
	}
}

func writeFailure(w http.ResponseWriter, d deps.Deps, err error) {
	var f *report.Failure
	if !errors.As(err, &f) {
		d.Logger.Error("unexpected submission error", logger.Error(err))
		writeError(w, http.StatusInternalServerError, report.MsgGateway)
		return
	}

	status, ok := statusByKind[f.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if f.Kind == report.KindMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
	}
	writeError(w, status, f.Message)
}
