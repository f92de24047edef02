package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker"
)

// ZoneVerifier checks a zone against a zone dataset.
// The error is only set with VerdictUnknown and explains why.
type ZoneVerifier interface {
	VerifyZone(ctx context.Context, zone string) (domain.Verdict, error)
}

// GuildVerifier checks a guild exists on a server.
// The error is only set with VerdictUnknown and explains why.
type GuildVerifier interface {
	VerifyGuild(ctx context.Context, guild string, server domain.Server) (domain.Verdict, error)
}

// Recorder counts created reports. Failures are logged and never fail a submission.
type Recorder interface {
	RecordReport(ctx context.Context, server domain.Server) error
}

// Options configures a Service. Nil verifiers disable the matching check.
type Options struct {
	Tracker    tracker.Tracker // nil means the credential is missing
	Zones      ZoneVerifier
	Guilds     GuildVerifier
	Recorder   Recorder // optional
	IncludeGeo bool
	Logger     logger.Logger
	Now        func() time.Time
}

// Service runs one submission from the raw request to a created issue.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	tracker    tracker.Tracker
	zones      ZoneVerifier
	guilds     GuildVerifier
	recorder   Recorder
	includeGeo bool
	formatter  *Formatter
	logger     logger.Logger
}

// Inbound is a submission as received from the transport.
type Inbound struct {
	Method    string
	Body      io.Reader
	Requester Requester
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		tracker:    opts.Tracker,
		zones:      opts.Zones,
		guilds:     opts.Guilds,
		recorder:   opts.Recorder,
		includeGeo: opts.IncludeGeo,
		formatter:  NewFormatter(opts.Now),
		logger:     log,
	}
}

// Configured reports whether a tracker credential is available.
func (s *Service) Configured() bool { return s.tracker != nil }

// VerificationEnabled reports whether any tier 2 check is active.
func (s *Service) VerificationEnabled() bool { return s.zones != nil || s.guilds != nil }

// Submit validates the report and creates exactly one issue, or returns a
// *Failure describing the first step that stopped it.
func (s *Service) Submit(ctx context.Context, in Inbound) (domain.IssueRef, error) {
	if in.Method != http.MethodPost {
		return domain.IssueRef{}, &Failure{Kind: KindMethodNotAllowed, Message: MsgMethodNotAllowed}
	}

	if s.tracker == nil {
		s.logger.Error("GITHUB_TOKEN environment variable is not set")
		return domain.IssueRef{}, &Failure{Kind: KindConfiguration, Message: MsgConfiguration}
	}

	fields, err := decodeFields(in.Body)
	if err != nil {
		return domain.IssueRef{}, &Failure{Kind: KindMalformedRequest, Message: MsgMalformedRequest, Err: err}
	}

	req, verr := Validate(fields)
	if verr != nil {
		s.logger.Debug("hideout report rejected",
			logger.String("field", verr.Field),
			logger.String("reason", verr.Message))
		return domain.IssueRef{}, newValidationFailure(verr)
	}

	// Always logged for abuse detection, whether or not it goes in the issue.
	geoInfo := in.Requester.GeoInfo()
	s.logger.Info("hideout report received",
		logger.String("ip", in.Requester.IP),
		logger.String("city", in.Requester.City),
		logger.String("region", in.Requester.Region),
		logger.String("country", in.Requester.Country),
		logger.String("zone", req.Zone),
		logger.String("guild", req.Guild),
		logger.String("server", string(req.Server)))

	if verr := s.verify(ctx, req); verr != nil {
		return domain.IssueRef{}, newValidationFailure(verr)
	}

	issue := s.formatter.Format(req, geoInfo, s.includeGeo)

	ref, err := s.tracker.CreateIssue(ctx, issue)
	if err != nil {
		s.logger.Error("failed to create hideout report issue",
			logger.String("zone", req.Zone),
			logger.String("guild", req.Guild),
			logger.Error(err))
		return domain.IssueRef{}, &Failure{Kind: KindGateway, Message: MsgGateway, Err: err}
	}

	s.logger.Info("hideout report issue created",
		logger.Int("issue_number", ref.Number),
		logger.String("issue_url", ref.URL))

	if s.recorder != nil {
		if err := s.recorder.RecordReport(ctx, req.Server); err != nil {
			s.logger.Warn("failed to record report", logger.Error(err))
		}
	}

	return ref, nil
}

// verify runs the tier 2 checks. Unknown verdicts pass, and are logged so
// "could not verify" stays distinguishable from "verified".
func (s *Service) verify(ctx context.Context, req Request) *ValidationError {
	if s.zones != nil {
		verdict, err := s.zones.VerifyZone(ctx, req.Zone)
		s.logVerdict("zone", req.Zone, verdict, err)
		if !verdict.Passes() {
			return &ValidationError{
				Field:   "zone",
				Message: fmt.Sprintf("Zone \"%s\" not found. Please select a zone from the list.", req.Zone),
			}
		}
	}

	if s.guilds != nil {
		verdict, err := s.guilds.VerifyGuild(ctx, req.Guild, req.Server)
		s.logVerdict("guild", req.Guild, verdict, err)
		if !verdict.Passes() {
			return &ValidationError{
				Field:   "guild",
				Message: fmt.Sprintf("Guild \"%s\" not found on %s server. Please check the spelling.", req.Guild, req.Server),
			}
		}
	}

	return nil
}

func (s *Service) logVerdict(check, value string, verdict domain.Verdict, err error) {
	if verdict == domain.VerdictUnknown {
		s.logger.Warn("verification unavailable, accepting report",
			logger.String("check", check),
			logger.String("value", value),
			logger.Error(err))
		return
	}
	s.logger.Debug("verification done",
		logger.String("check", check),
		logger.String("value", value),
		logger.String("verdict", verdict.String()))
}
