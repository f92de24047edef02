package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// MaxBodyBytes bounds the size of a submitted report.
const MaxBodyBytes = 64 << 10

// Request is a report that passed tier 1 validation.
type Request struct {
	Zone   string
	Guild  string
	Server domain.Server
	Notes  string // empty when not provided
}

// decodeFields reads the JSON body into a loose field map.
// An empty body, or a JSON value that is not an object, yields no fields so
// that field validation reports what is missing.
func decodeFields(body io.Reader) (map[string]any, error) {
	if body == nil {
		return map[string]any{}, nil
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodyBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return fields, nil
}

// Validate runs the tier 1 checks, in order: zone, guild, server.
func Validate(fields map[string]any) (Request, *ValidationError) {
	zone, verr := requiredString(fields["zone"], "zone", "Zone name")
	if verr != nil {
		return Request{}, verr
	}

	guild, verr := requiredString(fields["guild"], "guild", "Guild name")
	if verr != nil {
		return Request{}, verr
	}

	raw, _ := fields["server"].(string)
	server, ok := domain.ParseServer(raw)
	if !ok {
		return Request{}, &ValidationError{Field: "server", Message: domain.InvalidServerMessage}
	}

	notes, _ := fields["additional_notes"].(string)

	return Request{
		Zone:   zone,
		Guild:  guild,
		Server: server,
		Notes:  notes,
	}, nil
}

func requiredString(v any, field, label string) (string, *ValidationError) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required and must be a non-empty string", label),
		}
	}
	return strings.TrimSpace(s), nil
}
