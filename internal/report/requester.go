package report

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/utils"
)

const unknown = "Unknown"

// Headers injected by the hosting platform in front of the service.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderClientIP     = "X-Nf-Client-Connection-Ip"
	HeaderCountry      = "X-Country"
	HeaderCity         = "X-City"
	HeaderRegion       = "X-Subdivision-1-Iso-Code"
)

// Requester is best-effort information about who submitted a report.
type Requester struct {
	IP      string
	Country string
	City    string
	Region  string
}

// RequesterFromHeaders reads the requester from proxy and geo headers,
// defaulting every missing value to "Unknown".
func RequesterFromHeaders(h http.Header) Requester {
	ip := utils.FirstForwardedFor(h.Get(HeaderForwardedFor))
	if ip == "" {
		ip = strings.TrimSpace(h.Get(HeaderClientIP))
	}
	return Requester{
		IP:      orUnknown(ip),
		Country: orUnknown(h.Get(HeaderCountry)),
		City:    orUnknown(h.Get(HeaderCity)),
		Region:  orUnknown(h.Get(HeaderRegion)),
	}
}

// GeoInfo renders the requester on one line.
// Example: "IP: 1.2.3.4, Location: Paris, IDF, FR"
func (r Requester) GeoInfo() string {
	return fmt.Sprintf("IP: %s, Location: %s, %s, %s",
		orUnknown(r.IP), orUnknown(r.City), orUnknown(r.Region), orUnknown(r.Country))
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}
