// Package models holds the route, validation and import records shared across the service.
package models

import (
	"fmt"
	"net/http"
	"strings"
)

// RedirectKind is the redirect intent configured for a route.
// The wire status code is derived from it at dispatch time.
type RedirectKind int

const (
	// Permanent maps to 301, or 308 with modern codes.
	Permanent RedirectKind = iota
	// Temporary maps to 302, or 307 with modern codes.
	Temporary
)

// String returns the textual intent.
func (k RedirectKind) String() string {
	switch k {
	case Permanent:
		return "permanent"
	case Temporary:
		return "temporary"
	default:
		return fmt.Sprintf("RedirectKind(%d)", int(k))
	}
}

// StatusCode returns the wire status for the intent. Modern codes preserve the request method.
func (k RedirectKind) StatusCode(modern bool) int {
	switch {
	case k == Temporary && modern:
		return http.StatusTemporaryRedirect
	case k == Temporary:
		return http.StatusFound
	case modern:
		return http.StatusPermanentRedirect
	default:
		return http.StatusMovedPermanently
	}
}

// LegacyCode returns the classic status code used in configuration files.
func (k RedirectKind) LegacyCode() int {
	if k == Temporary {
		return http.StatusFound
	}
	return http.StatusMovedPermanently
}

// ParseRedirectKind accepts "301", "302", "permanent" and "temporary" (case-insensitive).
func ParseRedirectKind(s string) (RedirectKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "301", "permanent":
		return Permanent, true
	case "302", "temporary":
		return Temporary, true
	default:
		return Permanent, false
	}
}

// RouteEntry - one configured path to destination mapping.
type RouteEntry struct {
	// Path: request path beginning with "/", unique within a table.
	Path string
	// Target: absolute destination URL, written to Location verbatim.
	Target string
	// Status: redirect intent.
	Status RedirectKind
}

// FailureReason classifies a failed destination probe.
type FailureReason int

const (
	// ReasonNone marks a successful probe.
	ReasonNone FailureReason = iota
	// ReasonTimeout - the probe did not complete within its deadline.
	ReasonTimeout
	// ReasonConnection - DNS, dial, TLS or other transport failure.
	ReasonConnection
	// ReasonHTTPStatus - the target answered outside the acceptable range.
	ReasonHTTPStatus
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonTimeout:
		return "timeout"
	case ReasonConnection:
		return "connection-error"
	case ReasonHTTPStatus:
		return "http-status"
	default:
		return fmt.Sprintf("FailureReason(%d)", int(r))
	}
}

// ValidationOutcome - result of probing one route target.
type ValidationOutcome struct {
	// Err: underlying transport error, nil for status failures and successes.
	Err error
	// Path: route path.
	Path string
	// Target: probed URL.
	Target string
	// Reason: ReasonNone when the probe succeeded.
	Reason FailureReason
	// StatusCode: last HTTP status received, 0 when none.
	StatusCode int
}

// OK reports whether the probe succeeded.
func (o ValidationOutcome) OK() bool {
	return o.Reason == ReasonNone
}

// Describe renders the failure reason for operators, e.g. "http-status(404)".
func (o ValidationOutcome) Describe() string {
	switch o.Reason {
	case ReasonHTTPStatus:
		return fmt.Sprintf("%s(%d)", o.Reason, o.StatusCode)
	case ReasonTimeout, ReasonConnection:
		if o.Err != nil {
			return fmt.Sprintf("%s: %v", o.Reason, o.Err)
		}
		return o.Reason.String()
	default:
		return o.Reason.String()
	}
}

// ImportedLink - provider link mapped into the configuration format.
type ImportedLink struct {
	// ShortPath: path on this service, always beginning with "/".
	ShortPath string
	// Destination: target URL.
	Destination string
	// Domain: provider domain the link was created on.
	Domain string
}

// RouteEntry converts the link into a permanent route.
func (l ImportedLink) RouteEntry() RouteEntry {
	return RouteEntry{Path: l.ShortPath, Target: l.Destination, Status: Permanent}
}
