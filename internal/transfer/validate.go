package transfer

import (
	"fmt"
	"strings"
)

// validateHostnameMatch checks a single record for naming inconsistencies
// and appends at most one warning. Only A, AAAA, and CNAME records are
// inspected; every other type is skipped.
func validateHostnameMatch(recordName, absoluteName, recordType, data, zoneName string, warnings *[]string) {
	switch recordType {
	case "CNAME":
		recordHost := hostnamePart(recordName, zoneName)
		target := strings.TrimSuffix(data, ".")
		targetHost := hostnamePart(target, zoneName)

		if !strings.EqualFold(recordHost, targetHost) {
			*warnings = append(*warnings, fmt.Sprintf(
				"CNAME mismatch in zone %s: %s (host %s) -> %s (host %s)",
				zoneName, recordName, recordHost, target, targetHost))
		}
	case "A", "AAAA":
		// Reserved for organization-specific naming-convention checks on
		// address records. Intentionally produces no warnings.
	default:
		// Other record types are not subject to hostname validation.
	}
}

// hostnamePart returns the label before the first dot. The apex marker
// resolves to the zone's own first label.
func hostnamePart(name, zoneName string) string {
	if name == "@" {
		name = zoneName
	}
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
