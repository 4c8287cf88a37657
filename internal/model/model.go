package model

import "time"

// Transfer status values for a zone. A zone starts Pending and is moved to
// exactly one terminal status after its transfer attempt.
const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Zone type values as reported by the discovery layer.
const (
	ZoneTypePrimary   = "Primary"
	ZoneTypeSecondary = "Secondary"
	ZoneTypeStub      = "Stub"
	ZoneTypeUnknown   = "Unknown"
)

// ZoneInfo describes one DNS zone under consideration.
type ZoneInfo struct {
	Name           string
	ZoneType       string
	Serial         uint32
	TransferStatus string
	RecordCount    int
	ErrorMessage   string
}

// NewZoneInfo returns a ZoneInfo in its initial Pending state.
func NewZoneInfo(name, zoneType string) ZoneInfo {
	return ZoneInfo{
		Name:           name,
		ZoneType:       zoneType,
		TransferStatus: StatusPending,
	}
}

// DNSRecord is a single resource record from a zone. Name is the owner name
// exactly as the provider reported it, with "@" denoting the zone apex.
// Data holds the rdata in canonical presentation format.
type DNSRecord struct {
	Name string
	Type string
	TTL  uint32
	Data string
}

// Summary holds run statistics for the final log line.
type Summary struct {
	ZonesDiscovered  int
	ZonesTransferred int
	ZonesFailed      int
	TotalRecords     int
	StartTime        time.Time
	EndTime          time.Time
}

// Duration returns the wall-clock time of the run.
func (s Summary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Summarize tallies per-zone outcomes into a Summary.
func Summarize(zones []ZoneInfo, start, end time.Time) Summary {
	s := Summary{
		ZonesDiscovered: len(zones),
		StartTime:       start,
		EndTime:         end,
	}
	for _, z := range zones {
		switch z.TransferStatus {
		case StatusSuccess:
			s.ZonesTransferred++
		case StatusFailed:
			s.ZonesFailed++
		}
		s.TotalRecords += z.RecordCount
	}
	return s
}
