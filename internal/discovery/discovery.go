// Package discovery enumerates the zones hosted on a DNS server and fills
// in per-zone metadata ahead of the transfer phase.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/yourusername/dns-gather/internal/model"
)

// Zones that dnscmd reports but that are not transferable zone data.
var specialZones = map[string]bool{
	"TrustAnchors": true,
	"..cache":      true,
	"..roothints":  true,
}

// Enumerator discovers zones on a DNS server, either by asking the server
// itself (Windows DNS via dnscmd) or from a configured zone list.
type Enumerator struct {
	server  string
	port    int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEnumerator creates an Enumerator for the given server.
func NewEnumerator(server string, port int, timeout time.Duration, logger zerolog.Logger) *Enumerator {
	if port == 0 {
		port = 53
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Enumerator{
		server:  server,
		port:    port,
		timeout: timeout,
		logger:  logger.With().Str("component", "discovery").Logger(),
	}
}

// EnumerateZones lists all zones on a Windows DNS server via
// `dnscmd /EnumZones`. Any failure (dnscmd missing, non-zero exit, timeout)
// yields an empty list rather than an error; discovery is best effort.
func (e *Enumerator) EnumerateZones(ctx context.Context) []model.ZoneInfo {
	cmdCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, "dnscmd", e.server, "/EnumZones").Output()
	if err != nil {
		e.logger.Warn().Err(err).Msg("dnscmd zone enumeration failed")
		return nil
	}

	zones := ParseEnumZonesOutput(string(out))
	e.logger.Info().Int("zones", len(zones)).Msg("Enumerated zones via dnscmd")
	return zones
}

// ParseEnumZonesOutput parses dnscmd /EnumZones output lines of the form
// " zone_name    zone_type    properties...", skipping banners and special
// pseudo-zones.
func ParseEnumZonesOutput(output string) []model.ZoneInfo {
	var zones []model.ZoneInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Enumerated") || strings.HasPrefix(line, "Zone count") ||
			strings.HasPrefix(line, "Command completed") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name, zoneType := fields[0], fields[1]
		if specialZones[name] {
			continue
		}

		zones = append(zones, model.NewZoneInfo(name, zoneType))
	}

	return zones
}

// ZoneMetadata queries the zone's SOA record to fill in its serial. A zone
// whose SOA answers is assumed Primary; query failures are recorded on the
// ZoneInfo without failing discovery.
func (e *Enumerator) ZoneMetadata(ctx context.Context, zoneName string) model.ZoneInfo {
	zone := model.NewZoneInfo(zoneName, model.ZoneTypeUnknown)

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(zoneName), dns.TypeSOA)

	c := &dns.Client{Net: "tcp", Timeout: e.timeout}
	addr := net.JoinHostPort(e.server, strconv.Itoa(e.port))

	in, _, err := c.ExchangeContext(ctx, m, addr)
	if err != nil {
		zone.ErrorMessage = fmt.Sprintf("Failed to get metadata: %v", err)
		return zone
	}

	for _, rr := range in.Answer {
		if soa, ok := rr.(*dns.SOA); ok {
			zone.Serial = soa.Serial
			zone.ZoneType = model.ZoneTypePrimary
			break
		}
	}

	return zone
}

// FromList builds ZoneInfo entries for an explicit zone list, attaching SOA
// metadata where the server answers.
func (e *Enumerator) FromList(ctx context.Context, zoneNames []string) []model.ZoneInfo {
	zones := make([]model.ZoneInfo, 0, len(zoneNames))
	for _, name := range zoneNames {
		zones = append(zones, e.ZoneMetadata(ctx, name))
	}
	return zones
}
