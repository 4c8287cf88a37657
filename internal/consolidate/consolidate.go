// Package consolidate builds cross-zone, report-ready tables from the
// records gathered per zone. Every call rebuilds the tables from scratch;
// nothing is cached between calls.
package consolidate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/dns-gather/internal/model"
)

// PTRRow is one consolidated PTR record with its address reconstructed from
// the reverse zone hierarchy.
type PTRRow struct {
	IPAddress string
	FQDN      string
	Zone      string
	TTL       uint32
}

// CNAMERow is one consolidated CNAME record.
type CNAMERow struct {
	Name   string
	Target string
	Zone   string
	TTL    uint32
}

// SRVRow is one consolidated SRV record with its positional rdata fields
// broken out. Malformed rdata leaves Priority/Weight/Port empty and keeps
// the raw data in Target.
type SRVRow struct {
	Service  string
	Priority string
	Weight   string
	Port     string
	Target   string
	Zone     string
	TTL      uint32
}

// AAAARow is one consolidated AAAA record. The address is carried verbatim.
type AAAARow struct {
	Name        string
	IPv6Address string
	Zone        string
	TTL         uint32
}

// Tables holds the four consolidated record tables.
type Tables struct {
	PTR   []PTRRow
	CNAME []CNAMERow
	SRV   []SRVRow
	AAAA  []AAAARow
}

// Build consolidates all zones' records into typed tables with
// deterministic ordering. Zones with no matching records simply contribute
// nothing; an empty table is a valid result.
func Build(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) Tables {
	return Tables{
		PTR:   buildPTR(zones, recordsByZone),
		CNAME: buildCNAME(zones, recordsByZone),
		SRV:   buildSRV(zones, recordsByZone),
		AAAA:  buildAAAA(zones, recordsByZone),
	}
}

func buildPTR(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) []PTRRow {
	rows := []PTRRow{}

	for _, zone := range zones {
		for _, rec := range recordsByZone[zone.Name] {
			if rec.Type != "PTR" {
				continue
			}
			rows = append(rows, PTRRow{
				IPAddress: ExtractIPFromPTR(zone.Name, rec.Name),
				FQDN:      strings.TrimSuffix(rec.Data, "."),
				Zone:      zone.Name,
				TTL:       rec.TTL,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return ipSortKey(rows[i].IPAddress).less(ipSortKey(rows[j].IPAddress))
	})

	return rows
}

func buildCNAME(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) []CNAMERow {
	rows := []CNAMERow{}

	for _, zone := range zones {
		for _, rec := range recordsByZone[zone.Name] {
			if rec.Type != "CNAME" {
				continue
			}
			rows = append(rows, CNAMERow{
				Name:   absoluteName(rec.Name, zone.Name),
				Target: strings.TrimSuffix(rec.Data, "."),
				Zone:   zone.Name,
				TTL:    rec.TTL,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	return rows
}

func buildSRV(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) []SRVRow {
	rows := []SRVRow{}

	for _, zone := range zones {
		for _, rec := range recordsByZone[zone.Name] {
			if rec.Type != "SRV" {
				continue
			}

			row := SRVRow{
				Service: absoluteName(rec.Name, zone.Name),
				Zone:    zone.Name,
				TTL:     rec.TTL,
			}

			// SRV rdata is positional: "priority weight port target".
			fields := strings.Fields(rec.Data)
			if len(fields) >= 4 {
				row.Priority = fields[0]
				row.Weight = fields[1]
				row.Port = fields[2]
				row.Target = strings.TrimSuffix(strings.Join(fields[3:], " "), ".")
			} else {
				// Malformed rdata still produces a row; the record is never
				// dropped.
				row.Target = strings.TrimSuffix(rec.Data, ".")
			}

			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Service) < strings.ToLower(rows[j].Service)
	})

	return rows
}

func buildAAAA(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) []AAAARow {
	rows := []AAAARow{}

	for _, zone := range zones {
		for _, rec := range recordsByZone[zone.Name] {
			if rec.Type != "AAAA" {
				continue
			}
			rows = append(rows, AAAARow{
				Name:        absoluteName(rec.Name, zone.Name),
				IPv6Address: rec.Data,
				Zone:        zone.Name,
				TTL:         rec.TTL,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	return rows
}

// ExtractIPFromPTR reconstructs the address a PTR record describes from the
// reverse zone name and the record's owner name. IPv4 zones yield dotted
// octets; IPv6 zones yield hex nibbles grouped four per colon with no
// further canonicalization. Anything unrecognized falls back to
// "<recordName>.<zoneName>".
func ExtractIPFromPTR(zoneName, recordName string) string {
	switch {
	case strings.HasSuffix(zoneName, ".in-addr.arpa"):
		zoneParts := strings.Split(strings.TrimSuffix(zoneName, ".in-addr.arpa"), ".")
		reverse(zoneParts)

		if recordName == "@" {
			return strings.Join(zoneParts, ".")
		}
		return strings.Join(append(zoneParts, strings.Split(recordName, ".")...), ".")

	case strings.HasSuffix(zoneName, ".ip6.arpa"):
		zoneParts := strings.Split(strings.TrimSuffix(zoneName, ".ip6.arpa"), ".")
		reverse(zoneParts)

		var hex string
		if recordName == "@" {
			hex = strings.Join(zoneParts, "")
		} else {
			recordParts := strings.Split(recordName, ".")
			reverse(recordParts)
			hex = strings.Join(recordParts, "") + strings.Join(zoneParts, "")
		}

		var groups []string
		for i := 0; i < len(hex); i += 4 {
			end := i + 4
			if end > len(hex) {
				end = len(hex)
			}
			groups = append(groups, hex[i:end])
		}
		return strings.Join(groups, ":")

	default:
		return recordName + "." + zoneName
	}
}

func reverse(parts []string) {
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
}

// sortKey is the dual-mode ordering key for reconstructed addresses:
// dotted colon-free strings compare as up-to-four numeric octets, anything
// else compares as the raw string. Numeric keys order before raw keys.
type sortKey struct {
	numeric bool
	octets  [4]int
	raw     string
}

func ipSortKey(ip string) sortKey {
	if !strings.Contains(ip, ".") || strings.Contains(ip, ":") {
		return sortKey{raw: ip}
	}

	key := sortKey{numeric: true}
	parts := strings.Split(ip, ".")
	for i := 0; i < len(parts) && i < 4; i++ {
		// Non-numeric components count as zero.
		n, err := strconv.Atoi(parts[i])
		if err == nil {
			key.octets[i] = n
		}
	}
	return key
}

func (a sortKey) less(b sortKey) bool {
	if a.numeric != b.numeric {
		return a.numeric
	}
	if !a.numeric {
		return a.raw < b.raw
	}
	for i := 0; i < 4; i++ {
		if a.octets[i] != b.octets[i] {
			return a.octets[i] < b.octets[i]
		}
	}
	return false
}

// absoluteName expands a zone-relative record name for display.
func absoluteName(name, zoneName string) string {
	if name == "@" {
		return zoneName
	}
	return name + "." + zoneName
}
