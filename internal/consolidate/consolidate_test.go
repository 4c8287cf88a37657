package consolidate

import (
	"reflect"
	"sort"
	"testing"

	"github.com/yourusername/dns-gather/internal/model"
)

func zone(name string) model.ZoneInfo {
	z := model.NewZoneInfo(name, model.ZoneTypePrimary)
	z.TransferStatus = model.StatusSuccess
	return z
}

func TestExtractIPFromPTR(t *testing.T) {
	tests := []struct {
		name       string
		zoneName   string
		recordName string
		want       string
	}{
		{
			name:       "ipv4 single octet record",
			zoneName:   "1.168.192.in-addr.arpa",
			recordName: "10",
			want:       "192.168.1.10",
		},
		{
			name:       "ipv4 apex record",
			zoneName:   "1.168.192.in-addr.arpa",
			recordName: "@",
			want:       "192.168.1",
		},
		{
			name:       "ipv4 two octet record",
			zoneName:   "168.192.in-addr.arpa",
			recordName: "10.1",
			want:       "192.168.10.1",
		},
		{
			name:       "ipv6 nibbles",
			zoneName:   "8.b.d.0.1.0.0.2.ip6.arpa",
			recordName: "1.0.0.0",
			want:       "0001:2001:0db8",
		},
		{
			name:       "ipv6 apex",
			zoneName:   "8.b.d.0.1.0.0.2.ip6.arpa",
			recordName: "@",
			want:       "2001:0db8",
		},
		{
			name:       "forward zone falls back",
			zoneName:   "test.com",
			recordName: "10",
			want:       "10.test.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractIPFromPTR(tt.zoneName, tt.recordName); got != tt.want {
				t.Errorf("ExtractIPFromPTR(%q, %q) = %q, want %q", tt.zoneName, tt.recordName, got, tt.want)
			}
		})
	}
}

func TestIPSortOrder(t *testing.T) {
	ips := []string{"192.168.1.100", "192.168.1.10", "192.168.1.1", "10.0.0.1"}
	want := []string{"10.0.0.1", "192.168.1.1", "192.168.1.10", "192.168.1.100"}

	sort.SliceStable(ips, func(i, j int) bool {
		return ipSortKey(ips[i]).less(ipSortKey(ips[j]))
	})

	if !reflect.DeepEqual(ips, want) {
		t.Errorf("sorted IPs = %v, want %v", ips, want)
	}
}

func TestIPSortKeyNonNumericComponent(t *testing.T) {
	// Non-numeric components count as zero, so "x" sorts like 0.
	if !ipSortKey("192.168.x.5").less(ipSortKey("192.168.1.5")) {
		t.Error("non-numeric octet should compare as 0")
	}
}

func TestIPSortNumericBeforeRaw(t *testing.T) {
	keys := []string{"2001:0db8", "10.0.0.1"}
	sort.SliceStable(keys, func(i, j int) bool {
		return ipSortKey(keys[i]).less(ipSortKey(keys[j]))
	})
	if keys[0] != "10.0.0.1" {
		t.Errorf("numeric keys should order before raw string keys, got %v", keys)
	}
}

func TestBuildPTRTable(t *testing.T) {
	zones := []model.ZoneInfo{zone("1.168.192.in-addr.arpa")}
	recordsByZone := map[string][]model.DNSRecord{
		"1.168.192.in-addr.arpa": {
			{Name: "100", Type: "PTR", TTL: 3600, Data: "host100.test.com."},
			{Name: "10", Type: "PTR", TTL: 3600, Data: "host10.test.com."},
			{Name: "ignored", Type: "A", TTL: 60, Data: "192.168.1.1"},
		},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.PTR) != 2 {
		t.Fatalf("len(PTR) = %d, want 2", len(tables.PTR))
	}
	if tables.PTR[0].IPAddress != "192.168.1.10" || tables.PTR[1].IPAddress != "192.168.1.100" {
		t.Errorf("PTR rows out of order: %+v", tables.PTR)
	}
	if tables.PTR[0].FQDN != "host10.test.com" {
		t.Errorf("FQDN = %q, want trailing dot stripped", tables.PTR[0].FQDN)
	}
	if tables.PTR[0].Zone != "1.168.192.in-addr.arpa" || tables.PTR[0].TTL != 3600 {
		t.Errorf("PTR row metadata wrong: %+v", tables.PTR[0])
	}
}

func TestBuildCNAMETable(t *testing.T) {
	zones := []model.ZoneInfo{zone("test.com")}
	recordsByZone := map[string][]model.DNSRecord{
		"test.com": {
			{Name: "Zulu", Type: "CNAME", TTL: 300, Data: "zulu.prod.com."},
			{Name: "alpha", Type: "CNAME", TTL: 300, Data: "alpha.prod.com."},
			{Name: "@", Type: "CNAME", TTL: 300, Data: "apex.prod.com."},
		},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.CNAME) != 3 {
		t.Fatalf("len(CNAME) = %d, want 3", len(tables.CNAME))
	}
	wantNames := []string{"alpha.test.com", "test.com", "Zulu.test.com"}
	for i, want := range wantNames {
		if tables.CNAME[i].Name != want {
			t.Errorf("CNAME[%d].Name = %q, want %q (case-insensitive sort)", i, tables.CNAME[i].Name, want)
		}
	}
	if tables.CNAME[0].Target != "alpha.prod.com" {
		t.Errorf("Target = %q, want trailing dot stripped", tables.CNAME[0].Target)
	}
}

func TestBuildSRVTable(t *testing.T) {
	zones := []model.ZoneInfo{zone("test.com")}
	recordsByZone := map[string][]model.DNSRecord{
		"test.com": {
			{Name: "_sip._tcp", Type: "SRV", TTL: 3600, Data: "10 60 5060 sipserver.example.com."},
		},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.SRV) != 1 {
		t.Fatalf("len(SRV) = %d, want 1", len(tables.SRV))
	}
	row := tables.SRV[0]
	if row.Service != "_sip._tcp.test.com" {
		t.Errorf("Service = %q, want _sip._tcp.test.com", row.Service)
	}
	if row.Priority != "10" || row.Weight != "60" || row.Port != "5060" {
		t.Errorf("positional fields = %q/%q/%q, want 10/60/5060", row.Priority, row.Weight, row.Port)
	}
	if row.Target != "sipserver.example.com" {
		t.Errorf("Target = %q, want sipserver.example.com", row.Target)
	}
}

func TestBuildSRVTableMalformedData(t *testing.T) {
	zones := []model.ZoneInfo{zone("test.com")}
	recordsByZone := map[string][]model.DNSRecord{
		"test.com": {
			{Name: "_broken._tcp", Type: "SRV", TTL: 60, Data: "10 60 incomplete."},
		},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.SRV) != 1 {
		t.Fatal("malformed SRV data must still produce a row")
	}
	row := tables.SRV[0]
	if row.Priority != "" || row.Weight != "" || row.Port != "" {
		t.Errorf("malformed row fields = %q/%q/%q, want all empty", row.Priority, row.Weight, row.Port)
	}
	if row.Target != "10 60 incomplete" {
		t.Errorf("Target = %q, want raw data with trailing dot stripped", row.Target)
	}
}

func TestBuildAAAATable(t *testing.T) {
	zones := []model.ZoneInfo{zone("test.com")}
	recordsByZone := map[string][]model.DNSRecord{
		"test.com": {
			{Name: "ipv6host", Type: "AAAA", TTL: 300, Data: "2001:0db8:0000:0000:0000:0000:0000:0001"},
		},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.AAAA) != 1 {
		t.Fatalf("len(AAAA) = %d, want 1", len(tables.AAAA))
	}
	if tables.AAAA[0].Name != "ipv6host.test.com" {
		t.Errorf("Name = %q, want ipv6host.test.com", tables.AAAA[0].Name)
	}
	if tables.AAAA[0].IPv6Address != "2001:0db8:0000:0000:0000:0000:0000:0001" {
		t.Errorf("IPv6Address = %q, want the data verbatim", tables.AAAA[0].IPv6Address)
	}
}

func TestBuildCrossZone(t *testing.T) {
	zones := []model.ZoneInfo{zone("a.com"), zone("b.com")}
	recordsByZone := map[string][]model.DNSRecord{
		"a.com": {{Name: "www", Type: "CNAME", TTL: 60, Data: "www.b.com."}},
		"b.com": {{Name: "api", Type: "CNAME", TTL: 60, Data: "api.a.com."}},
	}

	tables := Build(zones, recordsByZone)

	if len(tables.CNAME) != 2 {
		t.Fatalf("len(CNAME) = %d, want rows from both zones", len(tables.CNAME))
	}
	if tables.CNAME[0].Name != "api.b.com" || tables.CNAME[1].Name != "www.a.com" {
		t.Errorf("cross-zone sort wrong: %+v", tables.CNAME)
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	tables := Build(nil, nil)

	if len(tables.PTR) != 0 || len(tables.CNAME) != 0 || len(tables.SRV) != 0 || len(tables.AAAA) != 0 {
		t.Errorf("empty inputs must yield empty tables, got %+v", tables)
	}
}

func TestBuildIdempotent(t *testing.T) {
	zones := []model.ZoneInfo{zone("test.com"), zone("1.168.192.in-addr.arpa")}
	recordsByZone := map[string][]model.DNSRecord{
		"test.com": {
			{Name: "web", Type: "CNAME", TTL: 300, Data: "app.test.com."},
			{Name: "_sip._tcp", Type: "SRV", TTL: 300, Data: "10 60 5060 sip.test.com."},
			{Name: "v6", Type: "AAAA", TTL: 300, Data: "2001:db8::1"},
		},
		"1.168.192.in-addr.arpa": {
			{Name: "10", Type: "PTR", TTL: 300, Data: "host.test.com."},
		},
	}

	first := Build(zones, recordsByZone)
	second := Build(zones, recordsByZone)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
