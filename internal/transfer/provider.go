package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// Transfer failure classes. Provider implementations wrap their errors with
// one of these sentinels so the Retriever can map them to stable message
// prefixes without knowing provider internals.
var (
	// ErrDenied indicates the server refused the transfer or returned a
	// structurally malformed response.
	ErrDenied = errors.New("transfer denied or malformed")

	// ErrTransport indicates a protocol-level failure during the transfer
	// session.
	ErrTransport = errors.New("transfer transport error")

	// ErrTimeout indicates the transfer did not complete in time.
	ErrTimeout = errors.New("transfer timeout")
)

// Entry is one resource record as reported by a transfer provider. Name is
// relative to the zone, with "@" denoting the apex. Data is the rdata in
// presentation format.
type Entry struct {
	Name string
	Type string
	TTL  uint32
	Data string
}

// Provider is the zone transfer capability consumed by the Retriever. A nil
// entry slice with a nil error is a valid result for an empty zone.
type Provider interface {
	Transfer(ctx context.Context, zoneName string) ([]Entry, error)
}

// AXFRProvider performs AXFR zone transfers against a single server.
type AXFRProvider struct {
	server  string
	port    int
	timeout time.Duration

	tsigKeyName   string
	tsigSecret    string
	tsigAlgorithm string

	logger zerolog.Logger
}

// NewAXFRProvider creates a provider for the given server address.
func NewAXFRProvider(server string, port int, timeout time.Duration, logger zerolog.Logger) *AXFRProvider {
	if port == 0 {
		port = 53
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &AXFRProvider{
		server:  server,
		port:    port,
		timeout: timeout,
		logger:  logger.With().Str("component", "axfr-provider").Logger(),
	}
}

// SetTSIGKey configures TSIG authentication for transfer requests. The
// secret is the base64-encoded shared key. An empty algorithm defaults to
// hmac-sha256.
func (p *AXFRProvider) SetTSIGKey(keyName, secret, algorithm string) {
	p.tsigKeyName = keyName
	p.tsigSecret = secret
	p.tsigAlgorithm = algorithm
}

// Transfer performs the AXFR and returns zone entries with owner names
// rewritten relative to the zone ("@" for the apex).
func (p *AXFRProvider) Transfer(ctx context.Context, zoneName string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	m := new(dns.Msg)
	m.SetAxfr(dns.Fqdn(zoneName))

	t := &dns.Transfer{
		DialTimeout:  p.timeout,
		ReadTimeout:  p.timeout,
		WriteTimeout: p.timeout,
	}

	if p.tsigKeyName != "" {
		keyName := dns.Fqdn(p.tsigKeyName)
		m.SetTsig(keyName, tsigAlgorithm(p.tsigAlgorithm), 300, time.Now().Unix())
		t.TsigSecret = map[string]string{keyName: p.tsigSecret}
	}

	addr := net.JoinHostPort(p.server, strconv.Itoa(p.port))

	env, err := t.In(m, addr)
	if err != nil {
		return nil, classifyTransferError(err)
	}

	var entries []Entry
	for e := range env {
		if e.Error != nil {
			return nil, classifyTransferError(e.Error)
		}
		for _, rr := range e.RR {
			entries = append(entries, entryFromRR(rr, zoneName))
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}

	p.logger.Debug().
		Str("zone", zoneName).
		Int("entries", len(entries)).
		Msg("Zone transfer completed")

	return entries, nil
}

// TestConnection probes the server with a version.bind CH TXT query over
// TCP, the same check the gather run performs before transferring.
func (p *AXFRProvider) TestConnection(ctx context.Context) error {
	m := new(dns.Msg)
	m.Question = []dns.Question{{
		Name:   "version.bind.",
		Qtype:  dns.TypeTXT,
		Qclass: dns.ClassCHAOS,
	}}
	m.Id = dns.Id()
	m.RecursionDesired = false

	c := &dns.Client{Net: "tcp", Timeout: p.timeout}
	addr := net.JoinHostPort(p.server, strconv.Itoa(p.port))

	_, _, err := c.ExchangeContext(ctx, m, addr)
	if err != nil {
		return fmt.Errorf("connection test to %s failed: %w", addr, err)
	}
	return nil
}

// Addr returns the server address the provider transfers from.
func (p *AXFRProvider) Addr() string {
	return net.JoinHostPort(p.server, strconv.Itoa(p.port))
}

func entryFromRR(rr dns.RR, zoneName string) Entry {
	h := rr.Header()

	rtype, ok := dns.TypeToString[h.Rrtype]
	if !ok {
		rtype = dns.Type(h.Rrtype).String()
	}

	// rr.String() renders "owner ttl class type rdata"; trimming the header
	// leaves the rdata in presentation format.
	data := strings.TrimPrefix(rr.String(), h.String())

	return Entry{
		Name: relativeOwner(h.Name, zoneName),
		Type: rtype,
		TTL:  h.Ttl,
		Data: data,
	}
}

// relativeOwner strips the zone suffix from a wire-format owner name,
// returning "@" for the apex.
func relativeOwner(owner, zoneName string) string {
	o := strings.TrimSuffix(owner, ".")
	z := strings.TrimSuffix(zoneName, ".")

	if strings.EqualFold(o, z) {
		return "@"
	}
	if len(o) > len(z) && strings.EqualFold(o[len(o)-len(z)-1:], "."+z) {
		return o[:len(o)-len(z)-1]
	}
	return o
}

func classifyTransferError(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var oerr *net.OpError
	if errors.As(err, &oerr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	// Errors raised by the DNS library itself (bad xfr rcode, missing SOA,
	// unpacking failures) indicate a refused or malformed response.
	var derr *dns.Error
	if errors.As(err, &derr) {
		return fmt.Errorf("%w: %v", ErrDenied, err)
	}

	return err
}

func tsigAlgorithm(name string) string {
	switch strings.ToLower(name) {
	case "", "hmac-sha256":
		return dns.HmacSHA256
	case "hmac-sha1":
		return dns.HmacSHA1
	case "hmac-sha224":
		return dns.HmacSHA224
	case "hmac-sha384":
		return dns.HmacSHA384
	case "hmac-sha512":
		return dns.HmacSHA512
	case "hmac-md5":
		return dns.HmacMD5
	default:
		return dns.HmacSHA256
	}
}
