// Package discovery resolves service base URLs that are published as DNS SRV records.
//
// A base URL of the form srv+https://_fmanager._tcp.example.com is looked up as an
// SRV record and replaced by https://<target>:<port>. Any other URL is used as is.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// SRVSchemePrefix marks a base URL that must be resolved through SRV records.
const SRVSchemePrefix = "srv+"

// DefaultNameserver is the local stub resolver.
const DefaultNameserver = "127.0.0.53:53"

// ErrNoRecords is returned when an SRV lookup yields no usable record.
var ErrNoRecords = errors.New("no SRV records found")

// ResolveBaseURL returns raw unchanged unless its scheme carries the srv+ prefix,
// in which case the host is resolved through nameserver and the best SRV record
// (lowest priority, then highest weight) becomes the host and port.
func ResolveBaseURL(ctx context.Context, raw, nameserver string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if !strings.HasPrefix(u.Scheme, SRVSchemePrefix) {
		return raw, nil
	}

	scheme := strings.TrimPrefix(u.Scheme, SRVSchemePrefix)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if nameserver == "" {
		nameserver = DefaultNameserver
	}

	records, err := LookupSRV(ctx, u.Hostname(), nameserver)
	if err != nil {
		return "", err
	}
	best := records[0]

	resolved := *u
	resolved.Scheme = scheme
	resolved.Host = net.JoinHostPort(strings.TrimSuffix(best.Target, "."), strconv.Itoa(int(best.Port)))
	return strings.TrimSuffix(resolved.String(), "/"), nil
}

// LookupSRV queries nameserver for the SRV records of name and returns them
// ordered by ascending priority and descending weight.
func LookupSRV(ctx context.Context, name, nameserver string) ([]*dns.SRV, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeSRV)
	m.RecursionDesired = true

	c := new(dns.Client)
	in, _, err := c.ExchangeContext(ctx, m, nameserver)
	if err != nil {
		return nil, fmt.Errorf("SRV lookup of %s failed: %w", name, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("SRV lookup of %s failed: %s", name, dns.RcodeToString[in.Rcode])
	}

	records := make([]*dns.SRV, 0, len(in.Answer))
	for _, answer := range in.Answer {
		if srv, ok := answer.(*dns.SRV); ok && srv.Target != "." {
			records = append(records, srv)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRecords, name)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority < records[j].Priority
		}
		return records[i].Weight > records[j].Weight
	})
	return records, nil
}
