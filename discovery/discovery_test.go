package discovery

import (
	"context"
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDNSServer(t *testing.T, records map[string][]dns.SRV) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			q := r.Question[0]
			srvs, ok := records[q.Name]
			if !ok {
				m.Rcode = dns.RcodeNameError
			}
			for i := range srvs {
				srv := srvs[i]
				srv.Hdr = dns.RR_Header{Name: q.Name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 60}
				m.Answer = append(m.Answer, &srv)
			}
			w.WriteMsg(m)
		}),
	}

	go server.ActivateAndServe()
	<-started
	t.Cleanup(func() { server.Shutdown() })

	return pc.LocalAddr().String()
}

func TestResolveBaseURL(t *testing.T) {
	nameserver := startDNSServer(t, map[string][]dns.SRV{
		"_fmanager._tcp.example.com.": {
			{Priority: 20, Weight: 100, Port: 8443, Target: "backup.example.com."},
			{Priority: 10, Weight: 10, Port: 9443, Target: "light.example.com."},
			{Priority: 10, Weight: 50, Port: 7443, Target: "heavy.example.com."},
		},
		"_empty._tcp.example.com.": {},
	})

	tests := []struct {
		name        string
		raw         string
		expected    string
		expectedErr bool
	}{
		{
			name:     "plain url is unchanged",
			raw:      "https://fmanager-dev.pila.vn",
			expected: "https://fmanager-dev.pila.vn",
		},
		{
			name:     "srv picks lowest priority then highest weight",
			raw:      "srv+https://_fmanager._tcp.example.com",
			expected: "https://heavy.example.com:7443",
		},
		{
			name:     "path is kept",
			raw:      "srv+http://_fmanager._tcp.example.com/prefix",
			expected: "http://heavy.example.com:7443/prefix",
		},
		{
			name:        "no records",
			raw:         "srv+https://_empty._tcp.example.com",
			expectedErr: true,
		},
		{
			name:        "nxdomain",
			raw:         "srv+https://_missing._tcp.example.com",
			expectedErr: true,
		},
		{
			name:        "unsupported scheme",
			raw:         "srv+ftp://_fmanager._tcp.example.com",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := ResolveBaseURL(context.Background(), tt.raw, nameserver)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestLookupSRV_NoRecords(t *testing.T) {
	nameserver := startDNSServer(t, map[string][]dns.SRV{"_empty._tcp.example.com.": {}})

	_, err := LookupSRV(context.Background(), "_empty._tcp.example.com", nameserver)
	assert.ErrorIs(t, err, ErrNoRecords)
}
