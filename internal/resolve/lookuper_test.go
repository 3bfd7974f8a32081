package resolve

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookuper_SystemDefault(t *testing.T) {
	l, err := NewLookuper("", time.Second)
	require.NoError(t, err)
	assert.Same(t, net.DefaultResolver, l)
}

func TestNewLookuper_Server(t *testing.T) {
	l, err := NewLookuper("127.0.0.1:5353", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &ServerLookuper{}, l)
}

func TestNewServerLookuper_AddressNormalization(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"bare v4", "1.1.1.1", "1.1.1.1:53"},
		{"v4 with port", "1.1.1.1:5353", "1.1.1.1:5353"},
		{"bare v6", "2606:4700:4700::1111", "[2606:4700:4700::1111]:53"},
		{"bracketed v6", "[2606:4700:4700::1111]", "[2606:4700:4700::1111]:53"},
		{"hostname", "dns.example", "dns.example:53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewServerLookuper(tt.server, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.addr)
		})
	}
}

func TestNewServerLookuper_Invalid(t *testing.T) {
	_, err := NewServerLookuper("bad[server", time.Second)
	assert.Error(t, err)
}

// startServer runs a UDP DNS server with the given handler on an ephemeral
// port and returns its address.
func startServer(t *testing.T, handler dns.Handler) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

// answering builds a handler that replies with the given rcode and, when set,
// one A and one AAAA record.
func answering(rcode int, v4, v6 string) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		resp.Rcode = rcode
		q := req.Question[0]
		switch {
		case q.Qtype == dns.TypeA && v4 != "":
			resp.Answer = append(resp.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP(v4).To4(),
			})
		case q.Qtype == dns.TypeAAAA && v6 != "":
			resp.Answer = append(resp.Answer, &dns.AAAA{
				Hdr:  dns.RR_Header{Name: q.Name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
				AAAA: net.ParseIP(v6),
			})
		}
		_ = w.WriteMsg(resp)
	}
}

func TestServerLookuper_BothFamilies(t *testing.T) {
	addr := startServer(t, answering(dns.RcodeSuccess, "192.0.2.10", "2001:db8::10"))
	l, err := NewServerLookuper(addr, time.Second)
	require.NoError(t, err)

	addrs, err := l.LookupNetIP(context.Background(), "ip", "host.example")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("192.0.2.10"),
		netip.MustParseAddr("2001:db8::10"),
	}, addrs)
}

func TestServerLookuper_SingleFamily(t *testing.T) {
	addr := startServer(t, answering(dns.RcodeSuccess, "192.0.2.10", "2001:db8::10"))
	l, err := NewServerLookuper(addr, time.Second)
	require.NoError(t, err)

	v4, err := l.LookupNetIP(context.Background(), "ip4", "host.example")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("192.0.2.10")}, v4)

	v6, err := l.LookupNetIP(context.Background(), "ip6", "host.example")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("2001:db8::10")}, v6)
}

func TestServerLookuper_NXDOMAIN(t *testing.T) {
	addr := startServer(t, answering(dns.RcodeNameError, "", ""))
	l, err := NewServerLookuper(addr, time.Second)
	require.NoError(t, err)

	_, err = l.LookupNetIP(context.Background(), "ip", "missing.example")
	var dnsErr *net.DNSError
	require.ErrorAs(t, err, &dnsErr)
	assert.True(t, dnsErr.IsNotFound)
	assert.False(t, Transient(err))
}

func TestServerLookuper_ServerFailure(t *testing.T) {
	addr := startServer(t, answering(dns.RcodeServerFailure, "", ""))
	l, err := NewServerLookuper(addr, time.Second)
	require.NoError(t, err)

	_, err = l.LookupNetIP(context.Background(), "ip", "flaky.example")
	var dnsErr *net.DNSError
	require.ErrorAs(t, err, &dnsErr)
	assert.True(t, dnsErr.IsTemporary)
	assert.True(t, Transient(err))
}

func TestServerLookuper_EmptyAnswers(t *testing.T) {
	addr := startServer(t, answering(dns.RcodeSuccess, "", ""))
	l, err := NewServerLookuper(addr, time.Second)
	require.NoError(t, err)

	_, err = l.LookupNetIP(context.Background(), "ip", "empty.example")
	var dnsErr *net.DNSError
	require.ErrorAs(t, err, &dnsErr)
	assert.True(t, dnsErr.IsNotFound)
}
