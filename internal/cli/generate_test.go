package cli

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidralias/cidralias/internal/apperr"
)

const dumpHeader = "Updated: 2024-03-01 03:00:00 -0500\n"

// writeDump writes a dump fixture and returns its path. Pure-ASCII fixtures
// are byte-identical in windows-1251, so the default encoding applies.
func writeDump(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.csv")
	require.NoError(t, os.WriteFile(path, []byte(dumpHeader+body), 0o600))
	return path
}

func TestGenerate_SubnetsToStdout(t *testing.T) {
	dump := writeDump(t,
		"1.2.3.0/24 | 5.6.7.8;example.com;http://blocked.example/x;decision;2024-01-01\n"+
			"10.0.0.0/8;;;decision;2024-01-02\n"+
			"1.2.3.0/24;;;decision;2024-01-03\n")

	stdout, stderr, err := execute(t, nil, "generate", dump, testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.0/24\n5.6.7.8/32\n", stdout)
	assert.Contains(t, stderr, "dump processed")
	assert.Contains(t, stderr, "reason=private")
	assert.Contains(t, stderr, "networks merged")
}

func TestGenerate_StdinSource(t *testing.T) {
	in := strings.NewReader(dumpHeader + "192.0.2.0/24;;;x;y\n")

	stdout, _, err := execute(t, in, "generate", "-", testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.0/24\n", stdout)
}

func TestGenerate_URLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, dumpHeader+"203.0.113.0/24;;;x;y\n")
	}))
	t.Cleanup(srv.Close)

	stdout, stderr, err := execute(t, nil, "generate", srv.URL+"/dump.csv", testConfig(t), "--verbose")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.0/24\n", stdout)
	assert.Contains(t, stderr, "level=DEBUG", "verbose must enable the HTTP debug hook")
}

func TestGenerate_V6AppendsToPrimary(t *testing.T) {
	dump := writeDump(t, "2001:db8::/32 | 198.51.100.0/24;;;x;y\n")

	stdout, _, err := execute(t, nil, "generate", dump, testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.0/24\n2001:db8::/32\n", stdout, "IPv4 block precedes IPv6")
}

func TestGenerate_SplitFiles(t *testing.T) {
	dump := writeDump(t, "198.51.100.0/24 | 2001:db8::/32 | 2001:db8::1;;;x;y\n")
	dir := t.TempDir()
	out4 := filepath.Join(dir, "v4.txt")
	out6 := filepath.Join(dir, "v6.txt")

	stdout, _, err := execute(t, nil, "generate", dump, testConfig(t), "-o", out4, "-6", out6)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	v4, err := os.ReadFile(out4)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.0/24\n", string(v4))

	v6, err := os.ReadFile(out6)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::/32\n", string(v6), "contained host route must be collapsed")
}

func TestGenerate_SiblingsCollapse(t *testing.T) {
	dump := writeDump(t, "198.51.100.0/24 | 198.51.101.0/24;;;x;y\n")

	stdout, _, err := execute(t, nil, "generate", dump, testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.0/23\n", stdout)
}

func TestGenerate_ResolvesAddressLiterals(t *testing.T) {
	dump := writeDump(t, "192.0.2.0/24;9.9.9.9;;x;y\n")

	stdout, stderr, err := execute(t, nil, "generate", dump, testConfig(t), "--dns-jobs=2")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9.9/32\n192.0.2.0/24\n", stdout)
	assert.Contains(t, stderr, "resolving hostnames")
	assert.Contains(t, stderr, "resolution progress")
}

func TestGenerate_ResolvesDomains(t *testing.T) {
	addr := startDNSServer(t, dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		switch q.Qtype {
		case dns.TypeA:
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP("198.51.100.7").To4(),
			})
		case dns.TypeAAAA:
			m.Answer = append(m.Answer, &dns.AAAA{
				Hdr:  dns.RR_Header{Name: q.Name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
				AAAA: net.ParseIP("2001:db8::7"),
			})
		}
		_ = w.WriteMsg(m)
	}))

	dump := writeDump(t, "192.0.2.0/24;blocked.test;;x;y\n")

	stdout, _, err := execute(t, nil, "generate", dump, testConfig(t),
		"--dns-jobs=2", "--dns-server="+addr, "--dns-timeout=2s")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.0/24\n198.51.100.7/32\n2001:db8::7/128\n", stdout)
}

func TestGenerate_FailedHostnamesSkipped(t *testing.T) {
	addr := startDNSServer(t, dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		q := r.Question[0]
		switch {
		case q.Name == "good.test." && q.Qtype == dns.TypeA:
			m.SetReply(r)
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP("198.51.100.7").To4(),
			})
		case q.Name == "good.test.":
			m.SetReply(r) // NOERROR with no answers for other record types
		default:
			m.SetRcode(r, dns.RcodeNameError)
		}
		_ = w.WriteMsg(m)
	}))

	dump := writeDump(t, "192.0.2.0/24;good.test | missing.test;;x;y\n")

	stdout, stderr, err := execute(t, nil, "generate", dump, testConfig(t),
		"--dns-jobs=2", "--dns-server="+addr, "--dns-timeout=2s")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.0/24\n198.51.100.7/32\n", stdout)
	assert.Contains(t, stderr, "hostname skipped")
}

func TestGenerate_MalformedDumpFails(t *testing.T) {
	dump := writeDump(t, "192.0.2.0/24;;;x;y\nonly-two;fields\n")

	_, _, err := execute(t, nil, "generate", dump, testConfig(t))
	require.ErrorIs(t, err, apperr.ErrMalformedRecord)
}

func TestGenerate_UnknownEncoding(t *testing.T) {
	dump := writeDump(t, "192.0.2.0/24;;;x;y\n")

	_, _, err := execute(t, nil, "generate", dump, testConfig(t), "--encoding=klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown encoding")
}

func TestGenerate_RequiresSource(t *testing.T) {
	_, _, err := execute(t, nil, "generate", testConfig(t))
	require.Error(t, err)
}

func TestGenerate_MissingSourceFile(t *testing.T) {
	_, _, err := execute(t, nil, "generate", filepath.Join(t.TempDir(), "absent.csv"), testConfig(t))
	require.Error(t, err)
}

// startDNSServer runs a UDP DNS server with the given handler for the test's
// lifetime and returns its host:port address.
func startDNSServer(t *testing.T, handler dns.Handler) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go func() {
		_ = srv.ActivateAndServe()
	}()
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})
	return pc.LocalAddr().String()
}
