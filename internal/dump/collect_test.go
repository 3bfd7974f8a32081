package dump_test

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidralias/cidralias/internal/dump"
	"github.com/cidralias/cidralias/internal/subnet"
	"github.com/cidralias/cidralias/internal/testutil"
)

const collectDump = `Updated: 2026-08-01 12:00:00 +0300
198.51.100.7 | 192.0.2.0/24;example.com | *.wild.org;http://blocked.example/page;2026-01-15
192.0.2.0/24 | 10.0.0.0/8;example.com;HTTPS://Blocked.Example/other;2026-02-20
2001:db8::/32;;http://bad host/;2026-03-01
`

func TestCollector_WithDomains(t *testing.T) {
	set := subnet.NewSet()
	screener := subnet.NewScreener(set, testutil.NopLogger())
	c := dump.NewCollector(screener, true, testutil.NopLogger())

	err := c.Collect(dump.NewReader(strings.NewReader(collectDump)))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Records())

	// 10.0.0.0/8 is private and screened out, 192.0.2.0/24 appears twice
	// but counts once, the unparseable URL is skipped.
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"blocked.example", "example.com", "wild.org"}, c.Domains())
}

func TestCollector_SubnetsOnly(t *testing.T) {
	set := subnet.NewSet()
	screener := subnet.NewScreener(set, testutil.NopLogger())
	c := dump.NewCollector(screener, false, testutil.NopLogger())

	err := c.Collect(dump.NewReader(strings.NewReader(collectDump)))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Records())
	assert.Empty(t, c.Domains())

	v4, v6 := set.Split()
	assert.ElementsMatch(t, []netip.Prefix{
		netip.MustParsePrefix("198.51.100.7/32"),
		netip.MustParsePrefix("192.0.2.0/24"),
	}, v4)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("2001:db8::/32")}, v6)
}

func TestCollector_MalformedRecordAborts(t *testing.T) {
	set := subnet.NewSet()
	screener := subnet.NewScreener(set, testutil.NopLogger())
	c := dump.NewCollector(screener, true, testutil.NopLogger())

	err := c.Collect(dump.NewReader(strings.NewReader("header\n1.2.3.4;no-url-field\n")))
	assert.Error(t, err)
}
