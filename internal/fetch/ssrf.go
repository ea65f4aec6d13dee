// SPDX-License-Identifier: EPL-2.0

package fetch

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"syscall"
)

const maxURLLength = 2048

// ValidateURL rejects URLs the fetcher will never request: anything longer
// than maxURLLength, schemes other than http and https, embedded
// credentials, a missing host, and, unless allowPrivate, a literal address
// in a blocked range. Host names are checked when dialed.
func ValidateURL(rawURL string, allowPrivate bool) error {
	if len(rawURL) > maxURLLength {
		return fmt.Errorf("%w: %d chars, max %d", ErrInvalidURL, len(rawURL), maxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: credentials in URL", ErrInvalidURL)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: no host", ErrInvalidURL)
	}

	if allowPrivate {
		return nil
	}
	if addr, err := netip.ParseAddr(host); err == nil && blocked(addr) {
		return fmt.Errorf("%w: address %s is not public", ErrInvalidURL, addr)
	}

	return nil
}

// extraBlocked covers ranges the netip predicates do not.
var extraBlocked = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// blocked reports whether addr is loopback, private, link-local,
// multicast, unspecified or otherwise reserved.
func blocked(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range extraBlocked {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}

// dialControl runs after name resolution, on the address about to be
// dialed, so a host that re-resolves to a blocked address is still refused.
func dialControl(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		host, _, splitErr := net.SplitHostPort(address)
		if splitErr != nil {
			return fmt.Errorf("%w: dial address %q", ErrInvalidURL, address)
		}
		addr, parseErr := netip.ParseAddr(host)
		if parseErr != nil {
			return fmt.Errorf("%w: dial address %q", ErrInvalidURL, address)
		}
		ap = netip.AddrPortFrom(addr, 0)
	}
	if blocked(ap.Addr()) {
		return fmt.Errorf("%w: address %s is not public", ErrInvalidURL, ap.Addr())
	}

	return nil
}
