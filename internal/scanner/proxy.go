package scanner

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

// parseProxyURL accepts host:port shorthand and defaults it to http.
func parseProxyURL(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy URL %q has no host", raw)
	}
	return u, nil
}

// configureProxy routes the transport through an HTTP(S) CONNECT proxy or a
// SOCKS5 dialer. socks5h resolves names on the proxy side.
func configureProxy(transport *http.Transport, raw string, forward *net.Dialer) error {
	u, err := parseProxyURL(raw)
	if err != nil {
		return err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, forward)
		if err != nil {
			return fmt.Errorf("creating SOCKS dialer for %q: %w", raw, err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("SOCKS dialer for %q does not support contexts", raw)
		}
		transport.Proxy = nil
		transport.DialContext = cd.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme %q (supported: http, https, socks5, socks5h)", u.Scheme)
	}
	return nil
}
