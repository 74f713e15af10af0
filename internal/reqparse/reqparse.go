package reqparse

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ParsedRequest holds the probe target and headers taken from a raw HTTP
// request file.
type ParsedRequest struct {
	Method  string
	URL     string // base URL: scheme, host and request path without the query
	Headers map[string]string
}

// headers the transport derives itself.
var skipHeaders = map[string]bool{
	"Host":           true,
	"Content-Length": true,
	"Connection":     true,
}

// ParseFile reads a raw HTTP request (e.g. a Burp Suite export). The request
// path becomes the base URL that words are appended to, so a request for
// "/api/v1/" probes "/api/v1/<word>".
func ParseFile(path string) (*ParsedRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening request file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB lines for large cookies

	if !scanner.Scan() {
		return nil, fmt.Errorf("request file is empty")
	}
	requestLine := strings.TrimSpace(scanner.Text())
	parts := strings.SplitN(requestLine, " ", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid request line: %q", requestLine)
	}
	method := parts[0]
	target := parts[1]

	headers := make(map[string]string)
	var host string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			continue
		}
		key := http.CanonicalHeaderKey(strings.TrimSpace(line[:colonIdx]))
		value := strings.TrimSpace(line[colonIdx+1:])
		if key == "Host" {
			host = value
		}
		if skipHeaders[key] {
			continue
		}
		headers[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}

	// Absolute-form request target, as sent to proxies.
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid URL in request line: %w", err)
		}
		return &ParsedRequest{
			Method:  method,
			URL:     u.Scheme + "://" + u.Host + u.EscapedPath(),
			Headers: headers,
		}, nil
	}

	if host == "" {
		return nil, fmt.Errorf("request file missing Host header")
	}

	// Burp exports do not record the scheme; assume TLS unless port 80 is explicit.
	scheme := "https"
	if strings.HasSuffix(host, ":80") {
		scheme = "http"
	}

	reqPath, _, _ := strings.Cut(target, "?")
	reqPath, _, _ = strings.Cut(reqPath, "#")
	if !strings.HasPrefix(reqPath, "/") {
		reqPath = "/" + reqPath
	}

	return &ParsedRequest{
		Method:  method,
		URL:     scheme + "://" + host + reqPath,
		Headers: headers,
	}, nil
}
