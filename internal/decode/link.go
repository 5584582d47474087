// Package decode turns raw proxy-connection text — vless:// links, xray-style
// client config JSON and WireGuard INI documents — into normalized
// descriptors. Every decoder is a pure function: identical input yields
// identical output and failures come back as values, never as panics.
package decode

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"singforge/internal/descriptor"
)

const vlessScheme = "vless://"

// minCredentialLen is a structural sanity floor for the identity string, not
// full UUID validation. Canonical UUIDs are 36 characters.
const minCredentialLen = 32

// edHeaderName is the header WebSocket early data travels in.
const edHeaderName = "Sec-WebSocket-Protocol"

// DecodeVLESS parses a single vless:// link into an outbound descriptor.
// position seeds the fallback tag (proxy-p<position>) when the link carries
// no #fragment name.
func DecodeVLESS(raw string, position int) (*descriptor.Outbound, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty link")
	}
	if !strings.HasPrefix(strings.ToLower(raw), vlessScheme) {
		return nil, errors.New("link does not start with vless://")
	}
	rest := raw[len(vlessScheme):]

	// Fragment is the user-visible tag; synthesize one when absent.
	rest, frag, _ := strings.Cut(rest, "#")
	tag := ""
	if frag != "" {
		if dec, err := url.PathUnescape(frag); err == nil {
			tag = strings.TrimSpace(dec)
		} else {
			tag = frag
		}
	}
	if tag == "" {
		tag = fmt.Sprintf("proxy-p%d", position)
	}

	hostPart, query, _ := strings.Cut(rest, "?")

	// Last '@' before the query separates credential from host:port. UUIDs
	// cannot contain '@' but pathological names on the host side could.
	at := strings.LastIndex(hostPart, "@")
	if at < 0 {
		return nil, errors.New("missing '@' between credential and host")
	}
	id := hostPart[:at]
	if len(id) < minCredentialLen {
		return nil, fmt.Errorf("credential too short (%d chars, want at least %d)", len(id), minCredentialLen)
	}

	host, port, err := splitHostPort(hostPart[at+1:])
	if err != nil {
		return nil, err
	}
	host = normalizeHost(host)

	params := parseQuery(query)

	out := &descriptor.Outbound{
		Type:       "vless",
		Tag:        tag,
		Server:     host,
		ServerPort: port,
		UUID:       id,
		Flow:       params["flow"],
	}

	tls, err := buildLinkTLS(params, host)
	if err != nil {
		return nil, err
	}
	out.TLS = tls

	tr, err := buildLinkTransport(params)
	if err != nil {
		return nil, err
	}
	out.Transport = tr

	return out, nil
}

// buildLinkTLS maps the security/sni/fp/alpn/pbk/sid/spx parameter family
// onto a TLS descriptor. Returns nil for security=none.
func buildLinkTLS(params map[string]string, host string) (*descriptor.TLS, error) {
	security := params["security"]
	if security == "" {
		security = "none"
	}
	switch security {
	case "none":
		return nil, nil
	case "tls", "reality":
	default:
		return nil, fmt.Errorf("unknown security %q", security)
	}

	tls := &descriptor.TLS{Enabled: true}

	sni := params["sni"]
	if sni == "" {
		sni = params["serverName"]
	}

	fp := params["fp"]
	if fp == "" {
		fp = params["fingerprint"]
	}
	// An unrecognized fingerprint is dropped, not rejected.
	if descriptor.ValidFingerprint(fp) {
		tls.UTLS = &descriptor.UTLS{Enabled: true, Fingerprint: fp}
	}

	if alpn := params["alpn"]; alpn != "" {
		tls.ALPN = splitList(alpn)
	}
	if v := params["allowInsecure"]; v == "1" || v == "true" {
		tls.Insecure = true
	}

	if security == "reality" {
		pbk := params["pbk"]
		if pbk == "" {
			return nil, errors.New("Reality requires a public key (pbk parameter)")
		}
		tls.Reality = &descriptor.Reality{
			Enabled:   true,
			PublicKey: pbk,
			ShortID:   params["sid"],
		}
		if sni == "" {
			sni = params["spx"]
		}
	} else if sni == "" {
		sni = host
	}
	tls.ServerName = sni

	return tls, nil
}

// buildLinkTransport maps the type/path/host/serviceName/ed parameter family
// onto a transport descriptor. Plain TCP yields nil.
func buildLinkTransport(params map[string]string) (*descriptor.Transport, error) {
	typ := params["type"]
	if typ == "" {
		typ = "tcp"
	}
	switch typ {
	case "tcp":
		return nil, nil
	case "ws":
		ws := &descriptor.WSOptions{Path: params["path"]}
		if h := params["host"]; h != "" {
			ws.Headers = map[string]string{"Host": h}
		}
		if base, ed, ok := cutEarlyData(ws.Path); ok {
			ws.Path = base
			ws.MaxEarlyData = ed
			ws.EarlyDataHeaderName = edHeaderName
		}
		if v := params["ed"]; v != "" {
			// Unparseable early-data sizes are dropped silently.
			if ed, err := strconv.Atoi(v); err == nil {
				ws.MaxEarlyData = ed
				ws.EarlyDataHeaderName = edHeaderName
			}
		}
		return &descriptor.Transport{Kind: descriptor.TransportWS, WS: ws}, nil
	case "grpc":
		svc := params["serviceName"]
		if svc == "" {
			svc = params["service"]
		}
		return &descriptor.Transport{
			Kind: descriptor.TransportGRPC,
			GRPC: &descriptor.GRPCOptions{ServiceName: svc},
		}, nil
	case "http":
		httpOpts := &descriptor.HTTPOptions{Path: params["path"]}
		if h := params["host"]; h != "" {
			httpOpts.Host = splitList(h)
		}
		return &descriptor.Transport{Kind: descriptor.TransportHTTP, HTTP: httpOpts}, nil
	case "quic":
		return &descriptor.Transport{Kind: descriptor.TransportQUIC}, nil
	default:
		return nil, fmt.Errorf("unknown transport type %q", typ)
	}
}

// parseQuery decodes a raw query string into a flat map. Last value wins on
// duplicate keys, matching standard query-string semantics.
func parseQuery(query string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		if dec, err := url.QueryUnescape(k); err == nil {
			k = dec
		}
		if dec, err := url.QueryUnescape(v); err == nil {
			v = dec
		}
		params[k] = v
	}
	return params
}

// splitHostPort splits "host:port" or "[v6]:port". A bracketed host must be
// followed by an explicit port; otherwise the last colon wins, which supports
// hostnames and IPv4 but deliberately not bare unbracketed IPv6.
func splitHostPort(s string) (string, int, error) {
	var host, portStr string
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return "", 0, errors.New("unterminated '[' in IPv6 address")
		}
		host = s[1:end]
		rest := s[end+1:]
		if !strings.HasPrefix(rest, ":") {
			return "", 0, errors.New("missing port after IPv6 address")
		}
		portStr = rest[1:]
	} else {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			return "", 0, errors.New("missing port")
		}
		host, portStr = s[:i], s[i+1:]
	}
	if host == "" {
		return "", 0, errors.New("missing host")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port %d out of range", port)
	}
	return host, port, nil
}

// normalizeHost converts internationalized hostnames to punycode so the
// emitted server field is always dialable. Conversion failures keep the
// original spelling.
func normalizeHost(host string) string {
	for i := 0; i < len(host); i++ {
		if host[i] >= 0x80 {
			if ascii, err := idna.ToASCII(host); err == nil {
				return ascii
			}
			return host
		}
	}
	return host
}

// cutEarlyData extracts a "?ed=N" suffix embedded in a WebSocket path.
func cutEarlyData(path string) (string, int, bool) {
	base, v, found := strings.Cut(path, "?ed=")
	if !found {
		return path, 0, false
	}
	ed, err := strconv.Atoi(v)
	if err != nil {
		return path, 0, false
	}
	return base, ed, true
}

// splitList splits a comma-separated value, trimming entries and dropping
// empty ones.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
