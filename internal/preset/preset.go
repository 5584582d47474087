// Package preset holds the fixed DNS-resolver and inbound-listener fragments
// selectable by identifier. Fragments are stored as raw JSON and copied
// verbatim into the assembled configuration.
package preset

import "encoding/json"

// DNS is one selectable DNS policy.
type DNS struct {
	ID          string
	Label       string
	Description string
	Fragment    json.RawMessage
}

// Inbound is one selectable inbound-listener policy.
type Inbound struct {
	ID          string
	Label       string
	Description string
	Inbounds    []json.RawMessage
}

var dnsPresets = []DNS{
	{
		ID:          "default",
		Label:       "Google + local",
		Description: "Remote queries over Google DoH through the proxy, local queries direct",
		Fragment: json.RawMessage(`{
  "servers": [
    { "tag": "remote", "address": "https://8.8.8.8/dns-query", "detour": "proxy" },
    { "tag": "local", "address": "223.5.5.5", "detour": "direct" }
  ],
  "rules": [
    { "outbound": "any", "server": "local" }
  ],
  "strategy": "prefer_ipv4"
}`),
	},
	{
		ID:          "cloudflare",
		Label:       "Cloudflare",
		Description: "All queries over Cloudflare DoH through the proxy",
		Fragment: json.RawMessage(`{
  "servers": [
    { "tag": "remote", "address": "https://1.1.1.1/dns-query", "detour": "proxy" }
  ],
  "strategy": "prefer_ipv4"
}`),
	},
	{
		ID:          "adguard",
		Label:       "AdGuard",
		Description: "Ad-filtering AdGuard DNS through the proxy, local queries direct",
		Fragment: json.RawMessage(`{
  "servers": [
    { "tag": "remote", "address": "https://dns.adguard-dns.com/dns-query", "detour": "proxy" },
    { "tag": "local", "address": "223.5.5.5", "detour": "direct" }
  ],
  "rules": [
    { "outbound": "any", "server": "local" }
  ],
  "strategy": "prefer_ipv4"
}`),
	},
}

var inboundPresets = []Inbound{
	{
		ID:          "mixed",
		Label:       "Mixed HTTP/SOCKS",
		Description: "Single mixed HTTP+SOCKS listener on 127.0.0.1:2080",
		Inbounds: []json.RawMessage{
			json.RawMessage(`{ "type": "mixed", "tag": "mixed-in", "listen": "127.0.0.1", "listen_port": 2080 }`),
		},
	},
	{
		ID:          "socks",
		Label:       "SOCKS only",
		Description: "Classic SOCKS5 listener on 127.0.0.1:1080",
		Inbounds: []json.RawMessage{
			json.RawMessage(`{ "type": "socks", "tag": "socks-in", "listen": "127.0.0.1", "listen_port": 1080 }`),
		},
	},
	{
		ID:          "tun",
		Label:       "TUN",
		Description: "System-wide TUN interface with automatic routing",
		Inbounds: []json.RawMessage{
			json.RawMessage(`{ "type": "tun", "tag": "tun-in", "address": ["172.19.0.1/30"], "mtu": 9000, "auto_route": true, "strict_route": true }`),
		},
	},
}

// LookupDNS returns the DNS preset with the given id.
func LookupDNS(id string) (DNS, bool) {
	for _, p := range dnsPresets {
		if p.ID == id {
			return p, true
		}
	}
	return DNS{}, false
}

// LookupInbound returns the inbound preset with the given id.
func LookupInbound(id string) (Inbound, bool) {
	for _, p := range inboundPresets {
		if p.ID == id {
			return p, true
		}
	}
	return Inbound{}, false
}

// DNSList returns all DNS presets in presentation order.
func DNSList() []DNS {
	return append([]DNS(nil), dnsPresets...)
}

// InboundList returns all inbound presets in presentation order.
func InboundList() []Inbound {
	return append([]Inbound(nil), inboundPresets...)
}
