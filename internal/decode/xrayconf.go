package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"singforge/internal/descriptor"
)

// The client-config schema is modeled here directly instead of borrowing
// xray-core's conf package: recent cores dropped the http and quic stream
// settings this document format still carries.

type clientConfig struct {
	Outbounds []clientOutbound `json:"outbounds"`
}

type clientOutbound struct {
	Tag            string          `json:"tag"`
	Protocol       string          `json:"protocol"`
	Settings       *clientSettings `json:"settings"`
	StreamSettings *clientStream   `json:"streamSettings"`
}

type clientSettings struct {
	Vnext []clientVnext `json:"vnext"`
}

type clientVnext struct {
	Address string       `json:"address"`
	Port    int          `json:"port"`
	Users   []clientUser `json:"users"`
}

type clientUser struct {
	ID   string `json:"id"`
	Flow string `json:"flow"`
}

type clientStream struct {
	Network         string          `json:"network"`
	Security        string          `json:"security"`
	TLSSettings     *clientTLS      `json:"tlsSettings"`
	RealitySettings *clientReality  `json:"realitySettings"`
	WSSettings      *clientWS       `json:"wsSettings"`
	GRPCSettings    *clientGRPC     `json:"grpcSettings"`
	HTTPSettings    *clientHTTP     `json:"httpSettings"`
	QUICSettings    json.RawMessage `json:"quicSettings"`
}

type clientTLS struct {
	ServerName    string     `json:"serverName"`
	AllowInsecure bool       `json:"allowInsecure"`
	ALPN          stringList `json:"alpn"`
	Fingerprint   string     `json:"fingerprint"`
}

type clientReality struct {
	ServerName  string `json:"serverName"`
	Fingerprint string `json:"fingerprint"`
	PublicKey   string `json:"publicKey"`
	ShortID     string `json:"shortId"`
	SpiderX     string `json:"spiderX"`
}

type clientWS struct {
	Path    string            `json:"path"`
	Host    string            `json:"host"`
	Headers map[string]string `json:"headers"`
}

type clientGRPC struct {
	ServiceName string `json:"serviceName"`
}

type clientHTTP struct {
	Path string     `json:"path"`
	Host stringList `json:"host"`
}

// stringList accepts both "a,b" and ["a","b"] spellings, which client
// exports mix freely for alpn and http host lists.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = splitList(s)
		return nil
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = raw
	return nil
}

// DecodeClientConfig parses an xray-style client config document and reduces
// every vless outbound entry into an outbound descriptor. Malformed JSON or a
// missing outbounds array is fatal to the whole document; a single bad entry
// only produces a diagnostic. The result is considered successful when at
// least one entry decoded.
func DecodeClientConfig(doc string) *descriptor.BatchResult {
	res := &descriptor.BatchResult{}

	var cfg clientConfig
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		res.Diagnostics = append(res.Diagnostics, descriptor.Diagnostic{
			Position: 0,
			Input:    descriptor.Snippet(doc),
			Message:  fmt.Sprintf("invalid JSON: %v", err),
		})
		return res
	}
	if cfg.Outbounds == nil {
		res.Diagnostics = append(res.Diagnostics, descriptor.Diagnostic{
			Position: 0,
			Input:    descriptor.Snippet(doc),
			Message:  "no \"outbounds\" array found",
		})
		return res
	}

	for i, entry := range cfg.Outbounds {
		res.Attempted++
		if !strings.EqualFold(entry.Protocol, "vless") {
			res.Failed++
			res.Diagnostics = append(res.Diagnostics, descriptor.Diagnostic{
				Position: i + 1,
				Input:    descriptor.Snippet(entry.Tag),
				Message:  fmt.Sprintf("protocol %q skipped: only vless is supported", entry.Protocol),
			})
			continue
		}
		out, err := decodeClientOutbound(entry, len(res.Outbounds)+1)
		if err != nil {
			res.Failed++
			res.Diagnostics = append(res.Diagnostics, descriptor.Diagnostic{
				Position: i + 1,
				Input:    descriptor.Snippet(entry.Tag),
				Message:  err.Error(),
			})
			continue
		}
		res.Succeeded++
		res.Outbounds = append(res.Outbounds, out)
	}
	return res
}

func decodeClientOutbound(entry clientOutbound, tagCounter int) (*descriptor.Outbound, error) {
	if entry.Settings == nil || len(entry.Settings.Vnext) == 0 {
		return nil, errors.New("missing vnext server entry")
	}
	v := entry.Settings.Vnext[0]
	if len(v.Users) == 0 || v.Users[0].ID == "" {
		return nil, errors.New("missing user credential")
	}
	if v.Port < 1 || v.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", v.Port)
	}

	tag := entry.Tag
	if tag == "" {
		tag = fmt.Sprintf("proxy-p%d", tagCounter)
	}

	out := &descriptor.Outbound{
		Type:       "vless",
		Tag:        tag,
		Server:     v.Address,
		ServerPort: v.Port,
		UUID:       v.Users[0].ID,
		Flow:       v.Users[0].Flow,
	}

	tls, err := buildClientTLS(entry.StreamSettings, v.Address)
	if err != nil {
		return nil, err
	}
	out.TLS = tls

	tr, err := buildClientTransport(entry.StreamSettings)
	if err != nil {
		return nil, err
	}
	out.Transport = tr

	return out, nil
}

// buildClientTLS mirrors the link decoder's TLS semantics over the nested
// tlsSettings/realitySettings sub-objects.
func buildClientTLS(ss *clientStream, server string) (*descriptor.TLS, error) {
	security := "none"
	if ss != nil && ss.Security != "" {
		security = ss.Security
	}
	switch security {
	case "none":
		return nil, nil
	case "tls":
		tls := &descriptor.TLS{Enabled: true}
		if t := ss.TLSSettings; t != nil {
			tls.ServerName = t.ServerName
			tls.Insecure = t.AllowInsecure
			tls.ALPN = t.ALPN
			if descriptor.ValidFingerprint(t.Fingerprint) {
				tls.UTLS = &descriptor.UTLS{Enabled: true, Fingerprint: t.Fingerprint}
			}
		}
		if tls.ServerName == "" {
			tls.ServerName = server
		}
		return tls, nil
	case "reality":
		r := ss.RealitySettings
		if r == nil || r.PublicKey == "" {
			return nil, errors.New("Reality requires a public key")
		}
		tls := &descriptor.TLS{Enabled: true}
		tls.Reality = &descriptor.Reality{
			Enabled:   true,
			PublicKey: r.PublicKey,
			ShortID:   r.ShortID,
		}
		sni := r.ServerName
		if sni == "" {
			sni = r.SpiderX
		}
		tls.ServerName = sni
		if descriptor.ValidFingerprint(r.Fingerprint) {
			tls.UTLS = &descriptor.UTLS{Enabled: true, Fingerprint: r.Fingerprint}
		}
		return tls, nil
	default:
		return nil, fmt.Errorf("unknown security %q", security)
	}
}

// buildClientTransport mirrors the link decoder's transport semantics over
// the nested per-transport sub-objects.
func buildClientTransport(ss *clientStream) (*descriptor.Transport, error) {
	network := "tcp"
	if ss != nil && ss.Network != "" {
		network = ss.Network
	}
	switch network {
	case "tcp", "raw":
		return nil, nil
	case "ws":
		ws := &descriptor.WSOptions{}
		if w := ss.WSSettings; w != nil {
			ws.Path = w.Path
			if len(w.Headers) > 0 {
				ws.Headers = make(map[string]string, len(w.Headers))
				for k, v := range w.Headers {
					ws.Headers[k] = v
				}
			}
			if w.Host != "" {
				if ws.Headers == nil {
					ws.Headers = make(map[string]string, 1)
				}
				ws.Headers["Host"] = w.Host
			}
			if base, ed, ok := cutEarlyData(ws.Path); ok {
				ws.Path = base
				ws.MaxEarlyData = ed
				ws.EarlyDataHeaderName = edHeaderName
			}
		}
		return &descriptor.Transport{Kind: descriptor.TransportWS, WS: ws}, nil
	case "grpc":
		g := &descriptor.GRPCOptions{}
		if ss.GRPCSettings != nil {
			g.ServiceName = ss.GRPCSettings.ServiceName
		}
		return &descriptor.Transport{Kind: descriptor.TransportGRPC, GRPC: g}, nil
	case "http", "h2":
		h := &descriptor.HTTPOptions{}
		if ss.HTTPSettings != nil {
			h.Path = ss.HTTPSettings.Path
			h.Host = ss.HTTPSettings.Host
		}
		return &descriptor.Transport{Kind: descriptor.TransportHTTP, HTTP: h}, nil
	case "quic":
		return &descriptor.Transport{Kind: descriptor.TransportQUIC}, nil
	default:
		return nil, fmt.Errorf("unknown transport type %q", network)
	}
}
