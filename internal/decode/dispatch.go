package decode

import (
	"errors"
	"fmt"
	"strings"

	"singforge/internal/descriptor"
)

// recognizedSchemes are link protocols we can classify but not yet decode.
// They get a distinct "not supported yet" diagnostic so users can tell a
// known-but-unimplemented protocol apart from garbage input.
var recognizedSchemes = map[string]bool{
	"vmess":       true,
	"trojan":      true,
	"ss":          true,
	"shadowsocks": true,
	"socks":       true,
	"socks5":      true,
	"hysteria2":   true,
	"hy2":         true,
	"tuic":        true,
	"wireguard":   true,
}

// DecodeLink inspects a link's scheme and routes it to the matching decoder.
// position is forwarded for fallback tag synthesis.
func DecodeLink(raw string, position int) (*descriptor.Outbound, error) {
	scheme, _, found := strings.Cut(strings.TrimSpace(raw), "://")
	if !found {
		return nil, errors.New("unknown or invalid protocol")
	}
	switch s := strings.ToLower(scheme); {
	case s == "vless":
		return DecodeVLESS(raw, position)
	case recognizedSchemes[s]:
		return nil, fmt.Errorf("protocol %q is not supported yet", s)
	default:
		return nil, fmt.Errorf("unknown or invalid protocol %q", s)
	}
}
