package decode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"singforge/internal/descriptor"
)

// sectionState tracks which INI section the line scanner is inside. The
// machine is explicit so malformed or out-of-order sections cannot leak keys
// into the wrong descriptor.
type sectionState int

const (
	sectionNone sectionState = iota
	sectionInterface
	sectionPeer
)

// defaultEndpointTag names the decoded interface when the caller does not
// rename it.
const defaultEndpointTag = "wireguard-1"

// rawPeer accumulates one [Peer] section before validation.
type rawPeer struct {
	line   int
	fields map[string]string
}

// DecodeWireGuard parses an INI-style [Interface]/[Peer] document into a
// single endpoint descriptor. Fatal structural problems (no [Interface], no
// PrivateKey, no [Peer], no valid peer) come back as the error; individual
// bad peers are skipped with a diagnostic and do not abort the document.
func DecodeWireGuard(text string) (*descriptor.Endpoint, []descriptor.Diagnostic, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	ep := &descriptor.Endpoint{Type: "wireguard", Tag: defaultEndpointTag}

	var (
		state         = sectionNone
		haveInterface bool
		pending       *rawPeer
		peers         []*rawPeer
	)
	flush := func() {
		if pending != nil && len(pending.fields) > 0 {
			peers = append(peers, pending)
		}
		pending = nil
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			switch strings.ToLower(line) {
			case "[interface]":
				state = sectionInterface
				haveInterface = true
			case "[peer]":
				state = sectionPeer
				pending = &rawPeer{line: i + 1, fields: make(map[string]string)}
			default:
				// Keys under an unknown section are ignored.
				state = sectionNone
			}
			continue
		}

		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		// Init-packet values are written as <b 0x...> blobs; unwrap them.
		if len(val) >= 2 && strings.HasPrefix(val, "<") && strings.HasSuffix(val, ">") {
			val = val[1 : len(val)-1]
		}

		switch state {
		case sectionInterface:
			applyInterfaceField(ep, key, val)
		case sectionPeer:
			pending.fields[key] = val
		case sectionNone:
		}
	}
	flush()

	var diags []descriptor.Diagnostic
	if !haveInterface {
		return nil, diags, errors.New("no [Interface] section found")
	}
	if ep.PrivateKey == "" {
		return nil, diags, errors.New("[Interface] section is missing PrivateKey")
	}
	if len(peers) == 0 {
		return nil, diags, errors.New("no [Peer] section found")
	}

	for _, rp := range peers {
		peer, err := buildPeer(rp)
		if err != nil {
			diags = append(diags, descriptor.Diagnostic{
				Position: rp.line,
				Input:    "[Peer]",
				Message:  err.Error(),
			})
			continue
		}
		ep.Peers = append(ep.Peers, peer)
	}
	if len(ep.Peers) == 0 {
		return nil, diags, errors.New("no valid [Peer] entries")
	}
	return ep, diags, nil
}

// applyInterfaceField routes one [Interface] key onto the endpoint. Unknown
// keys (DNS, Table, PostUp, ...) belong to the OS-level tooling and are
// ignored. Present-but-unparseable numeric values are dropped without a
// diagnostic; that leniency is deliberate.
func applyInterfaceField(ep *descriptor.Endpoint, key, val string) {
	switch key {
	case "privatekey":
		ep.PrivateKey = val
	case "address":
		for _, addr := range splitList(val) {
			ep.Address = append(ep.Address, normalizeCIDR(addr))
		}
	case "mtu":
		setInt(&ep.MTU, val)
	case "listenport":
		setInt(&ep.ListenPort, val)
	case "jc":
		setInt(&ep.JC, val)
	case "jmin":
		setInt(&ep.JMin, val)
	case "jmax":
		setInt(&ep.JMax, val)
	case "s1":
		setInt(&ep.S1, val)
	case "s2":
		setInt(&ep.S2, val)
	case "s3":
		setInt(&ep.S3, val)
	case "s4":
		setInt(&ep.S4, val)
	case "h1":
		ep.H1 = val
	case "h2":
		ep.H2 = val
	case "h3":
		ep.H3 = val
	case "h4":
		ep.H4 = val
	case "i1":
		ep.I1 = val
	case "i2":
		ep.I2 = val
	case "i3":
		ep.I3 = val
	case "i4":
		ep.I4 = val
	case "i5":
		ep.I5 = val
	}
}

// buildPeer validates one accumulated [Peer] section.
func buildPeer(rp *rawPeer) (descriptor.Peer, error) {
	pk := rp.fields["publickey"]
	if pk == "" {
		return descriptor.Peer{}, errors.New("peer is missing PublicKey")
	}
	endpoint := rp.fields["endpoint"]
	if endpoint == "" {
		return descriptor.Peer{}, errors.New("peer is missing Endpoint")
	}
	host, port, err := splitHostPort(endpoint)
	if err != nil {
		return descriptor.Peer{}, fmt.Errorf("invalid peer endpoint %q: %v", endpoint, err)
	}

	peer := descriptor.Peer{
		Address:      host,
		Port:         port,
		PublicKey:    pk,
		PreSharedKey: rp.fields["presharedkey"],
		AllowedIPs:   []string{},
	}
	if v := rp.fields["allowedips"]; v != "" {
		peer.AllowedIPs = splitList(v)
	}
	if v := rp.fields["persistentkeepalive"]; v != "" {
		setInt(&peer.PersistentKeepaliveInterval, v)
	}
	return peer, nil
}

// normalizeCIDR gives bare interface addresses an explicit prefix length:
// /32 for IPv4, /128 for IPv6.
func normalizeCIDR(addr string) string {
	if strings.Contains(addr, "/") {
		return addr
	}
	if strings.Contains(addr, ":") {
		return addr + "/128"
	}
	return addr + "/32"
}

// setInt stores a base-10 value, leaving the target untouched when the text
// does not parse.
func setInt(dst *int, val string) {
	if n, err := strconv.Atoi(val); err == nil {
		*dst = n
	}
}
