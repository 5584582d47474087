// Package descriptor defines the normalized outbound and endpoint shapes that
// the decoders produce and the assembler consumes. Every descriptor is created
// by exactly one decode call and owned by the caller afterwards.
package descriptor

// Outbound is one egress route: destination server, credential and the
// optional TLS/transport layers riding on top of it.
type Outbound struct {
	Type       string     `json:"type"`
	Tag        string     `json:"tag"`
	Server     string     `json:"server"`
	ServerPort int        `json:"server_port"`
	UUID       string     `json:"uuid"`
	Flow       string     `json:"flow,omitempty"`
	TLS        *TLS       `json:"tls,omitempty"`
	Transport  *Transport `json:"transport,omitempty"`
}

// TLS is the optional encryption layer on an outbound. Enabled is always true
// when the struct is present.
type TLS struct {
	Enabled    bool     `json:"enabled"`
	ServerName string   `json:"server_name,omitempty"`
	Insecure   bool     `json:"insecure,omitempty"`
	ALPN       []string `json:"alpn,omitempty"`
	UTLS       *UTLS    `json:"utls,omitempty"`
	Reality    *Reality `json:"reality,omitempty"`
}

// UTLS selects a client-hello impersonation profile.
type UTLS struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint"`
}

// Reality carries the Reality handshake parameters. PublicKey is mandatory;
// decoders reject entries that request Reality without one.
type Reality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortID   string `json:"short_id"`
}

// fingerprints is the closed set of uTLS client-hello profiles. Values outside
// this set are dropped by the decoders without a diagnostic.
var fingerprints = map[string]bool{
	"chrome":     true,
	"firefox":    true,
	"edge":       true,
	"safari":     true,
	"360":        true,
	"qq":         true,
	"ios":        true,
	"android":    true,
	"random":     true,
	"randomized": true,
}

// ValidFingerprint reports whether fp names a known uTLS profile.
func ValidFingerprint(fp string) bool {
	return fingerprints[fp]
}
