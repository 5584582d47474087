package descriptor

// Endpoint is one WireGuard interface definition: local identity and
// addresses plus the remote peers it exchanges packets with. The optional
// obfuscation parameters cover both AmneziaWG generations; zero values are
// omitted from the serialized form.
type Endpoint struct {
	Type       string   `json:"type"`
	Tag        string   `json:"tag"`
	Address    []string `json:"address"`
	PrivateKey string   `json:"private_key"`
	ListenPort int      `json:"listen_port,omitempty"`
	MTU        int      `json:"mtu,omitempty"`
	Peers      []Peer   `json:"peers"`

	// Generation-1 handshake jitter, packet size and header overrides.
	JC   int    `json:"jc,omitempty"`
	JMin int    `json:"jmin,omitempty"`
	JMax int    `json:"jmax,omitempty"`
	S1   int    `json:"s1,omitempty"`
	S2   int    `json:"s2,omitempty"`
	S3   int    `json:"s3,omitempty"`
	S4   int    `json:"s4,omitempty"`
	H1   string `json:"h1,omitempty"`
	H2   string `json:"h2,omitempty"`
	H3   string `json:"h3,omitempty"`
	H4   string `json:"h4,omitempty"`

	// Generation-2 init packet definitions, passed through as opaque text.
	I1 string `json:"i1,omitempty"`
	I2 string `json:"i2,omitempty"`
	I3 string `json:"i3,omitempty"`
	I4 string `json:"i4,omitempty"`
	I5 string `json:"i5,omitempty"`
}

// Peer is one remote endpoint of a WireGuard interface.
type Peer struct {
	Address                     string   `json:"address"`
	Port                        int      `json:"port"`
	PublicKey                   string   `json:"public_key"`
	PreSharedKey                string   `json:"pre_shared_key,omitempty"`
	AllowedIPs                  []string `json:"allowed_ips"`
	PersistentKeepaliveInterval int      `json:"persistent_keepalive_interval,omitempty"`
}
