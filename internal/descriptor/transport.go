package descriptor

import (
	"encoding/json"
	"fmt"
)

// TransportKind enumerates the stream transports an outbound can ride on.
type TransportKind string

const (
	TransportTCP  TransportKind = "tcp"
	TransportWS   TransportKind = "ws"
	TransportGRPC TransportKind = "grpc"
	TransportHTTP TransportKind = "http"
	TransportQUIC TransportKind = "quic"
)

// WSOptions carries WebSocket transport settings.
type WSOptions struct {
	Path                string            `json:"path,omitempty"`
	Headers             map[string]string `json:"headers,omitempty"`
	MaxEarlyData        int               `json:"max_early_data,omitempty"`
	EarlyDataHeaderName string            `json:"early_data_header_name,omitempty"`
}

// GRPCOptions carries gRPC transport settings.
type GRPCOptions struct {
	ServiceName string `json:"service_name,omitempty"`
}

// HTTPOptions carries HTTP/2 transport settings.
type HTTPOptions struct {
	Path string   `json:"path,omitempty"`
	Host []string `json:"host,omitempty"`
}

// Transport is a closed union over the supported stream transports. Exactly
// the variant matching Kind is serialized; marshaling an unknown Kind is an
// error rather than a silent omission, so adding a transport without teaching
// the serializer about it cannot drop fields.
//
// Plain-TCP outbounds carry no Transport at all; the TCP kind exists so the
// union stays exhaustive for callers that construct one anyway.
type Transport struct {
	Kind TransportKind
	WS   *WSOptions
	GRPC *GRPCOptions
	HTTP *HTTPOptions
}

func (t Transport) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TransportTCP, TransportQUIC:
		return json.Marshal(struct {
			Type TransportKind `json:"type"`
		}{t.Kind})
	case TransportWS:
		opts := t.WS
		if opts == nil {
			opts = &WSOptions{}
		}
		return json.Marshal(struct {
			Type TransportKind `json:"type"`
			*WSOptions
		}{TransportWS, opts})
	case TransportGRPC:
		opts := t.GRPC
		if opts == nil {
			opts = &GRPCOptions{}
		}
		return json.Marshal(struct {
			Type TransportKind `json:"type"`
			*GRPCOptions
		}{TransportGRPC, opts})
	case TransportHTTP:
		opts := t.HTTP
		if opts == nil {
			opts = &HTTPOptions{}
		}
		return json.Marshal(struct {
			Type TransportKind `json:"type"`
			*HTTPOptions
		}{TransportHTTP, opts})
	default:
		return nil, fmt.Errorf("unknown transport kind %q", t.Kind)
	}
}
