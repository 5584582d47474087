package descriptor

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTransportMarshal_WS(t *testing.T) {
	tr := Transport{Kind: TransportWS, WS: &WSOptions{
		Path:                "/ws",
		Headers:             map[string]string{"Host": "cdn.example.com"},
		MaxEarlyData:        2048,
		EarlyDataHeaderName: "Sec-WebSocket-Protocol",
	}}
	blob, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"type":"ws"`, `"path":"/ws"`, `"max_early_data":2048`, `"early_data_header_name"`} {
		if !strings.Contains(string(blob), want) {
			t.Fatalf("blob=%s, missing %s", blob, want)
		}
	}
}

func TestTransportMarshal_GRPC(t *testing.T) {
	blob, err := json.Marshal(Transport{Kind: TransportGRPC, GRPC: &GRPCOptions{ServiceName: "svc"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(blob), `"service_name":"svc"`) {
		t.Fatalf("blob=%s", blob)
	}
}

func TestTransportMarshal_HTTP(t *testing.T) {
	blob, err := json.Marshal(Transport{Kind: TransportHTTP, HTTP: &HTTPOptions{Path: "/h2", Host: []string{"a", "b"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(blob), `"host":["a","b"]`) {
		t.Fatalf("blob=%s", blob)
	}
}

func TestTransportMarshal_QUIC(t *testing.T) {
	blob, err := json.Marshal(Transport{Kind: TransportQUIC})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(blob) != `{"type":"quic"}` {
		t.Fatalf("blob=%s", blob)
	}
}

func TestTransportMarshal_NilVariant(t *testing.T) {
	blob, err := json.Marshal(Transport{Kind: TransportGRPC})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(blob) != `{"type":"grpc"}` {
		t.Fatalf("blob=%s", blob)
	}
}

func TestTransportMarshal_UnknownKind(t *testing.T) {
	if _, err := json.Marshal(Transport{Kind: "kcp"}); err == nil {
		t.Fatal("unknown kind must refuse to serialize")
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("line1\r\nline2"); got != "line1 line2" {
		t.Fatalf("snippet=%q", got)
	}
	long := strings.Repeat("a", 80)
	if got := Snippet(long); len(got) != 50 {
		t.Fatalf("len=%d, want=50", len(got))
	}
}

func TestValidFingerprint(t *testing.T) {
	for _, fp := range []string{"chrome", "firefox", "random", "randomized", "ios"} {
		if !ValidFingerprint(fp) {
			t.Fatalf("%s should be valid", fp)
		}
	}
	for _, fp := range []string{"", "netscape", "Chrome"} {
		if ValidFingerprint(fp) {
			t.Fatalf("%s should be invalid", fp)
		}
	}
}
