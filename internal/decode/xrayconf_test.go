package decode

import (
	"strings"
	"testing"
)

func TestDecodeClientConfig_MalformedJSON(t *testing.T) {
	res := DecodeClientConfig("{not json")
	if res.Attempted != 0 || len(res.Outbounds) != 0 {
		t.Fatalf("malformed doc should decode nothing, got %+v", res)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Position != 0 {
		t.Fatalf("diagnostics=%+v, want single document-level entry", res.Diagnostics)
	}
	if !strings.Contains(res.Diagnostics[0].Message, "invalid JSON") {
		t.Fatalf("message=%q, want invalid-JSON", res.Diagnostics[0].Message)
	}
}

func TestDecodeClientConfig_MissingOutbounds(t *testing.T) {
	res := DecodeClientConfig(`{"inbounds": []}`)
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0].Message, "outbounds") {
		t.Fatalf("diagnostics=%+v, want missing-outbounds", res.Diagnostics)
	}
}

func TestDecodeClientConfig_FullVlessEntry(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {
	      "tag": "my-proxy",
	      "protocol": "vless",
	      "settings": {
	        "vnext": [
	          {
	            "address": "example.com",
	            "port": 443,
	            "users": [{"id": "` + testUUID + `", "flow": "xtls-rprx-vision"}]
	          }
	        ]
	      },
	      "streamSettings": {
	        "network": "tcp",
	        "security": "reality",
	        "realitySettings": {
	          "serverName": "cdn.example.com",
	          "fingerprint": "chrome",
	          "publicKey": "PBKVALUE",
	          "shortId": "abc"
	        }
	      }
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Succeeded != 1 || len(res.Outbounds) != 1 {
		t.Fatalf("result=%+v, want one success", res)
	}
	out := res.Outbounds[0]
	if out.Tag != "my-proxy" || out.Server != "example.com" || out.ServerPort != 443 {
		t.Fatalf("outbound=%+v", out)
	}
	if out.Flow != "xtls-rprx-vision" {
		t.Fatalf("flow=%q", out.Flow)
	}
	if out.TLS == nil || out.TLS.Reality == nil || out.TLS.Reality.PublicKey != "PBKVALUE" {
		t.Fatalf("tls=%+v, want reality pbk", out.TLS)
	}
	if out.TLS.ServerName != "cdn.example.com" {
		t.Fatalf("sni=%q", out.TLS.ServerName)
	}
	if out.TLS.UTLS == nil || out.TLS.UTLS.Fingerprint != "chrome" {
		t.Fatalf("utls=%+v", out.TLS.UTLS)
	}
}

func TestDecodeClientConfig_NonVlessSkipped(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {"tag": "direct", "protocol": "freedom"},
	    {
	      "protocol": "vless",
	      "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": [{"id": "` + testUUID + `"}]}]}
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Attempted != 2 || res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("counts=%d/%d/%d, want 2/1/1", res.Attempted, res.Succeeded, res.Failed)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0].Message, "only vless") {
		t.Fatalf("diagnostics=%+v", res.Diagnostics)
	}
	// Missing tag synthesizes one from the success count.
	if res.Outbounds[0].Tag != "proxy-p1" {
		t.Fatalf("tag=%q, want proxy-p1", res.Outbounds[0].Tag)
	}
}

func TestDecodeClientConfig_MissingCredential(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {"protocol": "vless", "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": []}]}}
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Failed != 1 || len(res.Diagnostics) != 1 {
		t.Fatalf("result=%+v, want one failure", res)
	}
	if !strings.Contains(res.Diagnostics[0].Message, "credential") {
		t.Fatalf("message=%q", res.Diagnostics[0].Message)
	}
}

func TestDecodeClientConfig_WebSocketHostHeader(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {
	      "protocol": "vless",
	      "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": [{"id": "` + testUUID + `"}]}]},
	      "streamSettings": {
	        "network": "ws",
	        "security": "tls",
	        "tlsSettings": {"serverName": "cdn.example.com", "alpn": "h2,http/1.1"},
	        "wsSettings": {"path": "/ws?ed=2048", "host": "cdn.example.com"}
	      }
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Succeeded != 1 {
		t.Fatalf("result=%+v, want one success", res)
	}
	out := res.Outbounds[0]
	ws := out.Transport.WS
	if ws.Path != "/ws" || ws.MaxEarlyData != 2048 {
		t.Fatalf("ws=%+v, want path=/ws ed=2048", ws)
	}
	if ws.Headers["Host"] != "cdn.example.com" {
		t.Fatalf("headers=%v", ws.Headers)
	}
	if len(out.TLS.ALPN) != 2 || out.TLS.ALPN[0] != "h2" {
		t.Fatalf("alpn=%v, want comma-form split", out.TLS.ALPN)
	}
}

func TestDecodeClientConfig_HTTPHostList(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {
	      "protocol": "vless",
	      "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": [{"id": "` + testUUID + `"}]}]},
	      "streamSettings": {
	        "network": "h2",
	        "httpSettings": {"path": "/h2", "host": ["a.example.com", "b.example.com"]}
	      }
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Succeeded != 1 {
		t.Fatalf("result=%+v, want one success", res)
	}
	tr := res.Outbounds[0].Transport
	if tr.Kind != "http" || tr.HTTP.Path != "/h2" || len(tr.HTTP.Host) != 2 {
		t.Fatalf("transport=%+v", tr)
	}
}

func TestDecodeClientConfig_RealityMissingPublicKey(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {
	      "protocol": "vless",
	      "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": [{"id": "` + testUUID + `"}]}]},
	      "streamSettings": {"security": "reality", "realitySettings": {"shortId": "abc"}}
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Failed != 1 || !strings.Contains(res.Diagnostics[0].Message, "public key") {
		t.Fatalf("result=%+v, want reality rejection", res)
	}
}

func TestDecodeClientConfig_TLSServerNameFallback(t *testing.T) {
	doc := `{
	  "outbounds": [
	    {
	      "protocol": "vless",
	      "settings": {"vnext": [{"address": "a.example.com", "port": 443, "users": [{"id": "` + testUUID + `"}]}]},
	      "streamSettings": {"security": "tls", "tlsSettings": {"allowInsecure": true}}
	    }
	  ]
	}`
	res := DecodeClientConfig(doc)
	if res.Succeeded != 1 {
		t.Fatalf("result=%+v, want one success", res)
	}
	tls := res.Outbounds[0].TLS
	if tls.ServerName != "a.example.com" || !tls.Insecure {
		t.Fatalf("tls=%+v, want host fallback and insecure", tls)
	}
}
