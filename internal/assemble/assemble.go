// Package assemble merges decoded outbound and endpoint descriptors with
// preset fragments and fixed routing policy into the final runtime
// configuration object.
package assemble

import (
	"encoding/json"
	"fmt"

	"singforge/internal/descriptor"
)

// Well-known tags of the synthesized policy outbounds.
const (
	SelectorTag = "proxy"
	URLTestTag  = "auto"
	DirectTag   = "direct"
)

// Fixed runtime policy. These are constants of the emitted configuration,
// not knobs.
const (
	logLevel             = "info"
	healthCheckURL       = "https://www.gstatic.com/generate_204"
	healthCheckInterval  = "3m"
	healthCheckTolerance = 50
	cacheFilePath        = "cache.db"
	clashAPIController   = "127.0.0.1:9090"
)

// Config is the final configuration object. Field order fixes the key order
// of the serialized document.
type Config struct {
	Log          LogOptions        `json:"log"`
	DNS          json.RawMessage   `json:"dns"`
	Inbounds     []json.RawMessage `json:"inbounds"`
	Outbounds    []any             `json:"outbounds"`
	Endpoints    []any             `json:"endpoints,omitempty"`
	Route        RouteOptions      `json:"route"`
	Experimental Experimental      `json:"experimental"`
}

type LogOptions struct {
	Level     string `json:"level"`
	Timestamp bool   `json:"timestamp"`
}

type RouteOptions struct {
	Rules               []RouteRule `json:"rules"`
	Final               string      `json:"final"`
	AutoDetectInterface bool        `json:"auto_detect_interface"`
}

type RouteRule struct {
	IPIsPrivate bool   `json:"ip_is_private,omitempty"`
	Outbound    string `json:"outbound"`
}

type Experimental struct {
	CacheFile CacheFile `json:"cache_file"`
	ClashAPI  ClashAPI  `json:"clash_api"`
}

type CacheFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type ClashAPI struct {
	ExternalController string `json:"external_controller"`
}

type selectorOutbound struct {
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Outbounds []string `json:"outbounds"`
	Default   string   `json:"default"`
}

type urltestOutbound struct {
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Outbounds []string `json:"outbounds"`
	URL       string   `json:"url"`
	Interval  string   `json:"interval"`
	Tolerance int      `json:"tolerance"`
}

type directOutbound struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

// Assemble builds the final configuration from decoded descriptors and the
// externally selected preset fragments. Duplicate tags across descriptors are
// permitted but reported back as warnings; the selector and urltest lists
// carry each tag once.
func Assemble(outbounds []*descriptor.Outbound, endpoints []*descriptor.Endpoint, dns json.RawMessage, inbounds []json.RawMessage) (*Config, []string) {
	var (
		tags     []string
		seen     = make(map[string]bool)
		warnings []string
	)
	collect := func(tag string) {
		if seen[tag] {
			warnings = append(warnings, fmt.Sprintf("duplicate tag %q; traffic selection between the duplicates is undefined", tag))
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	for _, o := range outbounds {
		collect(o.Tag)
	}
	for _, e := range endpoints {
		collect(e.Tag)
	}

	var obs []any
	if len(tags) > 0 {
		obs = append(obs, selectorOutbound{
			Type:      "selector",
			Tag:       SelectorTag,
			Outbounds: append([]string{URLTestTag}, tags...),
			Default:   URLTestTag,
		})
		obs = append(obs, urltestOutbound{
			Type:      "urltest",
			Tag:       URLTestTag,
			Outbounds: tags,
			URL:       healthCheckURL,
			Interval:  healthCheckInterval,
			Tolerance: healthCheckTolerance,
		})
	} else {
		obs = append(obs, selectorOutbound{
			Type:      "selector",
			Tag:       SelectorTag,
			Outbounds: []string{DirectTag},
			Default:   DirectTag,
		})
	}
	for _, o := range outbounds {
		obs = append(obs, o)
	}
	obs = append(obs, directOutbound{Type: "direct", Tag: DirectTag})

	var eps []any
	for _, e := range endpoints {
		eps = append(eps, e)
	}

	cfg := &Config{
		Log: LogOptions{Level: logLevel, Timestamp: true},
		DNS: dns,
		Inbounds: inbounds,
		Outbounds: obs,
		Endpoints: eps,
		Route: RouteOptions{
			Rules: []RouteRule{
				{IPIsPrivate: true, Outbound: DirectTag},
			},
			Final:               SelectorTag,
			AutoDetectInterface: true,
		},
		Experimental: Experimental{
			CacheFile: CacheFile{Enabled: true, Path: cacheFilePath},
			ClashAPI:  ClashAPI{ExternalController: clashAPIController},
		},
	}
	return cfg, warnings
}
