package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"singforge/internal/assemble"
	"singforge/internal/config"
	"singforge/internal/decode"
	"singforge/internal/descriptor"
	"singforge/internal/logger"
	"singforge/internal/preset"
)

var (
	linksFile     string
	xrayFile      string
	wgFile        string
	dnsPreset     string
	inboundPreset string
	outputPath    string
	prettyOutput  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Decode proxy sources and assemble the final configuration",
	Long:  `Decode vless:// share links, xray-style client configs and WireGuard INI files, then assemble them with the selected presets into a single sing-box configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}
		if dnsPreset != "" {
			cfg.Presets.DNS = dnsPreset
		}
		if inboundPreset != "" {
			cfg.Presets.Inbound = inboundPreset
		}
		if outputPath != "" {
			cfg.Output.Path = outputPath
		}
		if cmd.Flags().Changed("pretty") {
			cfg.Output.Pretty = prettyOutput
		}

		if linksFile == "" && xrayFile == "" && wgFile == "" {
			logger.Log.Fatal("No input given. Provide --links, --xray-config or --wg-config.")
		}

		var (
			outbounds []*descriptor.Outbound
			endpoints []*descriptor.Endpoint
		)

		if linksFile != "" {
			data, err := os.ReadFile(linksFile)
			if err != nil {
				logger.Log.Fatalf("Error reading links file: %v", err)
			}
			res := decode.DecodeBatch(string(data))
			reportDiagnostics("links", res.Diagnostics)
			logger.Log.Infof("🔗 Links: %d attempted, %d decoded, %d failed", res.Attempted, res.Succeeded, res.Failed)
			outbounds = append(outbounds, res.Outbounds...)
		}

		if xrayFile != "" {
			data, err := os.ReadFile(xrayFile)
			if err != nil {
				logger.Log.Fatalf("Error reading client config: %v", err)
			}
			res := decode.DecodeClientConfig(string(data))
			if res.Attempted == 0 && len(res.Diagnostics) > 0 {
				logger.Log.Fatalf("Client config rejected: %s", res.Diagnostics[0].Message)
			}
			reportDiagnostics("client config", res.Diagnostics)
			logger.Log.Infof("📄 Client config: %d attempted, %d decoded, %d failed", res.Attempted, res.Succeeded, res.Failed)
			outbounds = append(outbounds, res.Outbounds...)
		}

		if wgFile != "" {
			data, err := os.ReadFile(wgFile)
			if err != nil {
				logger.Log.Fatalf("Error reading WireGuard config: %v", err)
			}
			ep, diags, err := decode.DecodeWireGuard(string(data))
			reportDiagnostics("wireguard", diags)
			if err != nil {
				logger.Log.Fatalf("WireGuard config rejected: %v", err)
			}
			logger.Log.Infof("🔒 WireGuard: endpoint %q with %d peer(s)", ep.Tag, len(ep.Peers))
			endpoints = append(endpoints, ep)
		}

		for _, o := range outbounds {
			if uuid.Validate(o.UUID) != nil {
				logger.Log.Debugf("Outbound %q: credential is not a canonical UUID", o.Tag)
			}
		}

		dns, ok := preset.LookupDNS(cfg.Presets.DNS)
		if !ok {
			logger.Log.Fatalf("Unknown DNS preset %q. Run 'singforge presets' to list them.", cfg.Presets.DNS)
		}
		inb, ok := preset.LookupInbound(cfg.Presets.Inbound)
		if !ok {
			logger.Log.Fatalf("Unknown inbound preset %q. Run 'singforge presets' to list them.", cfg.Presets.Inbound)
		}

		final, warnings := assemble.Assemble(outbounds, endpoints, dns.Fragment, inb.Inbounds)
		for _, w := range warnings {
			logger.Log.Warnf("%s", w)
		}

		var blob []byte
		if cfg.Output.Pretty {
			blob, err = json.MarshalIndent(final, "", "  ")
		} else {
			blob, err = json.Marshal(final)
		}
		if err != nil {
			logger.Log.Fatalf("Error serializing config: %v", err)
		}
		blob = append(blob, '\n')

		if cfg.Output.Path == "-" {
			if _, err := os.Stdout.Write(blob); err != nil {
				logger.Log.Fatalf("Error writing config: %v", err)
			}
		} else {
			if err := os.WriteFile(cfg.Output.Path, blob, 0644); err != nil {
				logger.Log.Fatalf("Error writing config: %v", err)
			}
			logger.Log.Infof("✅ Wrote %s (%d outbound(s), %d endpoint(s))", cfg.Output.Path, len(outbounds), len(endpoints))
		}
	},
}

func reportDiagnostics(source string, diags []descriptor.Diagnostic) {
	for _, d := range diags {
		logger.Log.Warnf("⚠️  %s entry %d: %s (%s)", source, d.Position, d.Message, d.Input)
	}
}

func init() {
	convertCmd.Flags().StringVar(&linksFile, "links", "", "File with one share link per line")
	convertCmd.Flags().StringVar(&xrayFile, "xray-config", "", "Xray-style client config JSON file")
	convertCmd.Flags().StringVar(&wgFile, "wg-config", "", "WireGuard/AmneziaWG INI file")
	convertCmd.Flags().StringVar(&dnsPreset, "dns-preset", "", "DNS preset id (overrides config)")
	convertCmd.Flags().StringVar(&inboundPreset, "inbound-preset", "", "Inbound preset id (overrides config)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path, '-' for stdout (overrides config)")
	convertCmd.Flags().BoolVar(&prettyOutput, "pretty", true, "Indent the emitted JSON")
	rootCmd.AddCommand(convertCmd)
}
