package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"singforge/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available DNS and inbound presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("DNS presets:")
		for _, p := range preset.DNSList() {
			fmt.Printf("  %-12s %s: %s\n", p.ID, p.Label, p.Description)
		}
		fmt.Println()
		fmt.Println("Inbound presets:")
		for _, p := range preset.InboundList() {
			fmt.Printf("  %-12s %s: %s\n", p.ID, p.Label, p.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
