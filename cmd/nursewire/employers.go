package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var employersCmd = &cobra.Command{
	Use:   "employers",
	Short: "List all configured employers",
	Long:  "Reads the config and prints a table of all configured employer sources.",
	RunE:  runEmployers,
}

func init() {
	rootCmd.AddCommand(employersCmd)
}

func runEmployers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-22s %-32s %s\n", "Slug", "Name", "Status")
	fmt.Println(strings.Repeat("─", 64))

	enabled, disabled := 0, 0
	for _, e := range cfg.Employers {
		status := "enabled"
		if !e.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-22s %-32s %s\n", e.Slug, e.Name, status)
	}

	fmt.Printf("\nTotal: %d employers (%d enabled, %d disabled)\n", len(cfg.Employers), enabled, disabled)
	return nil
}
