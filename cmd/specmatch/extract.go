package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <query>",
	Short: "Extract structured requirements from a query",
	Long: `Parse a free-text shopping query into normalized feature requirements,
budget and usage context, and report implausible values.

Examples:
  specmatch extract "27 inch 144hz IPS monitor under 25k for gaming"
  specmatch extract --category laptop "16gb ram i7 laptop for coding"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("category", "", "category hint (detected from the query when empty)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	req, warnings := svc.ExtractRequirements(strings.Join(args, " "), category)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"requirement": req,
		"warnings":    warnings,
	})
}
