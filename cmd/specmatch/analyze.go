package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/specmatch/backend/internal/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract the feature set of a product listing",
	Long: `Read one product listing and print its normalized features with
per-feature confidence and source. The listing comes from a JSON file or
is fetched from the catalog API by identifier.

Examples:
  specmatch analyze --file product.json
  specmatch analyze --file product.json --category laptop
  specmatch analyze --id B0CHX3QBCH`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("file", "", "path to a product JSON file")
	f.String("id", "", "catalog product identifier to fetch")
	f.String("category", "", "category hint (detected from the title when empty)")
	analyzeCmd.MarkFlagsOneRequired("file", "id")
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "id")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	id, _ := cmd.Flags().GetString("id")
	category, _ := cmd.Flags().GetString("category")

	product, err := loadProduct(cmd.Context(), path, id)
	if err != nil {
		return eris.Wrap(err, "analyze")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), svc.AnalyzeProduct(product, category))
}

// loadProduct reads a listing from path, or fetches it from the catalog by id
func loadProduct(ctx context.Context, path, id string) (domain.ProductRecord, error) {
	var product domain.ProductRecord
	if path != "" {
		err := readJSONFile(path, &product)
		return product, err
	}

	client := newCatalogClient(cfg)
	if client == nil {
		return product, domain.ErrCatalogNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fetched, err := client.GetProduct(ctx, id)
	if err != nil {
		return product, err
	}
	return *fetched, nil
}
