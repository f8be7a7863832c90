package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
)

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Rank products against a query and select candidates",
	Long: `Run the full pipeline: extract requirements, analyze and score every
product, rank the batch and select the candidates to present.

Products come from --file (a JSON array of listings) or, when omitted,
from the configured catalog API.

Examples:
  specmatch rank "27 inch 144hz monitor under 25000" --file products.json
  specmatch rank "gaming laptop 16gb ram" --category laptop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("file", "", "path to a JSON array of products (catalog search when empty)")
	f.String("category", "", "category hint (detected from the query when empty)")
	f.Bool("selection-only", false, "print only the selection result")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	category, _ := cmd.Flags().GetString("category")
	selectionOnly, _ := cmd.Flags().GetBool("selection-only")

	request := domain.RecommendRequest{
		Query:    strings.Join(args, " "),
		Category: category,
	}
	if path != "" {
		if err := readJSONFile(path, &request.Products); err != nil {
			return eris.Wrap(err, "rank")
		}
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := svc.Recommend(ctx, request)
	if err != nil {
		return eris.Wrap(err, "rank")
	}

	zap.L().Info("rank complete",
		zap.Int("products", len(rec.Ranked)),
		zap.String("mode", string(rec.Selection.Mode)),
		zap.Duration("elapsed", rec.ProcessingTime),
	)

	if selectionOnly {
		return printJSON(cmd.OutOrStdout(), rec.Selection)
	}
	return printJSON(cmd.OutOrStdout(), rec)
}
