package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cartscope/cartscope-cli/internal/model"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single product link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline()
		if err != nil {
			return err
		}

		result, err := env.Pipeline.AnalyzeProductLink(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(result)
		return nil
	},
}

func printResult(res *model.AnalysisResult) {
	if res.Record != nil {
		r := res.Record
		fmt.Printf("Product:  %s\n", r.Title)
		fmt.Printf("Platform: %s\n", r.Platform)
		if r.Has(model.FieldPrice) {
			fmt.Printf("Price:    %.2f %s", r.Price, r.Currency)
			if r.Has(model.FieldDiscount) {
				fmt.Printf(" (%.0f%% off)", r.DiscountPct)
			}
			fmt.Println()
		}
		if r.Has(model.FieldRating) {
			fmt.Printf("Rating:   %.1f/5", r.Rating)
			if r.Has(model.FieldReviewCount) {
				fmt.Printf(" (%d reviews)", r.ReviewCount)
			}
			fmt.Println()
		}
		if r.Has(model.FieldAvailability) {
			fmt.Printf("Stock:    %s\n", r.Availability)
		}
		if r.Has(model.FieldDelivery) {
			fmt.Printf("Delivery: %s\n", r.DeliveryInfo)
		}
	}

	fmt.Printf("\nStatus: %s\n", res.Status)
	for _, out := range res.Outcomes() {
		fmt.Printf("  %-7s %s\n", out.Analyzer+":", out.Summary)
		for _, c := range out.Caveats {
			fmt.Printf("          caveat: %s\n", c)
		}
	}

	if res.ValueScore != nil {
		fmt.Printf("\nValue score:    %.2f\n", *res.ValueScore)
	}
	fmt.Printf("Confidence:     %.2f\n", res.Confidence)
	if res.Recommendation != "" {
		fmt.Printf("Recommendation: %s\n", strings.ToUpper(string(res.Recommendation)))
	}

	if len(res.Alternatives) > 0 {
		fmt.Println("\nAlternatives:")
		for _, alt := range res.Alternatives {
			fmt.Printf("  - %s (%s)\n", alt.Title, alt.URL)
		}
	}
	if len(res.Suggestions) > 0 {
		fmt.Println("\nTry searching manually:")
		for _, s := range res.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(res.Errors) > 0 {
		fmt.Println("\nWarnings:")
		for _, e := range res.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the raw result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
