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

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare <product name>",
	Short: "Compare a product's deals across the known storefronts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline()
		if err != nil {
			return err
		}

		report, err := env.Comparator.Compare(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return eris.Wrap(err, "compare")
		}

		if compareJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Comparison for %q\n\n", report.Query)
		if len(report.Deals) == 0 {
			fmt.Println("No listings found on any known storefront.")
			return nil
		}

		for _, deal := range report.Deals {
			rec := deal.Record
			fmt.Printf("%-15s %s\n", deal.Platform, rec.Title)
			if rec.Has(model.FieldPrice) {
				fmt.Printf("%-15s %.2f %s\n", "", rec.Price, rec.Currency)
			}
			if rec.Has(model.FieldDelivery) {
				fmt.Printf("%-15s %s\n", "", rec.DeliveryInfo)
			}
			fmt.Printf("%-15s %s\n\n", "", rec.URL)
		}

		if report.BestPrice != nil {
			fmt.Printf("Best price:       %s (%.2f %s)\n",
				report.BestPrice.Platform, report.BestPrice.Record.Price, report.BestPrice.Record.Currency)
		}
		if report.FastestDelivery != nil {
			fmt.Printf("Fastest delivery: %s (%s)\n",
				report.FastestDelivery.Platform, report.FastestDelivery.Record.DeliveryInfo)
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "emit the raw report as JSON")
	rootCmd.AddCommand(compareCmd)
}
