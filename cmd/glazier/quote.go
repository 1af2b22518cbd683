package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/smallbiznis/glazier/internal/config"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/smallbiznis/glazier/internal/pricing/quotefile"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <file.json>",
	Short: "Price an order file offline",
	Long: `Price an order file that carries its own catalog and print the line
totals, the labor tax deduction and the amount payable. Use "-" to read the
file from stdin.`,
	Example: `  glazier quote order.json
  cat order.json | glazier quote - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Bool("json", false, "Print the unrounded quote as JSON")
	quoteCmd.Flags().Int32("precision", pricing.DefaultPrecision, "Decimal places shown for amounts")
}

func runQuote(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	precision, _ := cmd.Flags().GetInt32("precision")

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	file, err := quotefile.Parse(in)
	if err != nil {
		return err
	}
	quote, err := file.Quote()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(quote)
	}

	defaults := config.DefaultPricingConfig()
	money := pricing.Money{Currency: defaults.Currency, Precision: precision}
	if file.Currency != "" {
		money.Currency = file.Currency
	}
	return printQuote(out, file, quote, money, defaults.DeductionLabel)
}

func printQuote(out io.Writer, file quotefile.File, quote pricing.Quote, money pricing.Money, label string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tItem\tQty\tExcl. VAT\tIncl. VAT\t")
	for i, line := range quote.Lines {
		name := file.ItemName(file.Lines[i].CatalogItemID)
		if line.Skipped {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", i+1, name, "-", "skipped", "-")
			continue
		}
		qty := strconv.Itoa(file.Lines[i].Count) + " x " + line.MeasuredQuantity.String()
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", i+1, name, qty, money.Format(line.TotalExclTax), money.Format(line.TotalInclTax))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	t := quote.Totals
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total excl. VAT:  %s\n", money.Format(t.TotalExclTax))
	fmt.Fprintf(out, "Total incl. VAT:  %s\n", money.Format(t.TotalInclTax))
	if file.TaxDeduction.Enabled {
		fmt.Fprintf(out, "Labor incl. VAT:  %s\n", money.Format(t.LaborTotalInclTax))
		fmt.Fprintf(out, "%s deduction:    -%s\n", label, money.Format(t.DeductionAmount))
		if quote.DeductionWithoutLabor(file.Deduction()) {
			fmt.Fprintln(out, "warning: tax deduction enabled but the order has no labor lines")
		}
	}
	fmt.Fprintf(out, "To pay:           %s\n", money.Format(t.PayableAmount))
	return nil
}
