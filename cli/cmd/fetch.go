package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/malusev998/currency-quotes"
	"github.com/malusev998/currency-quotes/fetchers"
)

func printTable(w io.Writer, table currency.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(currency.Columns, "\t"))
	for _, q := range table.Quotes {
		fmt.Fprintln(tw, strings.Join([]string{
			q.Date,
			q.Code,
			string(q.Type),
			q.Name,
			strconv.FormatFloat(q.BuyRate, 'f', -1, 64),
			strconv.FormatFloat(q.SellRate, 'f', -1, 64),
			strconv.FormatFloat(q.BuyParity, 'f', -1, 64),
			strconv.FormatFloat(q.SellParity, 'f', -1, 64),
			strconv.FormatFloat(q.USDValue, 'f', -1, 64),
			strconv.FormatFloat(q.BRLValue, 'f', -1, 64),
		}, "\t"))
	}

	return tw.Flush()
}

func fetch(config *Config) *cobra.Command {
	var date string

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and print the quote table of one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := config.app
			loc := app.History.Location()

			day := time.Now().In(loc)
			if date != "" {
				parsed, err := time.ParseInLocation(currency.KeyLayout, date, loc)
				if err != nil {
					return eris.Wrapf(err, "invalid --date %q, expected YYYYMMDD", date)
				}
				day = parsed
			}

			raw, err := config.Builder.Fetcher(app).Fetch(cmd.Context(), day)
			if err != nil {
				return err
			}

			table, err := fetchers.Normalize(raw, day)
			if err != nil {
				return err
			}

			return printTable(cmd.OutOrStdout(), table)
		},
	}

	fetchCmd.Flags().StringVar(&date, "date", "", "Table date as YYYYMMDD (default today)")

	return fetchCmd
}
