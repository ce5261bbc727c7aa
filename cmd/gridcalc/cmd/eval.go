package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridcalc/gridcalc"
)

var evalSets []string

var evalCmd = &cobra.Command{
	Use:   "eval <formula>",
	Short: "Evaluate a formula against a scratch sheet",
	Long: `Evaluate one formula against a scratch sheet. Cells can be
pre-populated with --set:

  gridcalc eval --set A1=2 --set A2=3 "=SUM(A1:A2)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, c := sheetDims()
		sheet := gridcalc.New(r, c)

		for _, pair := range evalSets {
			addr, num, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("bad --set %q, want ADDR=NUMBER", pair)
			}
			p, err := gridcalc.ParseA1(addr)
			if err != nil {
				return fmt.Errorf("bad --set %q: %w", pair, err)
			}
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return fmt.Errorf("bad --set %q: %w", pair, err)
			}
			sheet.SetValue(p, v)
		}

		// the formula is staged in the sheet's bottom-left cell
		target := gridcalc.Pos{Row: sheet.Rows(), Col: 1}
		sheet.SetFormula(target, args[0])
		result := sheet.GetValue(target)
		fmt.Fprintln(cmd.OutOrStdout(), gridcalc.FormatScalar(result))
		return nil
	},
}

func init() {
	evalCmd.Flags().StringArrayVar(&evalSets, "set", nil, "pre-populate a cell, ADDR=NUMBER (repeatable)")
	rootCmd.AddCommand(evalCmd)
}
