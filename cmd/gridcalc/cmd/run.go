package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridcalc/gridcalc"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Execute a sheet script file",
	Long: `Execute a line-oriented sheet script. Statements:

  set <addr> <number>            store a number
  formula <addr> =<formula>      store a formula
  clear <addr>                   remove a cell
  get <addr>                     print a cell's value
  source <addr>                  print a cell's display text
  print <addr>:<addr>            print a rectangle, one line per row
  insert-rows <atPos> <count>    structural edits
  insert-cols <atPos> <count>
  delete-rows <from> <to>
  delete-cols <from> <to>
  stat                           print sheet dimensions and segment counts

Lines starting with '#' are comments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		r, c := sheetDims()
		runner := gridcalc.NewRunner(r, c, func(line string) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		})

		scanner := bufio.NewScanner(file)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			runner.Exec(scanner.Text())
			if err := runner.Err(); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
