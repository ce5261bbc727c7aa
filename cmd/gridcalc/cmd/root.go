package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rows    int
	cols    int
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gridcalc",
	Short: "A sparse spreadsheet evaluation engine",
	Long: `gridcalc runs sheet scripts and ad-hoc formulas against a sparse
spreadsheet engine with stable row/column identifiers, anchor-based
formulas, and incremental recalculation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the command tree
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default gridcalc.yaml in the working directory)")
	rootCmd.PersistentFlags().IntVar(&rows, "rows", 0, "initial row count (overrides config)")
	rootCmd.PersistentFlags().IntVar(&cols, "cols", 0, "initial column count (overrides config)")
}

// initConfig loads defaults and the optional config file
func initConfig() error {
	viper.SetDefault("rows", 1000)
	viper.SetDefault("cols", 100)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gridcalc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("GRIDCALC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// a named config file that fails to load is fatal; a missing
			// default one is not
			if cfgFile != "" {
				return err
			}
		}
	}
	return nil
}

// sheetDims resolves the initial sheet dimensions from flags and config
func sheetDims() (int, int) {
	r := viper.GetInt("rows")
	c := viper.GetInt("cols")
	if rows > 0 {
		r = rows
	}
	if cols > 0 {
		c = cols
	}
	return r, c
}
