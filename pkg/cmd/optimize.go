package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Algy/plaidml/pkg/codegen"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] ir_file",
	Short: "run a configured pass pipeline over a Stripe IR program.",
	Long: `Read a Stripe IR program and an ordered pass configuration table, run the
configured passes over it in sequence, and write the resulting program.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		configPath := GetString(cmd, "passes")
		output := GetString(cmd, "output")
		dumpPasses := GetFlag(cmd, "dump-passes")
		dbgDir := GetString(cmd, "dbg-dir")

		block := ReadIRFile(args[0])
		cfg := ReadPassConfigFile(configPath)

		opts := codegen.OptimizeOptions{DumpPasses: dumpPasses, DbgDir: dbgDir}
		if err := codegen.Optimize(block, cfg, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		WriteIRFile(block, output)
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().StringP("passes", "p", "", "pass configuration table (JSON)")
	optimizeCmd.Flags().StringP("output", "o", "a.out.json", "output IR file")
	optimizeCmd.Flags().Bool("dump-passes", false, "write the IR after every pass to dbg-dir")
	optimizeCmd.Flags().String("dbg-dir", "./dbg", "directory for per-pass IR dumps")
	optimizeCmd.MarkFlagRequired("passes")
}
