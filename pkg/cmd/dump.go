package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] ir_file",
	Short: "pretty-print a Stripe IR program to stdout.",
	Long:  "Read a Stripe IR program and print its indented block tree, wrapping long lines to the terminal width.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		block := ReadIRFile(args[0])
		fmt.Print(wrapToTerminalWidth(block.String()))
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

// terminalWidth reports the width to wrap dump output to: the controlling
// terminal's column count when stdout is a TTY, 80 columns otherwise.
// Mirrors the teacher's own terminal-size fallback for non-interactive
// output (pkg/util/termio/terminal.go).
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrapToTerminalWidth hard-wraps every over-long line of a block dump at the
// terminal width, indenting continuations under the original line's leading
// whitespace so wrapped tag/ref lists stay visually nested.
func wrapToTerminalWidth(text string) string {
	width := terminalWidth()
	lines := strings.Split(text, "\n")
	var out strings.Builder
	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(wrapLine(line, width))
	}
	return out.String()
}

func wrapLine(line string, width int) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))] + "  "
	var out strings.Builder
	for len(line) > width {
		cut := strings.LastIndex(line[:width], " ")
		if cut <= len(indent) {
			cut = width
		}
		out.WriteString(line[:cut])
		out.WriteByte('\n')
		line = indent + strings.TrimLeft(line[cut:], " ")
	}
	out.WriteString(line)
	return out.String()
}
