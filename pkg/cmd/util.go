package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Algy/plaidml/pkg/codegen"
	"github.com/Algy/plaidml/pkg/stripe"
)

// GetFlag returns a bool flag's value, or exits the process if the flag was
// never registered.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetString returns a string flag's value, or exits the process if the flag
// was never registered.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetUint returns a uint flag's value, or exits the process if the flag was
// never registered.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// ReadIRFile parses a Stripe IR block from its JSON encoding on disk.
func ReadIRFile(filename string) *stripe.Block {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	var block stripe.Block
	if err := json.Unmarshal(bytes, &block); err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(2)
	}
	return &block
}

// WriteIRFile serialises a Stripe IR block to its JSON encoding on disk.
func WriteIRFile(block *stripe.Block, filename string) {
	bytes, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

// ReadPassConfigFile parses an ordered pass configuration from its JSON
// encoding on disk.
func ReadPassConfigFile(filename string) codegen.Config {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	cfg, err := codegen.ParseConfig(bytes)
	if err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(2)
	}
	return cfg
}
