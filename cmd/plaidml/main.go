package main

import "github.com/Algy/plaidml/pkg/cmd"

func main() {
	cmd.Execute()
}
