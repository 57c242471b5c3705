package main

import (
	"fmt"
	"os"

	"study-tracker-be/cmd/repair/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
