package main

import (
	"fmt"
	"os"

	"github.com/AnyUserName/fitsview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fitsview:", err)
		os.Exit(1)
	}
}
