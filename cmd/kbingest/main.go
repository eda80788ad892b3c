package main

import (
	"fmt"
	"os"

	"github.com/kbvec/kbvec/internal/cli"
)

func main() {
	if err := cli.ExecuteIngest(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
