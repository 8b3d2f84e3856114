package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(&RootOptions{}, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "lifedb:", err)
		os.Exit(1)
	}
}
