package main

import (
	"fmt"
	"os"

	"TickerDesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tickerdesk:", err)
		os.Exit(1)
	}
}
