package main

import (
	"fmt"
	"os"

	"github.com/abdidvp/automigrate/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "automigrate:", err)
		os.Exit(cli.ExitCode(err))
	}
}
