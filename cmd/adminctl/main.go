package main

import (
	"fmt"
	"os"

	"github.com/MrEthical07/goSession/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
