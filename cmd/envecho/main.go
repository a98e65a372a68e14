package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"kappa-echo/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		zap.L().Sync()
		os.Exit(1)
	}
}
