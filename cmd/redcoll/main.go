package main

import (
	"os"

	"github.com/unkn0wn-root/redcoll/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
