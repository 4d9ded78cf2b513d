// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// fundraise runs the fundraising platform node: the quorum wallets, token,
// whitelist, and sale, served over JSON-RPC.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "fundraise",
		Short:        "Runs the fundraising platform",
		SilenceUsage: true,
	}
	root.AddCommand(runCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
