// Command promdemo is a runnable demonstration of the prom/promhttp
// packages: it registers a handful of example metrics, starts an HTTP
// server exposing them, and exercises the bridge the way the original
// library's own example program does (see foo.c/main.c in libprom).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		listenAddr string
		labelsFile string
		verifyOnly bool
	)

	cmd := &cobra.Command{
		Use:   "promdemo",
		Short: "serve a demonstration registry over /metrics",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(listenAddr, labelsFile, verifyOnly)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&listenAddr, "listen", "p", ":8000", "address to listen on")
	flags.StringVar(&labelsFile, "labels-file", "", "optional YAML file of static labels to attach to the promdemo_build_info gauge")
	flags.BoolVar(&verifyOnly, "verify", false, "render one scrape, round-trip it through prometheus/common/expfmt, and exit")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the module path and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("github.com/remerge/go-prom")
		},
	})

	return cmd
}
