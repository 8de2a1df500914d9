package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/expert"
	srv "github.com/polymath-ai/polymath/internal/server"
)

func main() {
	var root = &cobra.Command{Use: "polymath"}

	var cfgPath string
	var listenAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.General.Listen = listenAddr
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides config)")
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/polymath.yaml)")

	var agents = &cobra.Command{
		Use:   "agents",
		Short: "List available expert agent domains",
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range expert.All() {
				fmt.Printf("%-15s %s\n", d.Key, d.Title)
			}
		},
	}

	root.AddCommand(serve, agents)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
