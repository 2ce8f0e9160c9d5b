package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chat-hall/client"
)

func main() {
	var (
		host string
		port int
	)

	rootCmd := &cobra.Command{
		Use:   "chat-client",
		Short: "Interactive terminal client for a chat-hall server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Run(cmd.Context(), host, port)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&host, "host", "localhost", "server host address")
	rootCmd.Flags().IntVarP(&port, "port", "p", 4444, "server port")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
