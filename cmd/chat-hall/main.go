package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"chat-hall/logs"
	"chat-hall/runtime"
	"chat-hall/runtime/workers"
	"chat-hall/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that defers execute before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Engine
	orchestrator := runtime.NewOrchestrator(log, config.InboundBufferSize)

	// 3. Listener. Binding happens here so a taken port is fatal at
	// startup instead of being retried under supervision.
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	// 4. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		transport.NewServer(log, orchestrator, listener, config.OutboundBufferSize),
		workers.NewBanSweeper(orchestrator.Bans(), config.BanSweepInterval, log),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Blocks until the context is canceled and every worker returned.
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
