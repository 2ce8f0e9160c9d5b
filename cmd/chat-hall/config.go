package main

import "time"

type Config struct {
	Host               string        `env:"HOST,default=0.0.0.0"`
	Port               int           `env:"PORT,default=4444"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	InboundBufferSize  int           `env:"INBOUND_BUFFER_SIZE,default=64"`
	OutboundBufferSize int           `env:"OUTBOUND_BUFFER_SIZE,default=256"`
	BanSweepInterval   time.Duration `env:"BAN_SWEEP_INTERVAL,default=1m"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}
