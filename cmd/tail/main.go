package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"traveltrust/config"
	"traveltrust/infras/kafka"
	"traveltrust/internal/domains/journal/consumer"
	"traveltrust/internal/domains/journal/model/dto"
	"traveltrust/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// tail prints published journal events to stdout, one JSON object per line.
func main() {
	typePrefix := flag.String("type", "", "only print events whose type starts with this prefix, e.g. escrow.")
	flag.Parse()

	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg)

	// stdout carries the events
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if !cfg.Kafka.Enable {
		log.Fatal().Msg("Kafka is disabled, set KAFKA_ENABLE=true to tail events")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	out := json.NewEncoder(os.Stdout)

	consumer.New(cfg, client).Run(ctx, *typePrefix, func(msg dto.Message) {
		if err := out.Encode(msg); err != nil {
			log.Error().Err(err).Str("txId", msg.TxID).Msg("Failed to write event")
		}
	})
}
