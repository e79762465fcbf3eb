package service

import (
	"context"
	"fmt"
	"net/http"
	"traveltrust/config"
	"traveltrust/infras/kafka"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/journal/model"
	"traveltrust/internal/domains/journal/model/dto"
	"traveltrust/internal/domains/journal/repository"
	"traveltrust/shared"
	"traveltrust/shared/cache"
	"traveltrust/shared/constant"
	gDto "traveltrust/shared/dto"
	"traveltrust/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllEvents = "event:gets"
	cacheCountEvents  = "event:count"
)

// Journal records every committed operation and serves it back for audit.
type Journal interface {
	chain.Emitter
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetEventsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
}

type serviceImpl struct {
	repo  repository.Event
	kafka kafka.Client
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Event, kafka kafka.Client, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Journal {
	return &serviceImpl{
		repo:  repo,
		kafka: kafka,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Emit runs after the operation has committed, so failures here are logged
// and never surface to the caller. ctx carries the delivery deadline.
func (s *serviceImpl) Emit(ctx context.Context, receipt *chain.Receipt) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Emit")
	defer scope.End()

	events := model.FromReceipt(receipt)
	if len(events) == 0 {
		return
	}

	scope.SetAttribute("tx.id", receipt.TxID)

	if err := s.repo.InsertBulk(ctx, events); err != nil {
		log.Error().Err(err).Str("txId", receipt.TxID).Msg("failed to persist journal events")
		scope.TraceError(err)
	}

	if s.cfg.Kafka.Enable {
		messages := make([]kafka.Message, len(events))

		for i, ev := range events {
			var msg dto.Message
			msg.FromModel(ev)

			messages[i] = kafka.Message{
				Key:     receipt.TxID,
				Value:   msg,
				Headers: map[string]string{"type": ev.Type},
			}
		}

		if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topic, messages...); err != nil {
			log.Error().Err(err).Str("txId", receipt.TxID).Msg("failed to publish journal events")
			scope.TraceError(err)
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllEvents)
	shared.InvalidateCaches(ctx, s.cache, cacheCountEvents)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetEventsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllEvents, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for events")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		if failure.GetCode(err) == http.StatusBadRequest {
			return res, err //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to get events")

		return res, fmt.Errorf("failed to get events: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save events to cache")
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountEvents, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count events")

		return res, fmt.Errorf("failed to count events: %w", err)
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save event count to cache")
	}

	return res, nil
}
