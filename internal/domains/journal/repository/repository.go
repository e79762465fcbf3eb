package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=./mocks/repository_mock.go -package=mocks

import (
	"context"
	"traveltrust/infras/otel"
	"traveltrust/infras/postgres"
	"traveltrust/internal/domains/journal/model"
	gDto "traveltrust/shared/dto"
	gRepo "traveltrust/shared/repository"
)

type Event interface {
	InsertBulk(ctx context.Context, models []model.Event) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Event, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Event]
}

func New(db *postgres.Connection, otel otel.Otel) Event {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Event](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
