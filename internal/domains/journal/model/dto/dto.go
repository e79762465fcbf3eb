package dto

import (
	"time"

	"traveltrust/internal/domains/journal/model"
	"traveltrust/shared"
	"traveltrust/shared/constant"
	gDto "traveltrust/shared/dto"
	"traveltrust/shared/timezone"
)

type EventResponse struct {
	ID         string            `json:"id"`
	TxID       string            `json:"tx_id"`
	Sequence   int               `json:"sequence"`
	Type       string            `json:"type"`
	Component  string            `json:"component"`
	Sender     string            `json:"sender"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  string            `json:"created_at"`
}

func (r *EventResponse) FromModel(m model.Event) {
	r.ID = m.ID
	r.TxID = m.TxID
	r.Sequence = m.Sequence
	r.Type = m.Type
	r.Component = m.Component
	r.Sender = m.Sender
	r.Attributes = m.Attributes
	r.CreatedAt = timezone.Format(m.CreatedAt, constant.DateFormat)
}

type GetEventsResponse struct {
	Events    []EventResponse `json:"events"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetEventsResponse) FromModels(models []model.Event, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Events = make([]EventResponse, len(models))
	for i, m := range models {
		r.Events[i].FromModel(m)
	}
}

// Message is the Kafka payload published for every journal row.
type Message struct {
	TxID       string            `json:"tx_id"`
	Sequence   int               `json:"sequence"`
	Type       string            `json:"type"`
	Sender     string            `json:"sender"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  string            `json:"timestamp"`
}

func (m *Message) FromModel(ev model.Event) {
	m.TxID = ev.TxID
	m.Sequence = ev.Sequence
	m.Type = ev.Type
	m.Sender = ev.Sender
	m.Attributes = ev.Attributes
	m.Timestamp = timezone.Format(ev.CreatedAt, constant.DateFormat)
}

// EventFilter narrows a journal query; empty fields match everything.
type EventFilter struct {
	Type      string
	TxID      string
	Component string
	Sender    string
	From      time.Time
	To        time.Time
}

func (f EventFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	for _, pair := range [][2]string{
		{model.FieldType, f.Type},
		{model.FieldTxID, f.TxID},
		{model.FieldComponent, f.Component},
		{model.FieldSender, f.Sender},
	} {
		if pair[1] == "" {
			continue
		}

		group.Filters = append(group.Filters, gDto.Filter{
			Field:    pair[0],
			Value:    pair[1],
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if !f.From.IsZero() {
		group.Filters = append(group.Filters, gDto.Filter{
			ArgName:  "created_from",
			Field:    model.FieldCreatedAt,
			Value:    f.From,
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    model.TableName,
		})
	}

	if !f.To.IsZero() {
		group.Filters = append(group.Filters, gDto.Filter{
			ArgName:  "created_to",
			Field:    model.FieldCreatedAt,
			Value:    f.To,
			Operator: gDto.FilterOperatorLessEq,
			Table:    model.TableName,
		})
	}

	return group
}
