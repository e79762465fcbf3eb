package dto_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"traveltrust/shared/constant"
	"traveltrust/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestQueryParamsFromRequest(t *testing.T) {
	defaults := dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit}

	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "?page=2&limit=20&sort_by=type&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "type", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults when empty",
			defaultRequest: true,
			expected:       defaults,
		},
		{
			name:     "no defaults when disabled",
			expected: dto.QueryParams{},
		},
		{
			name:           "malformed page",
			query:          "?page=first",
			defaultRequest: true,
			expected:       defaults,
		},
		{
			name:           "non-positive numbers",
			query:          "?page=0&limit=-10",
			defaultRequest: true,
			expected:       defaults,
		},
		{
			name:     "limit is capped",
			query:    "?limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "unknown sort direction",
			query:    "?sort_dir=sideways",
			expected: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestFilterGetWhereClause(t *testing.T) {
	at := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "type", Value: "dispute.raised", Operator: dto.FilterOperatorEq, Table: "trust_events"},
			wantWhere: "trust_events.type = :type",
			wantArgs:  map[string]any{"type": "dispute.raised"},
		},
		{
			name:      "not eq",
			filter:    dto.Filter{Field: "component", Value: "escrow", Operator: dto.FilterOperatorNotEq},
			wantWhere: "component != :component",
			wantArgs:  map[string]any{"component": "escrow"},
		},
		{
			name:      "range uses arg name",
			filter:    dto.Filter{ArgName: "created_from", Field: "created_at", Value: at, Operator: dto.FilterOperatorGreaterEq},
			wantWhere: "created_at >= :created_from",
			wantArgs:  map[string]any{"created_from": at},
		},
		{
			name:      "less eq",
			filter:    dto.Filter{Field: "created_at", Value: at, Operator: dto.FilterOperatorLessEq},
			wantWhere: "created_at <= :created_at",
			wantArgs:  map[string]any{"created_at": at},
		},
		{
			name:      "in expands each element",
			filter:    dto.Filter{Field: "component", Value: []string{"escrow", "dispute"}, Operator: dto.FilterOperatorIn},
			wantWhere: "component IN (:component_0, :component_1)",
			wantArgs:  map[string]any{"component_0": "escrow", "component_1": "dispute"},
		},
		{
			name:     "in with empty slice",
			filter:   dto.Filter{Field: "component", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantArgs: map[string]any{},
		},
		{
			name:     "in with scalar",
			filter:   dto.Filter{Field: "component", Value: "escrow", Operator: dto.FilterOperatorIn},
			wantArgs: map[string]any{},
		},
		{
			name:     "unknown operator",
			filter:   dto.Filter{Field: "type", Value: "x", Operator: "like"},
			wantArgs: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroupGetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "type", Value: "escrow.bookingCreated", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "component", Value: "skipped", Operator: "like"},
			"ignored",
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{ArgName: "sender_a", Field: "sender", Value: "0xa1", Operator: dto.FilterOperatorEq},
					dto.Filter{ArgName: "sender_b", Field: "sender", Value: "0xc1", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(type = :type AND (sender = :sender_a OR sender = :sender_b))", where)
	assert.Equal(t, map[string]any{"type": "escrow.bookingCreated", "sender_a": "0xa1", "sender_b": "0xc1"}, args)

	empty := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}
	where, args = empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}
