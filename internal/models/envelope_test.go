package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageQueryClamp(t *testing.T) {
	tests := []struct {
		name string
		in   PageQuery
		want PageQuery
	}{
		{"defaults", PageQuery{}, PageQuery{Page: 1, Limit: DefaultPageSize}},
		{"negative page", PageQuery{Page: -5, Limit: 10}, PageQuery{Page: 1, Limit: 10}},
		{"limit too large", PageQuery{Page: 2, Limit: 9999}, PageQuery{Page: 2, Limit: MaxPageSize}},
		{"limit too small", PageQuery{Page: 2, Limit: -1}, PageQuery{Page: 2, Limit: MinPageSize}},
		{"in range untouched", PageQuery{Page: 3, Limit: 50}, PageQuery{Page: 3, Limit: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}

func TestPaginationConsistent(t *testing.T) {
	assert.True(t, (&Pagination{Current: 1, Pages: 5, Total: 100, Limit: 20}).Consistent())
	assert.True(t, (&Pagination{Current: 1, Pages: 6, Total: 101, Limit: 20}).Consistent())
	assert.True(t, (&Pagination{Current: 1, Pages: 0, Total: 0, Limit: 20}).Consistent())
	assert.False(t, (&Pagination{Current: 1, Pages: 5, Total: 101, Limit: 20}).Consistent())
	assert.False(t, (&Pagination{Current: 1, Pages: 5, Total: 100, Limit: 0}).Consistent())
}

func TestEnvelopeDecoding(t *testing.T) {
	raw := `{"success":true,"data":{"id":"r1","status":"pending"},"message":"ok","pagination":{"current":1,"pages":2,"total":30,"limit":20}}`

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "ok", envelope.Message)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 30, envelope.Pagination.Total)

	var req ServiceRequest
	require.NoError(t, json.Unmarshal(envelope.Data, &req))
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, RequestStatusPending, req.Status)
}

func TestRequestStatusOrdering(t *testing.T) {
	order := []RequestStatus{
		RequestStatusPending, RequestStatusAccepted, RequestStatusEnRoute,
		RequestStatusArrived, RequestStatusWorking, RequestStatusCompleted,
	}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Rank(), order[i-1].Rank())
	}
	assert.Equal(t, -1, RequestStatusCancelled.Rank())

	assert.True(t, RequestStatusCompleted.Terminal())
	assert.True(t, RequestStatusCancelled.Terminal())
	assert.False(t, RequestStatusWorking.Terminal())
}
