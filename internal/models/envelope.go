package models

import (
	"encoding/json"
	"math"
)

// Envelope is the wire shape of every backend response:
// {success, data?, message?, pagination?}.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
}

// Consistent checks the server-reported page math.
func (p *Pagination) Consistent() bool {
	if p.Limit <= 0 {
		return false
	}
	return p.Pages == int(math.Ceil(float64(p.Total)/float64(p.Limit)))
}

const (
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100
)

type PageQuery struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Clamp normalizes the query into the allowed bounds: page >= 1,
// limit in [1,100], zero limit falling back to the default.
func (q PageQuery) Clamp() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit < MinPageSize {
		q.Limit = MinPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}
