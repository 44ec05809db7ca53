package ports

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"zero value", PageRequest{}, PageRequest{Page: 1, Limit: DefaultPageLimit}},
		{"negative page", PageRequest{Page: -3, Limit: 10}, PageRequest{Page: 1, Limit: 10}},
		{"limit capped", PageRequest{Page: 2, Limit: 1000}, PageRequest{Page: 2, Limit: MaxPageLimit}},
		{"in range", PageRequest{Page: 4, Limit: 25}, PageRequest{Page: 4, Limit: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageRequest_SkipNeverOverflows(t *testing.T) {
	for _, page := range []int{92233720368547760, math.MaxInt, math.MaxInt/MaxPageLimit + 2} {
		for _, limit := range []int{1, 7, MaxPageLimit} {
			p := PageRequest{Page: page, Limit: limit}.Normalize()
			assert.GreaterOrEqual(t, p.Skip(), 0, "page=%d limit=%d", page, limit)
		}
	}

	assert.Equal(t, 40, PageRequest{Page: 3, Limit: 20}.Normalize().Skip())
}
