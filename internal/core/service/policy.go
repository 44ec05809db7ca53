package service

import (
	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

// authorize applies the policy on a write path and counts denials.
func authorize(caller domain.Principal, isOwner bool, verb string, res domain.Resource) error {
	if err := domain.Authorize(caller, isOwner, verb, res); err != nil {
		metrics.AuthorizationDeniedTotal.WithLabelValues(res.String()).Inc()
		return err
	}
	return nil
}
