package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRates_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	svc := services.NewExchangeRateService(w.store,
		services.WithExchangeRateAuthorizer(services.NewAuthorizationService(w.store)),
		services.WithExchangeRateHistoryLimit(2))

	_, err := svc.CurrentRate(ctx, w.viewer)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.RecordRate(ctx, w.viewer, dto.RecordExchangeRateRequest{Rate: dec("1310")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.RecordRate(ctx, w.admin, dto.RecordExchangeRateRequest{Rate: dec("0")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	for _, r := range []string{"1300", "1310.5", "1320"} {
		_, err := svc.RecordRate(ctx, w.admin, dto.RecordExchangeRateRequest{Rate: dec(r)})
		require.NoError(t, err)
	}

	current, err := svc.CurrentRate(ctx, w.viewer)
	require.NoError(t, err)
	assert.True(t, dec("1320").Equal(current.Rate))
	assert.Equal(t, "admin", current.RecordedBy)

	history, err := svc.History(ctx, w.viewer, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, dec("1310.5").Equal(history[1].Rate))

	usd, err := current.Convert(dec("75000"), domain.CurrencyIQD, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, "56.82", usd.StringFixed(2))
}
