package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(kind domain.EntryKind, pnr string) domain.LedgerEvent {
	return domain.LedgerEvent{
		Type:       domain.EventEntryCreated,
		EntryID:    pnr + "-id",
		Kind:       kind,
		PNR:        pnr,
		EntryDate:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		OccurredAt: time.Now(),
	}
}

func TestBroker_DeliversOnlyMatchingEvents(t *testing.T) {
	b := NewBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sales := b.Subscribe(ctx, domain.LedgerFilter{Kind: domain.KindSale})
	all := b.Subscribe(ctx, domain.LedgerFilter{})

	assert.Equal(t, 1, b.Publish(ctx, event(domain.KindRefund, "AAA111")))
	assert.Equal(t, 2, b.Publish(ctx, event(domain.KindSale, "BBB222")))

	got := <-sales
	assert.Equal(t, "BBB222", got.PNR)
	assert.Equal(t, "AAA111", (<-all).PNR)
	assert.Equal(t, "BBB222", (<-all).PNR)
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx, domain.LedgerFilter{})
	require.Equal(t, 1, b.Len())

	cancel()
	require.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Subscribe(ctx, domain.LedgerFilter{})

	assert.Equal(t, 1, b.Publish(ctx, event(domain.KindSale, "A")))
	assert.Equal(t, 0, b.Publish(ctx, event(domain.KindSale, "B")))
}

func TestBroker_CloseEndsSubscriptions(t *testing.T) {
	b := NewBroker(1)
	ch := b.Subscribe(context.Background(), domain.LedgerFilter{})
	b.Close()

	_, open := <-ch
	assert.False(t, open)

	late := b.Subscribe(context.Background(), domain.LedgerFilter{})
	_, open = <-late
	assert.False(t, open)
}

func TestBroker_DropWarningUsesRequestLogger(t *testing.T) {
	b := NewBroker(1)
	subCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = b.Subscribe(subCtx, domain.LedgerFilter{})

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("request_id", "req-42"))
	ctx := middleware.WithLogger(context.Background(), logger)

	assert.Equal(t, 1, b.Publish(ctx, event(domain.KindSale, "AAA111")))
	assert.Equal(t, 0, b.Publish(ctx, event(domain.KindSale, "BBB222")))

	assert.Contains(t, buf.String(), "Dropping ledger event for slow subscriber")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"entry_id":"BBB222-id"`)
}
