package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/clinicdesk/internal/adapter/http/middleware"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/config"
	"github.com/iho/clinicdesk/internal/infrastructure/eventpublisher"
)

func TestAmountLimits(t *testing.T) {
	cfg := &config.Config{LedgerMinAmount: -500, LedgerMaxAmount: 900}

	assert.Equal(t, domain.AmountLimits{Min: -500, Max: 900}, amountLimits(cfg))
}

func TestBuildPublisher_LogFallback(t *testing.T) {
	log := zerolog.Nop()

	p, closeFn, err := buildPublisher(&config.Config{}, &log)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	_, ok := p.(*eventpublisher.LogPublisher)
	assert.True(t, ok, "expected log publisher without AMQP_URL, got %T", p)
}

func TestBuildPublisher_BadURL(t *testing.T) {
	log := zerolog.Nop()

	_, _, err := buildPublisher(&config.Config{AMQPURL: "http://not-amqp", AMQPExchange: "x"}, &log)
	assert.Error(t, err)
}

func TestSweepLimiters_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sweepLimiters(ctx, middleware.NewRateLimiter(1, 1), zerolog.Nop())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
