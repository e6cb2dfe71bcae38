package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/lock"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/logging"
)

func TestOpenStorage_Memory(t *testing.T) {
	s, err := OpenStorage(context.Background(), config.Config{StorageDriver: "memory"}, OriginStorefront, logging.Discard())
	require.NoError(t, err)
	defer s.Close()

	products, err := s.Products.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, s.Orders)
	assert.NotNil(t, s.Invoices)
	assert.NotNil(t, s.Outbox)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), config.Config{StorageDriver: "mongo"}, OriginStorefront, logging.Discard())
	assert.Error(t, err)
}

func TestStartOutbox_DisabledDropsEvents(t *testing.T) {
	w := StartOutbox(context.Background(), config.Config{}, nil, "x", "y", logging.Discard())
	assert.IsType(t, application.NopOutboxWriter{}, w)
}

func TestNewLocker_FallsBackToLocal(t *testing.T) {
	l, closeFn, err := NewLocker(config.Config{}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &lock.LocalLocker{}, l)
	assert.NoError(t, closeFn())
}
