package cart

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

type stubCatalog map[string]product.Product

func (s stubCatalog) GetProduct(_ context.Context, id string) (product.Product, error) {
	p, ok := s[id]
	if !ok {
		return product.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

type failingStore struct {
	kv.Store
	setErr error
	getErr error
}

func (f failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value, ttl)
}

type fixture struct {
	svc   Service
	store *kv.Memory
	reg   *prometheus.Registry
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := kv.NewMemory()
	reg := prometheus.NewRegistry()
	logs := &bytes.Buffer{}
	svc, err := NewService(ServiceParams{
		Store: store,
		Products: stubCatalog{
			"1": testProduct("1", 250),
			"2": testProduct("2", 150),
			"7": {ID: "7", Name: "Gotu Kola", Price: decimal.NewFromInt(80)},
		},
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: logs, Format: "json"}),
		Metrics:     metrics.NewStorefront(reg),
		DeliveryFee: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	return fixture{svc: svc, store: store, reg: reg, logs: logs}
}

func TestServicePersistsAcrossCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "guest-1", "1", 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "guest-1", "2", 1)
	require.NoError(t, err)

	c, err := f.svc.Get(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	require.Equal(t, 3, c.TotalItems)
	require.True(t, c.TotalAmount.Equal(decimal.NewFromInt(650)))

	other, err := f.svc.Get(ctx, "guest-2")
	require.NoError(t, err)
	require.True(t, other.IsEmpty(), "profiles must not share carts")

	c, err = f.svc.SetQuantity(ctx, "guest-1", "1", 0)
	require.NoError(t, err)
	require.False(t, c.Contains("1"))

	c, err = f.svc.RemoveItem(ctx, "guest-1", "missing")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	summary, err := f.svc.Summary(ctx, "guest-1")
	require.NoError(t, err)
	require.True(t, summary.Total.Equal(decimal.NewFromInt(350)))

	require.NoError(t, f.svc.Clear(ctx, "guest-1"))
	c, err = f.svc.Get(ctx, "guest-1")
	require.NoError(t, err)
	require.True(t, c.IsEmpty())

	require.Equal(t, float64(2), counterValue(t, f.reg, "add"))
	require.Equal(t, float64(1), counterValue(t, f.reg, "clear"))
}

func TestServiceAddItemCatalogChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "guest-1", "404", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = f.svc.AddItem(ctx, "guest-1", "7", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = f.svc.AddItem(ctx, "guest-1", "1", 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = f.svc.AddItem(ctx, " ", "1", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	c, err := f.svc.Get(ctx, "guest-1")
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
}

func TestServiceMalformedStorageLoadsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, kv.CartKey("guest-1"), []byte(`[{"product":`), 0))

	c, err := f.svc.Get(ctx, "guest-1")
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
	require.True(t, strings.Contains(f.logs.String(), "stored cart is malformed"), f.logs.String())

	c, err = f.svc.AddItem(ctx, "guest-1", "2", 1)
	require.NoError(t, err)
	require.Equal(t, 1, c.TotalItems)
}

func TestServiceStoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	svc, err := NewService(ServiceParams{
		Store:    failingStore{Store: kv.NewMemory(), setErr: boom},
		Products: stubCatalog{"1": testProduct("1", 10)},
	})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "guest-1", "1", 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
	require.ErrorIs(t, err, boom)

	svc, err = NewService(ServiceParams{
		Store:    failingStore{Store: kv.NewMemory(), getErr: boom},
		Products: stubCatalog{},
	})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "guest-1")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Products: stubCatalog{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Store: kv.NewMemory()})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Store: kv.NewMemory(), Products: stubCatalog{}, DeliveryFee: decimal.NewFromInt(-1)})
	require.Error(t, err)
}

func counterValue(t *testing.T, reg *prometheus.Registry, op string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "farmfresh_cart_mutations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m.GetLabel(), "op", op) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
