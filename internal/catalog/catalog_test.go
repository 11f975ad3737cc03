package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

func sampleStores() []domain.Store {
	return []domain.Store{
		{ID: 1, Name: "Salon Nguyen Trai", CityProvince: "Ho Chi Minh", District: "Quan 1"},
		{ID: 2, Name: "Salon Cau Giay", CityProvince: " ha noi ", District: "Cau Giay"},
		{ID: 3, Name: "Salon Han River", CityProvince: "Da Nang", Address: "12 Bach Dang"},
		{ID: 4, Name: "Salon Thu Duc", CityProvince: "Ho Chi Minh City", District: "Thu Duc"},
	}
}

func ids(stores []domain.Store) []int64 {
	out := make([]int64, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.ID)
	}
	return out
}

// ============================================================================
// FilterByCity / SearchStores
// ============================================================================

func TestFilterByCity_ExactCaseInsensitive(t *testing.T) {
	tests := []struct {
		city string
		want []int64
	}{
		{"Ho Chi Minh", []int64{1}},
		{"HA NOI", []int64{2}},
		{"  da nang  ", []int64{3}},
		{"Ho Chi", []int64{}},
		{"", []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByCity(sampleStores(), tt.city)))
		})
	}
}

func TestSearchStores_NameOrAddress(t *testing.T) {
	assert.Equal(t, []int64{2}, ids(SearchStores(sampleStores(), "cau")))
	assert.Equal(t, []int64{3}, ids(SearchStores(sampleStores(), "BACH dang")))
	assert.Equal(t, []int64{1, 4}, ids(SearchStores(sampleStores(), "ho chi minh")))
	assert.Len(t, SearchStores(sampleStores(), "  "), 4)
	assert.Empty(t, SearchStores(sampleStores(), "hue"))
}

// ============================================================================
// ServiceSelection
// ============================================================================

func TestServiceSelection_SingleReplaces(t *testing.T) {
	var s ServiceSelection

	s.Toggle(45)
	s.Toggle(46)
	assert.Equal(t, []int64{46}, s.IDs)

	s.Toggle(46)
	assert.True(t, s.Empty())
}

func TestServiceSelection_MultiToggles(t *testing.T) {
	s := ServiceSelection{Multi: true}

	s.Toggle(45)
	s.Toggle(46)
	assert.True(t, s.Has(45))
	assert.True(t, s.Has(46))

	s.Toggle(45)
	assert.Equal(t, []int64{46}, s.IDs)
}

// ============================================================================
// Debouncer
// ============================================================================

func TestDebouncer_RunsAfterDelay(t *testing.T) {
	d := NewDebouncer[string](20 * time.Millisecond)

	start := time.Now()
	v, err := d.Do(context.Background(), "sid", func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_NewerCallSupersedesWaitingOne(t *testing.T) {
	d := NewDebouncer[string](100 * time.Millisecond)
	calls := make(chan string, 2)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = d.Do(context.Background(), "sid", func(ctx context.Context) (string, error) {
			calls <- "first"
			return "first", nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	v, err := d.Do(context.Background(), "sid", func(ctx context.Context) (string, error) {
		calls <- "second"
		return "second", nil
	})
	wg.Wait()
	close(calls)

	require.NoError(t, err)
	assert.Equal(t, "second", v)
	assert.ErrorIs(t, firstErr, apperrors.ErrSuperseded)

	var ran []string
	for c := range calls {
		ran = append(ran, c)
	}
	assert.Equal(t, []string{"second"}, ran, "the superseded call never reaches the upstream")
}

func TestDebouncer_NewerCallCancelsInFlightWork(t *testing.T) {
	d := NewDebouncer[string](0)
	started := make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = d.Do(context.Background(), "sid", func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "stale", ctx.Err()
		})
	}()

	<-started
	v, err := d.Do(context.Background(), "sid", func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.ErrorIs(t, firstErr, apperrors.ErrSuperseded)
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer[int](10 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, key := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = d.Do(context.Background(), key, func(ctx context.Context) (int, error) {
				return i, nil
			})
		}()
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestDebouncer_CallerCancellation(t *testing.T) {
	d := NewDebouncer[string](time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Do(ctx, "sid", func(ctx context.Context) (string, error) {
		return "", errors.New("must not run")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, apperrors.ErrSuperseded)
}
