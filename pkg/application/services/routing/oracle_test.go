package routing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

var (
	paris = entities.GeoPoint{ID: "PARIS", Lat: 48.8566, Lon: 2.3522, Role: entities.Depot}
	lyon  = entities.GeoPoint{ID: "LYON", Lat: 45.7640, Lon: 4.8357, DemandWeight: decimal.NewFromInt(5)}
	lille = entities.GeoPoint{ID: "LILLE", Lat: 50.6292, Lon: 3.0573, DemandWeight: decimal.NewFromInt(5)}
)

type fakeProvider struct {
	distances [][]float64
	durations [][]float64
	err       error
	delay     time.Duration
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchMatrix(ctx context.Context, points []entities.GeoPoint) ([][]float64, [][]float64, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return f.distances, f.durations, f.err
}

func TestHaversineDistance(t *testing.T) {
	d := HaversineDistance(paris, lyon)
	assert.InDelta(t, 391_500, d, 2_000)
	assert.Equal(t, 0.0, HaversineDistance(paris, paris))
	assert.InDelta(t, d, HaversineDistance(lyon, paris), 1e-6)
}

func TestHaversineOracle_Matrix(t *testing.T) {
	points := []entities.GeoPoint{paris, lyon, lille}

	matrix, err := NewHaversineOracle(50).Matrix(context.Background(), points)
	require.NoError(t, err)
	require.NoError(t, matrix.Validate(3))

	assert.Equal(t, "haversine", matrix.Source)
	assert.Equal(t, 3, matrix.Size())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, matrix.Distance(i, i))
		for j := 0; j < 3; j++ {
			assert.Equal(t, matrix.Distance(i, j), matrix.Distance(j, i))
		}
	}

	require.True(t, matrix.HasDurations())
	assert.InDelta(t, matrix.Distance(0, 1)/(50*1000.0/3600), matrix.Duration(0, 1), 1e-6)

	noSpeed, err := NewHaversineOracle(0).Matrix(context.Background(), points)
	require.NoError(t, err)
	assert.False(t, noSpeed.HasDurations())
	assert.Equal(t, 0.0, noSpeed.Duration(0, 1))
}

func TestHaversineOracle_RejectsInvalidPoints(t *testing.T) {
	bad := entities.GeoPoint{ID: "X", Lat: 91}
	_, err := NewHaversineOracle(0).Matrix(context.Background(), []entities.GeoPoint{paris, bad})

	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "lat", cfgErr.Field)
}

func TestRoadOracle_SymmetrizesProviderMatrix(t *testing.T) {
	provider := &fakeProvider{
		distances: [][]float64{{5, 100}, {120, 3}},
		durations: [][]float64{{0, 10}, {20, 0}},
	}

	matrix, err := NewRoadOracle(provider, time.Second).Matrix(context.Background(), []entities.GeoPoint{paris, lyon})
	require.NoError(t, err)

	assert.Equal(t, "road:fake", matrix.Source)
	assert.Equal(t, [][]float64{{0, 110}, {110, 0}}, matrix.Distances)
	assert.Equal(t, [][]float64{{0, 15}, {15, 0}}, matrix.Durations)
	assert.Equal(t, 120.0, provider.distances[1][0], "provider data must not be modified")
}

func TestRoadOracle_TrivialInputsSkipProvider(t *testing.T) {
	provider := &fakeProvider{err: errors.New("unreachable")}
	oracle := NewRoadOracle(provider, time.Second)

	for _, points := range [][]entities.GeoPoint{nil, {paris}} {
		matrix, err := oracle.Matrix(context.Background(), points)
		require.NoError(t, err)
		assert.Equal(t, len(points), matrix.Size())
	}
	assert.Equal(t, 0, provider.calls)
}

func TestRoadOracle_Failures(t *testing.T) {
	points := []entities.GeoPoint{paris, lyon}

	tests := []struct {
		name      string
		provider  *fakeProvider
		malformed bool
	}{
		{"transport error", &fakeProvider{err: errors.New("connection refused")}, false},
		{"wrong size", &fakeProvider{distances: [][]float64{{0}}}, true},
		{"non finite cell", &fakeProvider{distances: [][]float64{{0, math.NaN()}, {1, 0}}}, true},
		{"negative cell", &fakeProvider{distances: [][]float64{{0, -1}, {1, 0}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix, err := NewRoadOracle(tt.provider, time.Second).Matrix(context.Background(), points)
			require.Error(t, err)
			assert.Nil(t, matrix)

			var providerErr *entities.ExternalProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, "fake", providerErr.Provider)
			assert.Equal(t, tt.malformed, errors.Is(err, ErrMalformedMatrix))
		})
	}
}

func TestRoadOracle_Timeout(t *testing.T) {
	provider := &fakeProvider{delay: time.Second}

	_, err := NewRoadOracle(provider, 10*time.Millisecond).Matrix(context.Background(), []entities.GeoPoint{paris, lyon})

	var providerErr *entities.ExternalProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRoadOracle_CallerCancellation(t *testing.T) {
	provider := &fakeProvider{delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRoadOracle(provider, time.Minute).Matrix(ctx, []entities.GeoPoint{paris, lyon})
	assert.ErrorIs(t, err, context.Canceled)

	var providerErr *entities.ExternalProviderError
	assert.False(t, errors.As(err, &providerErr))
}

func TestFallbackOracle(t *testing.T) {
	points := []entities.GeoPoint{paris, lyon, lille}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := NewRoadOracle(&fakeProvider{
			distances: [][]float64{{0, 1, 2}, {1, 0, 3}, {2, 3, 0}},
		}, time.Second)
		oracle := NewFallbackOracle(primary, NewHaversineOracle(0), nil)

		matrix, err := oracle.Matrix(context.Background(), points)
		require.NoError(t, err)
		assert.Equal(t, "road:fake", matrix.Source)
	})

	t.Run("provider failure falls back", func(t *testing.T) {
		primary := NewRoadOracle(&fakeProvider{err: errors.New("503")}, time.Second)
		oracle := NewFallbackOracle(primary, NewHaversineOracle(0), nil)

		var hooked error
		oracle.OnFallback(func(_ context.Context, err error) { hooked = err })

		matrix, err := oracle.Matrix(context.Background(), points)
		require.NoError(t, err)
		assert.Equal(t, "haversine", matrix.Source)
		assert.Error(t, hooked)
	})

	t.Run("input errors are not retried", func(t *testing.T) {
		primary := NewRoadOracle(&fakeProvider{}, time.Second)
		oracle := NewFallbackOracle(primary, NewHaversineOracle(0), nil)

		called := false
		oracle.OnFallback(func(context.Context, error) { called = true })

		_, err := oracle.Matrix(context.Background(), []entities.GeoPoint{{ID: "X", Lat: 200}})
		require.Error(t, err)
		assert.False(t, called)
	})
}
