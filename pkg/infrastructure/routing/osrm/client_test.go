package osrm

import (
	"context"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	client, err := NewWithHTTPClient(Config{BaseURL: "http://osrm.local/", Profile: "driving"}, &http.Client{Transport: rt})
	require.NoError(t, err)
	return client
}

var points = []entities.GeoPoint{
	{ID: "PARIS", Lat: 48.8566, Lon: 2.3522},
	{ID: "LYON", Lat: 45.764, Lon: 4.8357},
}

func TestClient_FetchMatrix(t *testing.T) {
	var requested string
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		requested = r.URL.String()
		return jsonResponse(http.StatusOK, `{"code":"Ok","distances":[[0,465000],[466000,0]],"durations":[[0,16000],[16100,0]]}`), nil
	})

	distances, durations, err := client.FetchMatrix(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, "http://osrm.local/table/v1/driving/2.352200,48.856600;4.835700,45.764000?annotations=distance,duration", requested)
	assert.Equal(t, [][]float64{{0, 465000}, {466000, 0}}, distances)
	assert.Equal(t, [][]float64{{0, 16000}, {16100, 0}}, durations)
	assert.Equal(t, "osrm", client.Name())
}

func TestClient_NullCellsBecomeNaN(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"code":"Ok","distances":[[0,null],[10,0]]}`), nil
	})

	distances, durations, err := client.FetchMatrix(context.Background(), points)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(distances[0][1]))
	assert.Nil(t, durations)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusServiceUnavailable, "overloaded", http.StatusServiceUnavailable},
		{"bad request", http.StatusBadRequest, `{"code":"InvalidQuery"}`, http.StatusBadRequest},
		{"rejected", http.StatusOK, `{"code":"NoTable","message":"no route"}`, 0},
		{"wrong rows", http.StatusOK, `{"code":"Ok","distances":[[0]]}`, 0},
		{"garbage", http.StatusOK, `not json`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tt.status, tt.body), nil
			})

			_, _, err := client.FetchMatrix(context.Background(), points)
			require.Error(t, err)

			var providerErr *entities.ExternalProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, "osrm", providerErr.Provider)
			assert.Equal(t, "table", providerErr.Op)
			assert.Equal(t, tt.wantStatus, providerErr.StatusCode)
		})
	}
}

func TestClient_SharesIdenticalInflightRequests(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return jsonResponse(http.StatusOK, `{"code":"Ok","distances":[[0,1],[1,0]]}`), nil
	})

	var wg sync.WaitGroup
	results := make([][][]float64, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, _, err := client.FetchMatrix(context.Background(), points)
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	results[0][0][1] = 99
	assert.Equal(t, 1.0, results[1][0][1], "callers must receive independent copies")
}

func TestClient_CallerCancellationDoesNotAbortSharedRequest(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
			return jsonResponse(http.StatusOK, `{"code":"Ok","distances":[[0,7],[7,0]]}`), nil
		case <-r.Context().Done():
			return nil, r.Context().Err()
		}
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := client.FetchMatrix(firstCtx, points)
		firstErr <- err
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		distances [][]float64
		err       error
	}
	second := make(chan outcome, 1)
	go func() {
		d, _, err := client.FetchMatrix(context.Background(), points)
		second <- outcome{d, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, [][]float64{{0, 7}, {7, 0}}, got.distances)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_SharedRequestIsBoundedByClientTimeout(t *testing.T) {
	client, err := NewWithHTTPClient(Config{BaseURL: "http://osrm.local", Timeout: 20 * time.Millisecond},
		&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		})})
	require.NoError(t, err)

	_, _, err = client.FetchMatrix(context.Background(), points)

	var providerErr *entities.ExternalProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})

	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ROUTING_PROVIDER_URL", cfgErr.Field)
}
