package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAIServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestColorFor_Success(t *testing.T) {
	srv := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/color", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Navy Blue", body["name"])
		_, _ = w.Write([]byte(`{"colorCode":"#000080"}`))
	})
	sut := NewClient(srv.URL, "secret", time.Second)

	got, err := sut.ColorFor(context.Background(), " Navy Blue ")
	require.NoError(t, err)
	assert.Equal(t, ColorSuggestion{Name: "Navy Blue", ColorCode: "#000080"}, got)
}

func TestColorFor_BadResponseIsNetworkError(t *testing.T) {
	srv := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"colorCode":"navy"}`))
	})
	sut := NewClient(srv.URL, "", time.Second)

	_, err := sut.ColorFor(context.Background(), "Navy")
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestColorFor_EmptyNameIsValidationError(t *testing.T) {
	sut := NewClient("http://unused", "", time.Second)

	_, err := sut.ColorFor(context.Background(), "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDescription_ServerErrorIsNetworkError(t *testing.T) {
	srv := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	sut := NewClient(srv.URL, "", time.Second)

	_, err := sut.Description(context.Background(), DescriptionRequest{Name: "Tee"})
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestDescription_Success(t *testing.T) {
	srv := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/description", r.URL.Path)
		_, _ = w.Write([]byte(`{"description":" Soft cotton tee. "}`))
	})
	sut := NewClient(srv.URL, "", time.Second)

	got, err := sut.Description(context.Background(), DescriptionRequest{Name: "Tee", Category: "Shirts"})
	require.NoError(t, err)
	assert.Equal(t, "Soft cotton tee.", got)
}

func TestClient_NotConfigured(t *testing.T) {
	sut := NewClient("", "", time.Second)

	_, err := sut.ColorFor(context.Background(), "Red")
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	srv := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	sut := NewClient(srv.URL, "", time.Second)

	for i := 0; i < 5; i++ {
		_, err := sut.ColorFor(context.Background(), "Red")
		assert.ErrorIs(t, err, apperr.ErrNetwork)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestDebounce_OnlyLastCallRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs atomic.Int32

	var wg sync.WaitGroup
	results := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = Debounce(context.Background(), d, "session-1", func(ctx context.Context) (int, error) {
				runs.Add(1)
				return i, nil
			})
		}(i)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
	assert.ErrorIs(t, results[0], context.Canceled)
	assert.ErrorIs(t, results[1], context.Canceled)
	assert.NoError(t, results[2])
	assert.Equal(t, 0, d.Pending())
}

func TestDebounce_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			_, errs[i] = Debounce(context.Background(), d, key, func(ctx context.Context) (string, error) {
				return key, nil
			})
		}(i, key)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestDebounce_SupersededWhileRunningCancelsTaskContext(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	started := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := Debounce(context.Background(), d, "k", func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		errCh <- err
	}()

	<-started
	_, err := Debounce(context.Background(), d, "k", func(ctx context.Context) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestDebounce_ParentCancel(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Debounce(ctx, d, "k", func(ctx context.Context) (int, error) {
		return 0, errors.New("must not run")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubAI struct {
	calls atomic.Int32
}

func (s *stubAI) ColorFor(_ context.Context, name string) (ColorSuggestion, error) {
	s.calls.Add(1)
	return ColorSuggestion{Name: name, ColorCode: "#FF0000"}, nil
}

func (s *stubAI) Description(_ context.Context, req DescriptionRequest) (string, error) {
	return "about " + req.Name, nil
}

func TestService_SuggestColorDebounces(t *testing.T) {
	ai := &stubAI{}
	sut := NewService(ai, NewDebouncer(20*time.Millisecond))

	first := make(chan error, 1)
	go func() {
		_, err := sut.SuggestColor(context.Background(), "admin-1", "Re")
		first <- err
	}()
	time.Sleep(5 * time.Millisecond)

	got, err := sut.SuggestColor(context.Background(), "admin-1", "Red")
	require.NoError(t, err)
	assert.Equal(t, "Red", got.Name)
	assert.ErrorIs(t, <-first, context.Canceled)
	assert.Equal(t, int32(1), ai.calls.Load())

	desc, err := sut.Describe(context.Background(), DescriptionRequest{Name: "Tee"})
	require.NoError(t, err)
	assert.Equal(t, "about Tee", desc)
}
