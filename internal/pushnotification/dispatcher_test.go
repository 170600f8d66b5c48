package pushnotification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/leavepush/internal/pushsubscription"
	"github.com/kazz187/leavepush/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/storage"
)

type countingStorage struct {
	storage.Storage
	mu     sync.Mutex
	writes int
}

func (s *countingStorage) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.Storage.Write(ctx, path, data)
}

type stubTransport struct {
	mu    sync.Mutex
	calls []string
	// results maps an endpoint to the error returned for it.
	results map[string]error
}

func (s *stubTransport) Send(_ context.Context, sub *pushsubscription.Subscription, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sub.UserID)
	return s.results[sub.Endpoint]
}

func seedSubscriptions(t *testing.T, repo pushsubscription.Repository, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, repo.Put(context.Background(), &pushsubscription.Subscription{
			UserID:   id,
			Endpoint: "https://push.example/" + id,
		}))
	}
}

func TestDispatcher_NotifyManyPrunesGone(t *testing.T) {
	ctx := context.Background()
	store := &countingStorage{Storage: storage.NewMemoryStorage()}
	repo := repositoryimpl.NewJSONRepository(store)
	seedSubscriptions(t, repo, "1234", "4810", "7000")
	store.writes = 0

	transport := &stubTransport{results: map[string]error{
		"https://push.example/4810": ErrGone,
		"https://push.example/7000": errors.New("connection reset"),
	}}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	d := NewDispatcher(repo, transport, WithMetrics(metrics))

	res, err := d.NotifyMany(ctx, []string{"1234", "4810", "5035", "7000"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1, Removed: 1}, res)
	assert.Equal(t, []string{"1234", "4810", "7000"}, transport.calls)
	assert.Equal(t, 1, store.writes)

	_, err = repo.Get(ctx, "4810")
	assert.Error(t, err)
	_, err = repo.Get(ctx, "7000")
	assert.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.deliveries.WithLabelValues(string(OutcomeDelivered))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.deliveries.WithLabelValues(string(OutcomeFailed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.pruned))
}

func TestDispatcher_NotifyManyNoSubscriptions(t *testing.T) {
	store := &countingStorage{Storage: storage.NewMemoryStorage()}
	transport := &stubTransport{}
	d := NewDispatcher(repositoryimpl.NewJSONRepository(store), transport)

	res, err := d.NotifyMany(context.Background(), []string{"1234", "4810"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, transport.calls)
	assert.Zero(t, store.writes)
}

func TestDispatcher_NotifyManyNoWriteWithoutPruning(t *testing.T) {
	store := &countingStorage{Storage: storage.NewMemoryStorage()}
	repo := repositoryimpl.NewJSONRepository(store)
	seedSubscriptions(t, repo, "1234")
	store.writes = 0

	res, err := NewDispatcher(repo, &stubTransport{}).NotifyMany(context.Background(), []string{"1234"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1}, res)
	assert.Zero(t, store.writes)
}

func TestDispatcher_NotifyManySurvivesCanceledCaller(t *testing.T) {
	repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
	seedSubscriptions(t, repo, "1234")

	var sawErr error
	transport := TransportFunc(func(ctx context.Context, _ *pushsubscription.Subscription, _ []byte) error {
		sawErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewDispatcher(repo, transport).NotifyMany(ctx, []string{"1234"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.NoError(t, sawErr)
}

func TestDispatcher_PanickingTransport(t *testing.T) {
	repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
	seedSubscriptions(t, repo, "1234", "4810")

	transport := TransportFunc(func(_ context.Context, sub *pushsubscription.Subscription, _ []byte) error {
		if sub.UserID == "1234" {
			panic("bad key material")
		}
		return nil
	})

	res, err := NewDispatcher(repo, transport).NotifyMany(context.Background(), []string{"1234", "4810"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1}, res)
}

func TestDispatcher_DeliveryTimeout(t *testing.T) {
	repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
	seedSubscriptions(t, repo, "1234")

	transport := TransportFunc(func(ctx context.Context, _ *pushsubscription.Subscription, _ []byte) error {
		<-ctx.Done()
		return ctx.Err()
	})

	d := NewDispatcher(repo, transport, WithTimeout(20*time.Millisecond))
	outcome, err := d.NotifyOne(context.Background(), "1234", NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestDispatcher_NotifyOne(t *testing.T) {
	tests := []struct {
		name       string
		subscribed bool
		sendErr    error
		want       Outcome
		wantKept   bool
	}{
		{name: "delivered", subscribed: true, want: OutcomeDelivered, wantKept: true},
		{name: "not subscribed", subscribed: false, want: OutcomeNotSubscribed},
		{name: "gone", subscribed: true, sendErr: ErrGone, want: OutcomeGone, wantKept: false},
		{name: "transient failure", subscribed: true, sendErr: errors.New("503"), want: OutcomeFailed, wantKept: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
			if tt.subscribed {
				seedSubscriptions(t, repo, "5035")
			}
			transport := &stubTransport{results: map[string]error{"https://push.example/5035": tt.sendErr}}

			outcome, err := NewDispatcher(repo, transport).NotifyOne(ctx, "5035", LeaveResultPayload(LeaveApproved, ""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)

			if !tt.subscribed {
				assert.Empty(t, transport.calls)
			}
			_, err = repo.Get(ctx, "5035")
			assert.Equal(t, tt.wantKept, err == nil)
		})
	}
}

func TestDispatcher_SendsEncodedPayload(t *testing.T) {
	repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
	seedSubscriptions(t, repo, "4810")

	var got map[string]any
	transport := TransportFunc(func(_ context.Context, _ *pushsubscription.Subscription, payload []byte) error {
		return json.Unmarshal(payload, &got)
	})

	now := time.UnixMilli(1700000000000)
	_, err := NewDispatcher(repo, transport).NotifyMany(context.Background(), []string{"4810"}, NewLeavePayload("5035", "Lê Văn Luýt", nil, now))
	require.NoError(t, err)
	assert.Equal(t, "📝 ĐƠN NGHỈ PHÉP MỚI", got["title"])
	assert.Equal(t, true, got["requireInteraction"])
	data := got["data"].(map[string]any)
	assert.Equal(t, "new_leave", data["type"])
	assert.EqualValues(t, 1700000000000, data["leaveId"])
}

func TestDispatcher_RateLimit(t *testing.T) {
	repo := repositoryimpl.NewJSONRepository(storage.NewMemoryStorage())
	seedSubscriptions(t, repo, "1", "2", "3")

	d := NewDispatcher(repo, &stubTransport{}, WithRateLimit(50))
	start := time.Now()
	res, err := d.NotifyMany(context.Background(), []string{"1", "2", "3"}, NewTestPayload())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)
	// burst of one, then two waits of 20ms each
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

type unreadableStorage struct {
	storage.Storage
}

func (unreadableStorage) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestDispatcher_NotifyManyReadFailure(t *testing.T) {
	store := &countingStorage{Storage: unreadableStorage{Storage: storage.NewMemoryStorage()}}
	transport := &stubTransport{}

	_, err := NewDispatcher(repositoryimpl.NewJSONRepository(store), transport).
		NotifyMany(context.Background(), []string{"1234"}, NewTestPayload())
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	assert.Empty(t, transport.calls)
	assert.Zero(t, store.writes)
}
