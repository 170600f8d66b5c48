package pushnotification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/internal/pushsubscription"
)

func newBrowserKeys(t *testing.T) map[string]string {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return map[string]string{
		pushsubscription.KeyP256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		pushsubscription.KeyAuth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newVAPIDEnv(t *testing.T) *config.VAPIDEnv {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return &config.VAPIDEnv{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		VAPIDSubject:    "mailto:admin@example.com",
	}
}

func TestWebPushTransport_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
		wantOK  bool
	}{
		{name: "created", status: http.StatusCreated, wantOK: true},
		{name: "gone", status: http.StatusGone, wantErr: ErrGone},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrGone},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "too many requests", status: http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTTL, gotAuth, gotEncoding string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTTL = r.Header.Get("TTL")
				gotAuth = r.Header.Get("Authorization")
				gotEncoding = r.Header.Get("Content-Encoding")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			transport := NewWebPushTransport(newVAPIDEnv(t), 60, WithHTTPClient(srv.Client()))
			err := transport.Send(context.Background(), &pushsubscription.Subscription{
				UserID:   "4810",
				Endpoint: srv.URL + "/push/abc",
				Keys:     newBrowserKeys(t),
			}, []byte(`{"title":"hi"}`))

			switch {
			case tt.wantOK:
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrGone)
			}
			assert.Equal(t, "60", gotTTL)
			assert.True(t, strings.HasPrefix(gotAuth, "vapid "), gotAuth)
			assert.Equal(t, "aes128gcm", gotEncoding)
		})
	}
}

func TestWebPushTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewWebPushTransport(newVAPIDEnv(t), 60).Send(context.Background(), &pushsubscription.Subscription{
		Endpoint: url,
		Keys:     newBrowserKeys(t),
	}, []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGone)
}
