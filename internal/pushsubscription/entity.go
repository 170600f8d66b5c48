package pushsubscription

import "time"

// Subscription is the push channel registered by one user's browser. Keys is
// the key material from the browser's PushSubscription, stored as received.
type Subscription struct {
	UserID    string            `json:"-"`
	Endpoint  string            `json:"endpoint"`
	Keys      map[string]string `json:"keys,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

const (
	KeyP256dh = "p256dh"
	KeyAuth   = "auth"
)
