package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kazz187/leavepush/pkg/cerr"
)

const maxBodyBytes = 1 << 20

// UserID accepts both JSON strings and numbers. Callers such as spreadsheet
// scripts send employee ids as numbers.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userId must be a string or a number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

type subscriptionBody struct {
	Endpoint string            `json:"endpoint"`
	Keys     map[string]string `json:"keys"`
}

type subscribeRequest struct {
	UserID       UserID            `json:"userId"`
	Subscription *subscriptionBody `json:"subscription"`
}

type notifyNewLeaveRequest struct {
	UserID    UserID         `json:"userId"`
	UserName  string         `json:"userName"`
	LeaveData map[string]any `json:"leaveData"`
}

type notifyLeaveResultRequest struct {
	UserID   UserID `json:"userId"`
	UserName string `json:"userName"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

type testNotificationRequest struct {
	UserID UserID `json:"userId"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid JSON body", err)
	}
	return nil
}
