package pushnotification

import (
	"fmt"
	"time"
)

const (
	defaultIcon = "/icon-192x192.png"
	rootURL     = "/"
)

var defaultVibrate = []int{200, 100, 200}

// Payload is the JSON document the service worker turns into a notification.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Vibrate            []int          `json:"vibrate,omitempty"`
}

type LeaveStatus string

const (
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) Valid() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// NewLeavePayload announces a leave request to reviewers. leaveID may be nil,
// in which case the current time in milliseconds identifies the request.
func NewLeavePayload(userID, userName string, leaveID any, now time.Time) *Payload {
	if leaveID == nil || leaveID == "" {
		leaveID = now.UnixMilli()
	}
	return &Payload{
		Title: "📝 ĐƠN NGHỈ PHÉP MỚI",
		Body:  fmt.Sprintf("%s vừa gửi đơn nghỉ phép", userName),
		Icon:  defaultIcon,
		Badge: defaultIcon,
		Data: map[string]any{
			"type":     "new_leave",
			"userId":   userID,
			"userName": userName,
			"leaveId":  leaveID,
			"url":      rootURL,
		},
		RequireInteraction: true,
		Vibrate:            defaultVibrate,
	}
}

// LeaveResultPayload tells the requester about a decision. Any status other
// than approved is worded as a rejection.
func LeaveResultPayload(status LeaveStatus, reason string) *Payload {
	p := &Payload{
		Icon:  defaultIcon,
		Badge: defaultIcon,
		Data: map[string]any{
			"type": "leave_" + string(status),
			"url":  rootURL,
		},
		RequireInteraction: true,
		Vibrate:            defaultVibrate,
	}
	if status == LeaveApproved {
		p.Title = "✅ ĐƠN ĐÃ ĐƯỢC DUYỆT"
		p.Body = "Đơn nghỉ phép của bạn đã được duyệt"
		return p
	}
	if reason == "" {
		reason = "Không rõ lý do"
	}
	p.Title = "❌ ĐƠN BỊ TỪ CHỐI"
	p.Body = "Đơn bị từ chối: " + reason
	return p
}

func NewTestPayload() *Payload {
	return &Payload{
		Title: "🔔 TEST NOTIFICATION",
		Body:  "Đây là thông báo test từ hệ thống",
		Icon:  defaultIcon,
		Data:  map[string]any{"type": "test"},
	}
}
