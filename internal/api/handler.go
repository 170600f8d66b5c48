// Package api implements the JSON endpoints used by the browser client and by
// the leave workflow that reports new requests and decisions.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/internal/pushnotification"
	"github.com/kazz187/leavepush/internal/pushsubscription"
	"github.com/kazz187/leavepush/internal/user"
	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/clog"
)

const reasonNotSubscribed = "not_subscribed"

type Handler struct {
	vapidEnv   *config.VAPIDEnv
	apiKey     string
	registry   *pushsubscription.Registry
	dispatcher *pushnotification.Dispatcher
	users      user.Repository
	startedAt  time.Time
	now        func() time.Time
}

func NewHandler(
	vapidEnv *config.VAPIDEnv,
	apiKey string,
	registry *pushsubscription.Registry,
	dispatcher *pushnotification.Dispatcher,
	users user.Repository,
) *Handler {
	return &Handler{
		vapidEnv:   vapidEnv,
		apiKey:     apiKey,
		registry:   registry,
		dispatcher: dispatcher,
		users:      users,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

// Register mounts the endpoints on r. r is expected to be the /api subrouter.
func (h *Handler) Register(r chi.Router) {
	r.Use(cerr.NewJSONResponseChiMiddleware())

	r.Get("/vapid-key", h.VAPIDKey)
	r.Get("/health", h.Health)
	r.Post("/subscribe", h.Subscribe)
	r.Delete("/unsubscribe/{userId}", h.Unsubscribe)

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(h.apiKey))
		r.Post("/notify-new-leave", h.NotifyNewLeave)
		r.Post("/notify-leave-result", h.NotifyLeaveResult)
		r.Post("/test-notification", h.TestNotification)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.MethodNotAllowed, "method not allowed", nil)
	})
}

func (h *Handler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), &vapidKeyResponse{
		Success:   true,
		PublicKey: h.vapidEnv.VAPIDPublicKey,
	})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscribeRequest
	if err := decodeBody(w, r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.UserID == "" || req.Subscription == nil || req.Subscription.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "userId and subscription.endpoint are required", nil)
		return
	}

	clog.AddAttribute(ctx, "user_id", req.UserID.String())

	if _, err := h.registry.Subscribe(ctx, req.UserID.String(), req.Subscription.Endpoint, req.Subscription.Keys); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &messageResponse{Success: true, Message: "subscribed"})
}

func (h *Handler) NotifyNewLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req notifyNewLeaveRequest
	if err := decodeBody(w, r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	userID := req.UserID.String()
	userName := req.UserName
	clog.AddAttributes(ctx, map[string]any{
		"user_id": userID,
		"event":   "new_leave",
	})
	if userName == "" && userID != "" {
		if u, err := h.users.Get(ctx, userID); err == nil {
			userName = u.DisplayName()
		} else {
			userName = userID
		}
	}

	recipients, err := h.registry.ListEligibleRecipients(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddAttribute(ctx, "recipients", len(recipients))
	slog.InfoContext(ctx, "notifying reviewers of new leave request")

	payload := pushnotification.NewLeavePayload(userID, userName, req.LeaveData["id"], h.now())
	res, err := h.dispatcher.NotifyMany(ctx, recipients, payload)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddAttributes(ctx, map[string]any{
		"sent":    res.Sent,
		"removed": res.Removed,
	})
	cerr.SetJSONResponse(ctx, &notifyManyResponse{
		Success: true,
		Message: fmt.Sprintf("sent %d", res.Sent),
		Sent:    res.Sent,
		Removed: res.Removed,
	})
}

func (h *Handler) NotifyLeaveResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req notifyLeaveResultRequest
	if err := decodeBody(w, r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.UserID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "userId is required", nil)
		return
	}
	status := pushnotification.LeaveStatus(req.Status)
	clog.AddAttributes(ctx, map[string]any{
		"user_id":      req.UserID.String(),
		"event":        "leave_result",
		"leave_status": req.Status,
	})
	if !status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, `status must be "approved" or "rejected"`, nil)
		return
	}

	payload := pushnotification.LeaveResultPayload(status, req.Reason)
	h.notifyOne(w, r, req.UserID.String(), payload)
}

func (h *Handler) TestNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req testNotificationRequest
	if err := decodeBody(w, r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.UserID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "userId is required", nil)
		return
	}
	clog.AddAttributes(ctx, map[string]any{
		"user_id": req.UserID.String(),
		"event":   "test",
	})
	h.notifyOne(w, r, req.UserID.String(), pushnotification.NewTestPayload())
}

func (h *Handler) notifyOne(_ http.ResponseWriter, r *http.Request, userID string, payload *pushnotification.Payload) {
	ctx := r.Context()
	outcome, err := h.dispatcher.NotifyOne(ctx, userID, payload)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddAttribute(ctx, "outcome", string(outcome))

	switch outcome {
	case pushnotification.OutcomeDelivered:
		cerr.SetJSONResponse(ctx, &messageResponse{Success: true, Message: "notification sent"})
	case pushnotification.OutcomeNotSubscribed:
		cerr.SetJSONError(ctx, cerr.NewError(cerr.NotFound, "user is not subscribed", nil).WithReason(reasonNotSubscribed))
	case pushnotification.OutcomeGone:
		cerr.SetJSONError(ctx, cerr.NewError(cerr.NotFound, "subscription expired and was removed", nil).WithReason("subscription_gone"))
	default:
		cerr.SetNewJSONError(ctx, cerr.Unavailable, "push service unavailable", errors.New("delivery failed"))
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.registry.Stats(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &healthResponse{
		Success: true,
		Status:  "running",
		Uptime:  h.now().Sub(h.startedAt).Seconds(),
		Stats:   stats,
	})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	clog.AddAttribute(ctx, "user_id", userID)
	removed, err := h.registry.Unsubscribe(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	msg := "unsubscribed"
	if !removed {
		msg = "no subscription found"
	}
	cerr.SetJSONResponse(ctx, &unsubscribeResponse{Success: true, Removed: removed, Message: msg})
}
