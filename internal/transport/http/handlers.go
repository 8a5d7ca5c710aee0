// Copyright 2026 The Waitline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/customer"
	"github.com/waitline/waitline/internal/queue"
	"github.com/waitline/waitline/internal/staff"
	"github.com/waitline/waitline/internal/tenant"
)

// Handler bundles the HTTP endpoints over the domain services.
type Handler struct {
	engine    *queue.Service
	tenants   *tenant.Service
	customers *customer.Service
	staff     *staff.Service
	tokens    *auth.TokenManager
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	engine *queue.Service,
	tenants *tenant.Service,
	customers *customer.Service,
	staffSvc *staff.Service,
	tokens *auth.TokenManager,
) *Handler {
	return &Handler{
		engine:    engine,
		tenants:   tenants,
		customers: customers,
		staff:     staffSvc,
		tokens:    tokens,
	}
}

// NewRouter wires the routes. Public customer endpoints carry the tenant in
// the path and are rate limited per client IP; staff endpoints derive the
// tenant from the bearer token.
func NewRouter(h *Handler, limiter *RateLimiter, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(RateLimitMiddleware(limiter)).Post("/tenants", h.CreateTenant)

		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(RateLimitMiddleware(limiter))
			r.Post("/staff/login", h.StaffLogin)
			r.Post("/customers", h.RegisterCustomer)
			r.Post("/queues/{queueID}/tickets", h.JoinQueue)
			r.Get("/tickets/{ticketID}", h.GetTicket)
			r.Get("/tickets/{ticketID}/position", h.GetPosition)
			r.Post("/tickets/{ticketID}/cancel", h.CustomerCancel)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(RequireStaff)

			r.Get("/queues", h.ListQueues)
			r.Get("/queues/{queueID}", h.GetQueue)
			r.Put("/queues/{queueID}", h.UpdateQueue)
			r.Get("/queues/{queueID}/tickets", h.ListWaiting)
			r.Post("/queues/{queueID}/tickets", h.WalkIn)

			r.Post("/tickets/{ticketID}/call", h.ticketAction(h.engine.Call))
			r.Post("/tickets/{ticketID}/confirm", h.ticketAction(h.engine.ConfirmPresence))
			r.Post("/tickets/{ticketID}/skip", h.ticketAction(h.engine.Skip))
			r.Post("/tickets/{ticketID}/recall", h.ticketAction(h.engine.Recall))
			r.Post("/tickets/{ticketID}/no-show", h.ticketAction(h.engine.MarkNoShow))
			r.Post("/tickets/{ticketID}/finish", h.FinishTicket)
			r.Post("/tickets/{ticketID}/cancel", h.StaffCancel)
			r.Get("/tickets/{ticketID}/events", h.ListEvents)

			r.With(RequireAdmin).Post("/members", h.CreateStaff)
		})
	})

	return otelhttp.NewHandler(r, "waitline-http")
}

// Health handles liveness checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ticketResponse struct {
	ID              string     `json:"id"`
	QueueID         string     `json:"queue_id"`
	Number          string     `json:"number"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	Channel         string     `json:"channel"`
	PartySize       int        `json:"party_size"`
	FeeOwed         int64      `json:"fee_owed"`
	RecallCount     int        `json:"recall_count"`
	ServiceMinutes  float64    `json:"service_minutes,omitempty"`
	ArrivedAt       time.Time  `json:"arrived_at"`
	CalledAt        *time.Time `json:"called_at,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	Position        int        `json:"position,omitempty"`
	EstimatedWaitMn int        `json:"eta_minutes,omitempty"`
}

func toTicketResponse(t *queue.Ticket, pos *queue.Position) ticketResponse {
	resp := ticketResponse{
		ID:             t.ID,
		QueueID:        t.QueueID,
		Number:         t.Number,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		Channel:        string(t.Channel),
		PartySize:      t.PartySize,
		FeeOwed:        t.FeeOwed,
		RecallCount:    t.RecallCount,
		ServiceMinutes: t.ServiceDuration.Minutes(),
		ArrivedAt:      t.ArrivedAt,
		CalledAt:       t.CalledAt,
		ConfirmedAt:    t.ConfirmedAt,
		FinishedAt:     t.FinishedAt,
		CancelledAt:    t.CancelledAt,
	}
	if pos != nil {
		resp.Position = pos.Rank
		resp.EstimatedWaitMn = pos.ETAMinutes
	}
	return resp
}

type joinQueueRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Priority   string `json:"priority"`
	PartySize  int    `json:"party_size"`
}

// JoinQueue handles a customer joining a queue remotely.
func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.admit(w, r, queue.AdmitInput{
		TenantID:   chi.URLParam(r, "tenantID"),
		QueueID:    chi.URLParam(r, "queueID"),
		CustomerID: req.CustomerID,
		Phone:      req.Phone,
		Priority:   priorityOrDefault(req.Priority),
		PartySize:  req.PartySize,
		Channel:    queue.ChannelRemote,
		Actor:      queue.Actor{Kind: queue.ActorCustomer, ID: req.CustomerID},
	})
}

// WalkIn handles staff entering a walk-in customer at the venue.
func (h *Handler) WalkIn(w http.ResponseWriter, r *http.Request) {
	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.admit(w, r, queue.AdmitInput{
		TenantID:   GetTenantID(r.Context()),
		QueueID:    chi.URLParam(r, "queueID"),
		CustomerID: req.CustomerID,
		Phone:      req.Phone,
		Priority:   priorityOrDefault(req.Priority),
		PartySize:  req.PartySize,
		Channel:    queue.ChannelLocal,
		Actor:      GetActor(r.Context()),
	})
}

func (h *Handler) admit(w http.ResponseWriter, r *http.Request, in queue.AdmitInput) {
	t, err := h.engine.Admit(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	pos, err := h.engine.PositionAndETA(r.Context(), t.TenantID, t.ID)
	if err != nil {
		// The ticket exists; position feedback is best effort here.
		respondJSON(w, http.StatusCreated, toTicketResponse(t, nil))
		return
	}
	respondJSON(w, http.StatusCreated, toTicketResponse(t, &pos))
}

func priorityOrDefault(p string) queue.PriorityClass {
	if p == "" {
		return queue.PriorityNormal
	}
	return queue.PriorityClass(p)
}

// GetTicket returns a single ticket.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.GetTicket(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "ticketID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTicketResponse(t, nil))
}

// GetPosition returns a ticket's live position and estimated wait.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.engine.PositionAndETA(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "ticketID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pos)
}

// CustomerCancel lets a customer withdraw their own ticket.
func (h *Handler) CustomerCancel(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	t, err := h.engine.GetTicket(r.Context(), tenantID, chi.URLParam(r, "ticketID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	actor := queue.Actor{Kind: queue.ActorCustomer, ID: t.CustomerID}
	t, err = h.engine.Cancel(r.Context(), tenantID, t.ID, actor, "")
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTicketResponse(t, nil))
}

// ticketAction adapts a single-ticket engine operation to an HTTP handler.
func (h *Handler) ticketAction(
	op func(ctx context.Context, tenantID, ticketID string, actor queue.Actor) (*queue.Ticket, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := op(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "ticketID"), GetActor(r.Context()))
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toTicketResponse(t, nil))
	}
}

type finishRequest struct {
	Observations string `json:"observations,omitempty"`
}

// FinishTicket completes service for a ticket.
func (h *Handler) FinishTicket(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	t, err := h.engine.Finish(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "ticketID"), GetActor(r.Context()), req.Observations)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTicketResponse(t, nil))
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// StaffCancel cancels a ticket on behalf of the venue.
func (h *Handler) StaffCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	t, err := h.engine.Cancel(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "ticketID"), GetActor(r.Context()), req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTicketResponse(t, nil))
}

// ListWaiting returns the waiting set of a queue in serving order.
func (h *Handler) ListWaiting(w http.ResponseWriter, r *http.Request) {
	waiting, err := h.engine.ListWaiting(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "queueID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]ticketResponse, 0, len(waiting))
	for i, t := range waiting {
		resp := toTicketResponse(t, nil)
		resp.Position = i + 1
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, map[string]any{"tickets": out, "total": len(out)})
}

type eventResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	ActorKind string         `json:"actor_kind"`
	ActorID   string         `json:"actor_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListEvents returns a ticket's event history.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.engine.ListEvents(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "ticketID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse{
			ID:        ev.ID,
			Kind:      ev.Kind,
			ActorKind: string(ev.ActorKind),
			ActorID:   ev.ActorID,
			Metadata:  ev.Metadata,
			CreatedAt: ev.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": out})
}

type queueResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Prefix           string `json:"prefix"`
	Status           string `json:"status"`
	MaxConcurrent    int    `json:"max_concurrent"`
	MaxEntriesPerDay int    `json:"max_entries_per_day"`
	FastLaneFee      int64  `json:"fast_lane_fee"`
	VIPFee           int64  `json:"vip_fee"`
}

func toQueueResponse(q *queue.Queue) queueResponse {
	return queueResponse{
		ID:               q.ID,
		Name:             q.Name,
		Prefix:           q.Prefix,
		Status:           string(q.Status),
		MaxConcurrent:    q.MaxConcurrent,
		MaxEntriesPerDay: q.MaxEntriesPerDay,
		FastLaneFee:      q.FastLaneFee,
		VIPFee:           q.VIPFee,
	}
}

// ListQueues returns the venue's queues.
func (h *Handler) ListQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := h.engine.ListQueues(r.Context(), GetTenantID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]queueResponse, 0, len(queues))
	for _, q := range queues {
		out = append(out, toQueueResponse(q))
	}
	respondJSON(w, http.StatusOK, map[string]any{"queues": out})
}

// GetQueue returns a queue's configuration.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	q, err := h.engine.GetQueue(r.Context(), GetTenantID(r.Context()), chi.URLParam(r, "queueID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toQueueResponse(q))
}

type updateQueueRequest struct {
	Name             *string `json:"name,omitempty"`
	Status           *string `json:"status,omitempty"`
	MaxConcurrent    *int    `json:"max_concurrent,omitempty"`
	MaxEntriesPerDay *int    `json:"max_entries_per_day,omitempty"`
	FastLaneFee      *int64  `json:"fast_lane_fee,omitempty"`
	VIPFee           *int64  `json:"vip_fee,omitempty"`
}

// UpdateQueue applies staff configuration changes: pause/resume, capacity
// ceilings, daily entry limits and the fee schedule.
func (h *Handler) UpdateQueue(w http.ResponseWriter, r *http.Request) {
	var req updateQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenantID := GetTenantID(r.Context())
	q, err := h.engine.GetQueue(r.Context(), tenantID, chi.URLParam(r, "queueID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.Name != nil {
		q.Name = *req.Name
	}
	if req.Status != nil {
		q.Status = queue.QueueStatus(*req.Status)
	}
	if req.MaxConcurrent != nil {
		q.MaxConcurrent = *req.MaxConcurrent
	}
	if req.MaxEntriesPerDay != nil {
		q.MaxEntriesPerDay = *req.MaxEntriesPerDay
	}
	if req.FastLaneFee != nil {
		q.FastLaneFee = *req.FastLaneFee
	}
	if req.VIPFee != nil {
		q.VIPFee = *req.VIPFee
	}

	if err := h.tenants.UpdateQueue(r.Context(), q, GetActor(r.Context()).ID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toQueueResponse(q))
}

type createTenantRequest struct {
	Name          string `json:"name"`
	AdminEmail    string `json:"admin_email"`
	AdminName     string `json:"admin_name"`
	AdminPassword string `json:"admin_password"`
}

// CreateTenant onboards a venue with its default queue and first admin.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.AdminEmail == "" || req.AdminPassword == "" {
		respondError(w, http.StatusBadRequest, "name, admin_email and admin_password are required")
		return
	}

	t, err := h.tenants.CreateTenant(r.Context(), req.Name, "")
	if err != nil {
		respondDomainError(w, err)
		return
	}

	admin, err := h.staff.Create(r.Context(), t.ID, req.AdminEmail, req.AdminName, req.AdminPassword, "admin")
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"tenant_id": t.ID,
		"name":      t.Name,
		"admin_id":  admin.ID,
	})
}

type staffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLogin authenticates a staff member and returns a bearer token.
func (h *Handler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, m, err := h.staff.Authenticate(r.Context(), chi.URLParam(r, "tenantID"), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"staff_id":  m.ID,
		"full_name": m.FullName,
		"role":      m.Role,
	})
}

type createStaffRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateStaff registers a staff member in the admin's venue.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.staff.Create(r.Context(), GetTenantID(r.Context()), req.Email, req.FullName, req.Password, req.Role)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":        m.ID,
		"email":     m.Email,
		"full_name": m.FullName,
		"role":      m.Role,
	})
}

type registerCustomerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// RegisterCustomer creates a customer profile in the venue.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Phone == "" {
		respondError(w, http.StatusBadRequest, "phone is required")
		return
	}

	c, err := h.customers.Register(r.Context(), chi.URLParam(r, "tenantID"), req.FullName, req.Phone)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":        c.ID,
		"full_name": c.FullName,
		"phone":     c.Phone,
	})
}
