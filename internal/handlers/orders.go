// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fotoproof/internal/middleware"
	"fotoproof/internal/models"
	"fotoproof/internal/orders"
	"fotoproof/internal/store"
)

// defaultOrderPageSize bounds admin order listings.
const defaultOrderPageSize = 50

// Orders groups the order HTTP handlers: customer submission and
// history, admin listing and fulfillment.
type Orders struct {
	service *orders.Service
	orders  *store.OrderStore
}

// NewOrders creates a new Orders handler group.
func NewOrders(service *orders.Service, orderStore *store.OrderStore) *Orders {
	return &Orders{
		service: service,
		orders:  orderStore,
	}
}

// Create places an order for the signed-in customer. The response may
// carry a folder warning when the record committed but the on-disk
// order folder could not be materialized.
func (o *Orders) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	var input orders.CreateInput
	if !readJSON(w, r, &input) {
		return
	}
	if msg := validateOrder(len(input.Items), input.Notes, input.ShippingAddress); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := o.service.Create(principal, input)
	if err != nil {
		writeDomainError(w, "create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// List returns orders for fulfillment, newest first, with optional
// status and customer filters and page/limit pagination.
func (o *Orders) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.ListFilter
	if status := q.Get("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown order status.")
			return
		}
		filter.Status = s
	}
	if code := q.Get("customer"); code != "" {
		if !models.ValidCode(code) {
			writeError(w, http.StatusBadRequest, "Access code must be 4 digits.")
			return
		}
		filter.CustomerCode = code
	}

	filter.Limit = defaultOrderPageSize
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 1 {
		page = p
	}
	filter.Skip = (page - 1) * filter.Limit

	list, err := o.orders.List(filter)
	if err != nil {
		writeDomainError(w, "list orders", err)
		return
	}
	total, err := o.orders.Count(filter)
	if err != nil {
		writeDomainError(w, "count orders", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": list,
		"total":  total,
		"page":   page,
	})
}

// MyOrders returns the signed-in customer's own order history.
func (o *Orders) MyOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok || !principal.IsCustomer() {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	list, err := o.orders.List(store.ListFilter{CustomerCode: principal.CustomerCode})
	if err != nil {
		writeDomainError(w, "list my orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

// Get returns one order with its items. Customers only see their own
// orders; requests for anyone else's order look like a missing one.
func (o *Orders) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	order, err := o.orders.FindByID(orderID)
	if err != nil {
		writeDomainError(w, "find order", err)
		return
	}
	if order == nil || (principal.IsCustomer() && order.CustomerCode != principal.CustomerCode) {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	// Internal fields stay in the back office.
	if principal.IsCustomer() {
		order.InternalNotes = nil
		order.ProcessedBy = nil
		order.FolderPath = nil
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus transitions an order between waiting, paid and canceled.
// The waiting-to-paid transition also moves the order folder and, when
// configured, archives it.
func (o *Orders) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	var req struct {
		Status        models.OrderStatus `json:"status"`
		InternalNotes *string            `json:"internal_notes"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateNotes(req.InternalNotes); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := o.service.UpdateStatus(principal, orderID, req.Status, req.InternalNotes)
	if err != nil {
		writeDomainError(w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// SetInternalNotes edits the back-office notes on an order without
// touching its status.
func (o *Orders) SetInternalNotes(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	var req struct {
		InternalNotes *string `json:"internal_notes"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateNotes(req.InternalNotes); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := o.orders.SetInternalNotes(orderID, req.InternalNotes)
	if err != nil {
		writeDomainError(w, "set internal notes", err)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}
	writeJSON(w, http.StatusOK, order)
}
