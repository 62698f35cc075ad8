// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package orders implements the order lifecycle: price-resolved
// creation, on-disk folder materialization, and the waiting→paid
// transition. The database record is the commit point; folders and
// emails follow it best-effort.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"fotoproof/internal/mail"
	"fotoproof/internal/models"
	"fotoproof/internal/resolver"
	"fotoproof/internal/storage"
	"fotoproof/internal/store"
)

// Service coordinates order creation and status transitions.
type Service struct {
	orders     *store.OrderStore
	customers  *store.CustomerStore
	categories *store.CategoryStore
	resolver   *resolver.Resolver
	folders    *Folders
	mailer     *mail.Mailer

	// archive is nil when no S3 endpoint is configured.
	archive *storage.ArchiveClient
}

// NewService wires an order Service. archive may be nil.
func NewService(
	orders *store.OrderStore,
	customers *store.CustomerStore,
	categories *store.CategoryStore,
	res *resolver.Resolver,
	folders *Folders,
	mailer *mail.Mailer,
	archive *storage.ArchiveClient,
) *Service {
	return &Service{
		orders:     orders,
		customers:  customers,
		categories: categories,
		resolver:   res,
		folders:    folders,
		mailer:     mailer,
		archive:    archive,
	}
}

// ItemInput selects one image by its category-relative path, e.g.
// "weddings/smith/IMG_0042.jpg".
type ItemInput struct {
	ImagePath string `json:"image_path"`
}

// CreateInput is a customer's order request.
type CreateInput struct {
	Items           []ItemInput `json:"items"`
	Notes           *string     `json:"notes"`
	ShippingAddress *string     `json:"shipping_address"`
	PaymentMethod   *string     `json:"payment_method"`
}

// CreateResult is a committed order plus any post-commit warning. A
// non-empty FolderWarning means the record exists but the folder could
// not be materialized and needs manual attention.
type CreateResult struct {
	Order         *models.Order `json:"order"`
	FolderWarning string        `json:"folder_warning,omitempty"`
}

// Create places an order for the customer principal. Every item's
// category must be granted to the customer; the effective price (with
// any override) is snapshotted into the line item. Once the record
// commits, the folder is materialized under waiting/ and a confirmation
// email goes out, neither of which can fail the order anymore.
func (s *Service) Create(principal models.Principal, input CreateInput) (*CreateResult, error) {
	if !principal.IsCustomer() {
		return nil, fmt.Errorf("create order: %w: customer login required", models.ErrForbidden)
	}
	customer, err := s.customers.FindActiveByCode(principal.CustomerCode)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("create order: %w: unknown access code", models.ErrForbidden)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("create order: %w: order has no items", models.ErrValidation)
	}

	items, err := s.resolveItems(principal, input.Items)
	if err != nil {
		return nil, err
	}

	created, err := s.orders.Create(&models.Order{
		CustomerCode:    customer.Code,
		CustomerName:    customer.Name,
		Items:           items,
		Notes:           input.Notes,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed. Folder and email failures are warnings
	// from here on, never rollbacks.
	result := &CreateResult{Order: created}
	folder, err := s.folders.Create(created)
	if err != nil {
		slog.Warn("order folder materialization failed",
			"order_id", created.ID, "error", err)
		result.FolderWarning = "order saved, but the order folder could not be created"
	} else {
		created.FolderPath = &folder
		if err := s.orders.SetFolderPath(created.ID, folder); err != nil {
			slog.Warn("failed to record order folder path",
				"order_id", created.ID, "error", err)
		}
	}

	go s.mailer.SendOrderConfirmation(created, customer.Email)

	slog.Info("order created",
		"order_id", created.ID,
		"customer_code", created.CustomerCode,
		"items", len(created.Items),
		"total", created.TotalPrice)
	return result, nil
}

// resolveItems checks access per item and snapshots effective prices.
func (s *Service) resolveItems(principal models.Principal, inputs []ItemInput) ([]models.OrderItem, error) {
	// Categories repeat across items; resolve each path once.
	type resolved struct {
		category *models.Category
		access   resolver.Access
	}
	cache := make(map[string]resolved)

	var items []models.OrderItem
	for _, in := range inputs {
		categoryPath := path.Dir(in.ImagePath)
		fileName := path.Base(in.ImagePath)
		if in.ImagePath == "" || categoryPath == "." || fileName == "." {
			return nil, fmt.Errorf("create order: %w: invalid image path %q", models.ErrValidation, in.ImagePath)
		}

		r, ok := cache[categoryPath]
		if !ok {
			category, err := s.categories.FindByPath(categoryPath)
			if err != nil {
				return nil, fmt.Errorf("create order: %w", err)
			}
			if category == nil || !category.Active {
				return nil, fmt.Errorf("create order: category %q: %w", categoryPath, models.ErrNotFound)
			}
			access, err := s.resolver.ResolveAccess(principal, category)
			if err != nil {
				return nil, fmt.Errorf("create order: %w", err)
			}
			r = resolved{category: category, access: access}
			cache[categoryPath] = r
		}
		if !r.access.Granted {
			return nil, fmt.Errorf("create order: category %q: %w", categoryPath, models.ErrForbidden)
		}

		items = append(items, models.OrderItem{
			CategoryID:    r.category.ID,
			CategoryName:  r.category.Name,
			ImagePath:     in.ImagePath,
			ImageFileName: fileName,
			Price:         r.access.EffectivePrice,
		})
	}
	return items, nil
}

// UpdateStatus transitions an order, admin only. Moving waiting→paid
// also moves the folder on disk; a missing folder is logged as an
// observable inconsistency and the logical update still proceeds.
// Canceling stamps canceled_at without touching the filesystem.
func (s *Service) UpdateStatus(principal models.Principal, orderID uuid.UUID, status models.OrderStatus, internalNotes *string) (*models.Order, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("update order status: %w: admin login required", models.ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("update order status: %w: unknown status %q", models.ErrValidation, status)
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("update order status: %w", models.ErrNotFound)
	}

	if status == models.StatusPaid && order.Status == models.StatusWaiting {
		s.moveFolderToPaid(order)
	}

	processedBy := principal.UserID
	updated, err := s.orders.UpdateStatus(orderID, status, &processedBy)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if internalNotes != nil {
		updated, err = s.orders.SetInternalNotes(orderID, internalNotes)
		if err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
	}
	updated.Items = order.Items
	updated.ItemCount = order.ItemCount

	if customer, err := s.customers.FindByCode(updated.CustomerCode); err == nil && customer != nil {
		go s.mailer.SendStatusUpdate(updated, customer.Email)
	}

	slog.Info("order status updated",
		"order_id", orderID, "status", status, "processed_by", processedBy)
	return updated, nil
}

// moveFolderToPaid performs the on-disk half of waiting→paid. Failures
// leave the database as the source of truth and are only logged.
func (s *Service) moveFolderToPaid(order *models.Order) {
	moved, err := s.folders.MoveToPaid(order)
	if err != nil {
		slog.Warn("order folder move failed, record updated anyway",
			"order_id", order.ID, "error", err)
		return
	}
	order.FolderPath = &moved
	if err := s.orders.SetFolderPath(order.ID, moved); err != nil {
		slog.Warn("failed to record moved folder path",
			"order_id", order.ID, "error", err)
	}

	if s.archive != nil {
		dir, err := s.folders.layout.OrderFolder(moved)
		if err != nil {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := s.archive.ArchiveDir(ctx, dir, "orders/"+path.Base(moved)); err != nil {
				slog.Warn("order archive upload failed",
					"order_id", order.ID, "error", err)
			}
		}()
	}
}
