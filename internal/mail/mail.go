// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail sends order notification emails over SMTP. Sending is
// always best-effort: failures are logged and never surface to the
// order pipeline, and an unconfigured mailer silently does nothing.
package mail

import (
	"fmt"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"fotoproof/internal/config"
	"fotoproof/internal/models"
)

// Mailer sends plaintext notifications for order events.
type Mailer struct {
	cfg *config.Config
}

// New creates a Mailer. The returned Mailer is usable even when SMTP is
// not configured; it just drops every message.
func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendOrderConfirmation emails the customer that their order was
// received, with the admin address in copy. Customers without an email
// address are skipped. Safe to call on a goroutine.
func (m *Mailer) SendOrderConfirmation(order *models.Order, customerEmail *string) {
	subject := fmt.Sprintf("Order received — %d photos", order.ItemCount)
	m.deliver(order, customerEmail, subject, confirmationBody(order))
}

// SendStatusUpdate emails the customer about a status change. Safe to
// call on a goroutine.
func (m *Mailer) SendStatusUpdate(order *models.Order, customerEmail *string) {
	subject := fmt.Sprintf("Order update — %s", order.Status)
	m.deliver(order, customerEmail, subject, statusBody(order))
}

func (m *Mailer) deliver(order *models.Order, customerEmail *string, subject, body string) {
	if !m.cfg.MailConfigured() {
		return
	}
	if customerEmail == nil || *customerEmail == "" {
		slog.Debug("skipping order email, customer has no address",
			"order_id", order.ID, "customer_code", order.CustomerCode)
		return
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.MailFrom); err != nil {
		slog.Warn("invalid mail from address", "error", err)
		return
	}
	if err := msg.To(*customerEmail); err != nil {
		slog.Warn("invalid customer email address",
			"order_id", order.ID, "error", err)
		return
	}
	if m.cfg.AdminEmail != "" {
		if err := msg.Cc(m.cfg.AdminEmail); err != nil {
			slog.Warn("invalid admin email address", "error", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.SMTPUser),
		gomail.WithPassword(m.cfg.SMTPPassword),
	}
	client, err := gomail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		slog.Warn("failed to build smtp client", "error", err)
		return
	}

	if err := client.DialAndSend(msg); err != nil {
		slog.Warn("failed to send order email",
			"order_id", order.ID, "subject", subject, "error", err)
		return
	}
	slog.Info("order email sent", "order_id", order.ID, "subject", subject)
}

func confirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "We received your order of %d photos.\n\n", order.ItemCount)

	var lastCategory string
	for _, it := range order.Items {
		if it.CategoryName != lastCategory {
			fmt.Fprintf(&b, "%s:\n", it.CategoryName)
			lastCategory = it.CategoryName
		}
		fmt.Fprintf(&b, "  %s — %s\n", it.ImageFileName, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n", order.TotalPrice.StringFixed(2))
	b.WriteString("We will contact you once the order is processed.\n")
	return b.String()
}

func statusBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", order.CustomerName)
	switch order.Status {
	case models.StatusPaid:
		fmt.Fprintf(&b, "Your order of %d photos is marked as paid. Thank you!\n", order.ItemCount)
	case models.StatusCanceled:
		fmt.Fprintf(&b, "Your order of %d photos was canceled.\n", order.ItemCount)
	default:
		fmt.Fprintf(&b, "Your order of %d photos is now %s.\n", order.ItemCount, order.Status)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))
	return b.String()
}
