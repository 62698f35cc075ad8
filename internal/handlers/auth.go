package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"fotoproof/internal/middleware"
	"fotoproof/internal/models"
	"fotoproof/internal/session"
	"fotoproof/internal/store"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "FotoProof"

// Auth groups all authentication-related HTTP handlers: admin
// email+password+TOTP login and customer access-code login.
type Auth struct {
	sessions  *session.Store
	users     *store.UserStore
	customers *store.CustomerStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore, customers *store.CustomerStore) *Auth {
	return &Auth{
		sessions:  sessions,
		users:     users,
		customers: customers,
	}
}

// AdminLogin checks email and password and opens an admin session with
// 2FA still pending. The response tells the client whether to continue
// with 2FA setup or verification.
func (a *Auth) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	// TwoFADone starts false; the session yields no principal until the
	// TOTP step completes.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		Kind:   models.PrincipalAdmin,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	next := "verify"
	if user.Needs2FASetup() {
		next = "setup"
	}
	writeJSON(w, http.StatusOK, map[string]any{"two_fa": next})
}

// TwoFASetup generates a fresh TOTP secret for the pending admin
// session and returns it with a QR code PNG for authenticator apps.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.Kind != models.PrincipalAdmin {
		writeError(w, http.StatusUnauthorized, "Sign in first.")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":  key.Secret(),
		"qr_png":  base64.StdEncoding.EncodeToString(qrPNG),
		"otp_url": key.URL(),
	})
}

// TwoFAVerify validates the TOTP code and completes admin
// authentication. On first-time setup it also enables TOTP on the
// account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.Kind != models.PrincipalAdmin {
		writeError(w, http.StatusUnauthorized, "Sign in first.")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "Two-factor authentication is not set up yet.")
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid code. Please try again.")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  models.PrincipalAdmin,
		"email": user.Email,
		"name":  user.DisplayName,
	})
}

// CustomerLogin authenticates a customer by 4-digit access code.
// Inactive customers and unknown codes fail identically.
func (a *Auth) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	code := strings.TrimSpace(req.Code)
	if !models.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Access code must be 4 digits.")
		return
	}

	customer, err := a.customers.FindActiveByCode(code)
	if err != nil {
		slog.Error("customer login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if customer == nil {
		writeError(w, http.StatusUnauthorized, "Invalid access code.")
		return
	}

	if err := a.customers.TouchLastLogin(code); err != nil {
		slog.Warn("stamp last login failed", "code", code, "error", err)
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		Kind:         models.PrincipalCustomer,
		CustomerCode: customer.Code,
		Name:         customer.Name,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind": models.PrincipalCustomer,
		"code": customer.Code,
		"name": customer.Name,
	})
}

// Me reports the identity behind the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	resp := map[string]any{
		"kind": principal.Kind,
		"name": principal.Name,
	}
	if principal.IsCustomer() {
		resp["code"] = principal.CustomerCode
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
