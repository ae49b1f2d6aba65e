package devserver

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"
)

// envelope mirrors the production identity service's response shape so the
// client cannot tell the two apart.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const otpTTL = 10 * time.Minute

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.fail(w, http.StatusBadRequest, "malformed form data")
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if email == "" || password == "" {
		s.fail(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !s.domainAllowed(email) {
		s.fail(w, http.StatusBadRequest, "Please use your campus email address")
		return
	}
	if password != confirm {
		s.fail(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	hashed, err := s.bcrypt.Hash(password)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	u, err := s.store.CreateUser(user{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(r.FormValue("first_name")),
		LastName:     strings.TrimSpace(r.FormValue("last_name")),
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		Bio:          r.FormValue("bio"),
	})
	if errors.Is(err, errDuplicateEmail) {
		s.fail(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	code := s.issueOTP(email, "signup")
	slog.Info("signup accepted", "user_id", u.ID, "email", email)

	s.respond(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Account created, check your email for the verification code",
		Data:    s.otpPayload(code),
	})
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		s.fail(w, http.StatusBadRequest, "email is required")
		return
	}
	if !lo.Contains([]string{"signup", "login", "password_reset"}, req.Purpose) {
		s.fail(w, http.StatusBadRequest, "unknown purpose")
		return
	}

	if req.Purpose != "signup" {
		if _, err := s.store.GetUser(req.Email); err != nil {
			s.fail(w, http.StatusNotFound, "No account found with this email")
			return
		}
	}

	code := s.issueOTP(req.Email, req.Purpose)

	s.respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "OTP sent to your email",
		Data:    s.otpPayload(code),
	})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email   string `json:"email"`
		OTPCode string `json:"otp_code"`
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Purpose == "" {
		req.Purpose = "signup"
	}

	if err := s.store.ConsumeChallenge(req.Email, req.Purpose, req.OTPCode); err != nil {
		s.fail(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}

	if req.Purpose == "signup" {
		s.store.MarkVerified(req.Email)
	}

	u, err := s.store.GetUser(req.Email)
	if err != nil {
		s.fail(w, http.StatusNotFound, "No account found with this email")
		return
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "OTP verified",
		Data:    map[string]any{"access_token": token},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		OTPCode  string `json:"otp_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.store.GetUser(req.Email)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	switch {
	case req.OTPCode != "":
		if err := s.store.ConsumeChallenge(req.Email, "login", req.OTPCode); err != nil {
			s.fail(w, http.StatusUnauthorized, "Invalid or expired OTP")
			return
		}
	case req.Password != "":
		if !s.bcrypt.Verify(string(u.PasswordHash), req.Password) {
			s.fail(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
	default:
		s.fail(w, http.StatusBadRequest, "password or otp_code is required")
		return
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data:    map[string]any{"access_token": token},
	})
}

func (s *Server) issueOTP(email, purpose string) string {
	code := randomDigits(s.cfg.GetInt("modules.verification.code_length"))
	s.store.PutChallenge(email, purpose, code, otpTTL)

	slog.Info("one-time code issued", "email", email, "purpose", purpose, "code", code)

	return code
}

// otpPayload echoes the code back in the response body when dev echo is on,
// standing in for the email the production service would send.
func (s *Server) otpPayload(code string) map[string]any {
	if !s.cfg.GetBool("devserver.echo_otp") {
		return nil
	}
	return map[string]any{"otp_code": code}
}

func (s *Server) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]

	return lo.Contains(
		lo.Map(s.cfg.GetArray("modules.verification.allowed_domains"), func(d string, _ int) string {
			return strings.ToLower(d)
		}),
		domain,
	)
}

func randomDigits(n int) string {
	if n < 1 {
		n = 6
	}

	var b strings.Builder
	for range n {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(fmt.Sprintf("devserver: rand failed: %v", err))
		}
		b.WriteString(d.String())
	}
	return b.String()
}

func (s *Server) respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, envelope{Success: false, Error: msg})
}
