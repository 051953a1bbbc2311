// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package web

import (
	"net/http"

	"github.com/mediahub/mediahub/internal/auth"
)

const msgResetRequested = "If the email is registered, a reset link has been sent"

type authResponse struct {
	User  auth.PublicIdentity `json:"user"`
	Token string              `json:"token"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.auth.Register(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: res.Identity.Public(), Token: res.Token})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.auth.Login(r.Context(), in.Identifier, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: res.Identity.Public(), Token: res.Token})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in logoutRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.auth.Logout(r.Context(), in.RefreshToken); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Logged out"})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotPasswordRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.resets.RequestReset(r.Context(), in.Email); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgResetRequested})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.resets.CompleteReset(r.Context(), in.Token, in.NewPassword); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Password updated"})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	identities, err := a.auth.ListIdentities(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	users := make([]auth.PublicIdentity, 0, len(identities))
	for _, identity := range identities {
		users = append(users, identity.Public())
	}
	writeJSON(w, http.StatusOK, users)
}
