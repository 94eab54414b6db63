package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/internal/lifecycle"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
)

type stubLifecycleService struct {
	signUp      func(context.Context, lifecycle.SignUpRequest) (*lifecycle.SignUpResponse, error)
	signIn      func(context.Context, lifecycle.SignInRequest) (*lifecycle.SignInResponse, error)
	confirm     func(context.Context, lifecycle.ConfirmEmailRequest) (*lifecycle.ConfirmEmailResponse, error)
	resend      func(context.Context, lifecycle.ResendConfirmationRequest) error
	complete    func(context.Context, uuid.UUID, lifecycle.CompleteProfileRequest) (*profiles.ProfileDTO, error)
	update      func(context.Context, uuid.UUID, uuid.UUID, lifecycle.UpdateProfileRequest) (*profiles.ProfileDTO, error)
	own         func(context.Context, uuid.UUID) (*profiles.ProfileDTO, error)
}

func (s stubLifecycleService) SignUp(ctx context.Context, req lifecycle.SignUpRequest) (*lifecycle.SignUpResponse, error) {
	return s.signUp(ctx, req)
}

func (s stubLifecycleService) ConfirmEmail(ctx context.Context, req lifecycle.ConfirmEmailRequest) (*lifecycle.ConfirmEmailResponse, error) {
	return s.confirm(ctx, req)
}

func (s stubLifecycleService) ResendConfirmation(ctx context.Context, req lifecycle.ResendConfirmationRequest) error {
	return s.resend(ctx, req)
}

func (s stubLifecycleService) SignIn(ctx context.Context, req lifecycle.SignInRequest) (*lifecycle.SignInResponse, error) {
	return s.signIn(ctx, req)
}

func (s stubLifecycleService) CompleteProfile(ctx context.Context, profileID uuid.UUID, req lifecycle.CompleteProfileRequest) (*profiles.ProfileDTO, error) {
	return s.complete(ctx, profileID, req)
}

func (s stubLifecycleService) UpdateProfile(ctx context.Context, actorID, targetID uuid.UUID, req lifecycle.UpdateProfileRequest) (*profiles.ProfileDTO, error) {
	return s.update(ctx, actorID, targetID, req)
}

func (s stubLifecycleService) GetOwnProfile(ctx context.Context, profileID uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.own(ctx, profileID)
}

func TestAuthSignUpSuccess(t *testing.T) {
	accountID := uuid.New()
	profileID := uuid.New()
	handler := AuthSignUp(stubLifecycleService{
		signUp: func(ctx context.Context, req lifecycle.SignUpRequest) (*lifecycle.SignUpResponse, error) {
			if req.Email != "new@example.com" {
				t.Fatalf("unexpected email %s", req.Email)
			}
			return &lifecycle.SignUpResponse{
				AccountID: accountID,
				ProfileID: profileID,
				State:     enums.LifecyclePendingVerification,
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(`{"email":"new@example.com","password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data lifecycle.SignUpResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.State != enums.LifecyclePendingVerification {
		t.Fatalf("expected pending_verification got %s", envelope.Data.State)
	}
	if envelope.Data.ProfileID != profileID {
		t.Fatalf("expected profile id %s got %s", profileID, envelope.Data.ProfileID)
	}
}

func TestAuthSignUpRejectsMalformedBody(t *testing.T) {
	handler := AuthSignUp(stubLifecycleService{
		signUp: func(ctx context.Context, req lifecycle.SignUpRequest) (*lifecycle.SignUpResponse, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(`{"email":"bad"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginPropagatesServiceError(t *testing.T) {
	handler := AuthLogin(stubLifecycleService{
		signIn: func(ctx context.Context, req lifecycle.SignInRequest) (*lifecycle.SignInResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is banned")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"banned@example.com","password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeForbidden) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestAuthLoginReturnsTokensAndState(t *testing.T) {
	handler := AuthLogin(stubLifecycleService{
		signIn: func(ctx context.Context, req lifecycle.SignInRequest) (*lifecycle.SignInResponse, error) {
			return &lifecycle.SignInResponse{
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
				State:        enums.LifecycleProfileIncomplete,
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"user@example.com","password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data lifecycle.SignInResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected access token got %s", envelope.Data.AccessToken)
	}
	if envelope.Data.State != enums.LifecycleProfileIncomplete {
		t.Fatalf("expected profile_incomplete got %s", envelope.Data.State)
	}
}

func TestAuthResendConfirmationUniformResponse(t *testing.T) {
	handler := AuthResendConfirmation(stubLifecycleService{
		resend: func(ctx context.Context, req lifecycle.ResendConfirmationRequest) error {
			return nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/resend-confirmation", bytes.NewReader([]byte(`{"email":"ghost@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "check your email" {
		t.Fatalf("unexpected status %q", envelope.Data["status"])
	}
}
