package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/api/middleware"
	"github.com/scholarly-app/scholarly-backend/internal/accesscontrol"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
)

type stubAccessControlService struct {
	promote   func(context.Context, uuid.UUID, uuid.UUID) (*profiles.ProfileDTO, error)
	demote    func(context.Context, uuid.UUID, uuid.UUID) (*profiles.ProfileDTO, error)
	setStatus func(context.Context, uuid.UUID, uuid.UUID, enums.AccountStatus) (*profiles.ProfileDTO, error)
	reset     func(context.Context, uuid.UUID, uuid.UUID) error
	list      func(context.Context, uuid.UUID, accesscontrol.ListUsersRequest) (*profiles.ListPage, error)
}

func (s stubAccessControlService) PromoteToAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.promote(ctx, actorID, targetID)
}

func (s stubAccessControlService) DemoteAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.demote(ctx, actorID, targetID)
}

func (s stubAccessControlService) SetAccountStatus(ctx context.Context, actorID, targetID uuid.UUID, status enums.AccountStatus) (*profiles.ProfileDTO, error) {
	return s.setStatus(ctx, actorID, targetID, status)
}

func (s stubAccessControlService) RequestPasswordReset(ctx context.Context, actorID, targetID uuid.UUID) error {
	return s.reset(ctx, actorID, targetID)
}

func (s stubAccessControlService) ListUsers(ctx context.Context, actorID uuid.UUID, req accesscontrol.ListUsersRequest) (*profiles.ListPage, error) {
	return s.list(ctx, actorID, req)
}

func requestWithActor(r *http.Request, actorID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithProfileID(r.Context(), actorID.String()))
}

func requestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminPromoteForwardsActorAndTarget(t *testing.T) {
	actorID := uuid.New()
	targetID := uuid.New()

	handler := AdminPromote(stubAccessControlService{
		promote: func(ctx context.Context, gotActor, gotTarget uuid.UUID) (*profiles.ProfileDTO, error) {
			if gotActor != actorID {
				t.Fatalf("expected actor %s got %s", actorID, gotActor)
			}
			if gotTarget != targetID {
				t.Fatalf("expected target %s got %s", targetID, gotTarget)
			}
			return &profiles.ProfileDTO{ID: targetID, Role: enums.RoleAdmin}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/users/"+targetID.String()+"/promote", nil)
	req = requestWithActor(req, actorID)
	req = requestWithPathParam(req, "profileId", targetID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data profiles.ProfileDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role got %s", envelope.Data.Role)
	}
}

func TestAdminPromoteRejectsInvalidTarget(t *testing.T) {
	handler := AdminPromote(stubAccessControlService{
		promote: func(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/users/not-a-uuid/promote", nil)
	req = requestWithActor(req, uuid.New())
	req = requestWithPathParam(req, "profileId", "not-a-uuid")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminPromoteRequiresProfileContext(t *testing.T) {
	handler := AdminPromote(stubAccessControlService{
		promote: func(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	targetID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/users/"+targetID.String()+"/promote", nil)
	req = requestWithPathParam(req, "profileId", targetID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminSetStatusDecodesBody(t *testing.T) {
	actorID := uuid.New()
	targetID := uuid.New()

	handler := AdminSetStatus(stubAccessControlService{
		setStatus: func(ctx context.Context, gotActor, gotTarget uuid.UUID, status enums.AccountStatus) (*profiles.ProfileDTO, error) {
			if status != enums.AccountStatusBanned {
				t.Fatalf("expected banned got %s", status)
			}
			return &profiles.ProfileDTO{ID: gotTarget, Status: enums.AccountStatusBanned}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/users/"+targetID.String()+"/status", bytes.NewReader([]byte(`{"status":"banned"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithActor(req, actorID)
	req = requestWithPathParam(req, "profileId", targetID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminSetStatusPropagatesForbidden(t *testing.T) {
	handler := AdminSetStatus(stubAccessControlService{
		setStatus: func(ctx context.Context, actorID, targetID uuid.UUID, status enums.AccountStatus) (*profiles.ProfileDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "super admin accounts cannot be targeted")
		},
	}, nil)

	targetID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/users/"+targetID.String()+"/status", bytes.NewReader([]byte(`{"status":"archived"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithActor(req, uuid.New())
	req = requestWithPathParam(req, "profileId", targetID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminListUsersForwardsQueryFilters(t *testing.T) {
	actorID := uuid.New()

	handler := AdminListUsers(stubAccessControlService{
		list: func(ctx context.Context, gotActor uuid.UUID, req accesscontrol.ListUsersRequest) (*profiles.ListPage, error) {
			if req.Status != "active" || req.UserType != "student" {
				t.Fatalf("unexpected filters %+v", req)
			}
			if req.Limit != 25 || req.Cursor != "abc" {
				t.Fatalf("unexpected paging %+v", req)
			}
			return &profiles.ListPage{NextCursor: "def"}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users?status=active&user_type=student&limit=25&cursor=abc", nil)
	req = requestWithActor(req, actorID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data profiles.ListPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "def" {
		t.Fatalf("expected next cursor def got %s", envelope.Data.NextCursor)
	}
}

func TestProfileResetPasswordTargetsSelf(t *testing.T) {
	actorID := uuid.New()
	var gotActor, gotTarget uuid.UUID
	svc := stubAccessControlService{
		reset: func(_ context.Context, a, tgt uuid.UUID) error {
			gotActor, gotTarget = a, tgt
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/profile/reset-password", nil)
	req = requestWithActor(req, actorID)
	resp := httptest.NewRecorder()
	ProfileResetPassword(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotActor != actorID || gotTarget != actorID {
		t.Fatalf("expected actor and target to both be %s, got %s/%s", actorID, gotActor, gotTarget)
	}
}
