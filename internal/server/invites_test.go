package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/auth/session"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	invitedomain "github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	subscriptiondomain "github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"go.uber.org/zap"
)

type fakeInviteService struct {
	redeemCalls int
	redeemErr   error
	result      *invitedomain.RedeemResult
}

func (f *fakeInviteService) Create(ctx context.Context, req invitedomain.CreateRequest) (*invitedomain.CreateResult, error) {
	_ = ctx
	_ = req
	return nil, invitedomain.ErrInvalidInvite
}

func (f *fakeInviteService) List(ctx context.Context, schoolID snowflake.ID) ([]invitedomain.Invitation, error) {
	_ = ctx
	_ = schoolID
	return nil, nil
}

func (f *fakeInviteService) Delete(ctx context.Context, schoolID, inviteID snowflake.ID) error {
	_ = ctx
	_ = schoolID
	_ = inviteID
	return nil
}

func (f *fakeInviteService) Redeem(ctx context.Context, req invitedomain.RedeemRequest) (*invitedomain.RedeemResult, error) {
	f.redeemCalls++
	_ = ctx
	_ = req
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	return f.result, nil
}

type fakeSubscriptionService struct {
	ingestErr error
}

func (f *fakeSubscriptionService) IngestWebhook(ctx context.Context, provider string, payload []byte) error {
	_ = ctx
	_ = provider
	_ = payload
	return f.ingestErr
}

func (f *fakeSubscriptionService) Check(ctx context.Context, schoolID snowflake.ID) (subscriptiondomain.Decision, error) {
	_ = ctx
	_ = schoolID
	return subscriptiondomain.Decision{Allowed: true}, nil
}

func (f *fakeSubscriptionService) Override(ctx context.Context, schoolID snowflake.ID, status string) error {
	_ = ctx
	_ = schoolID
	_ = status
	return nil
}

// promauto registers in the default registry, so the counters are created
// once for the whole test binary.
var testMetrics = NewMetrics()

func newTestServer(invites invitedomain.Service, subscriptions subscriptiondomain.Service) *Server {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{Environment: "test"}

	s := &Server{
		engine:          NewEngine(zap.NewNop()),
		cfg:             cfg,
		log:             zap.NewNop(),
		sessions:        session.NewManager(cfg),
		inviteSvc:       invites,
		subscriptionSvc: subscriptions,
		metrics:         testMetrics,
	}
	s.registerPublicRoutes()
	return s
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestRedeemInviteSuccessSetsSessionCookie(t *testing.T) {
	fake := &fakeInviteService{
		result: &invitedomain.RedeemResult{
			UserID:   snowflake.ID(200),
			SchoolID: snowflake.ID(300),
			Role:     "student",
			Session: &authdomain.LoginResult{
				Session:   &authdomain.SessionView{UserID: "200"},
				RawToken:  "session-token",
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}
	s := newTestServer(fake, &fakeSubscriptionService{})

	w := doJSON(s, http.MethodPost, "/api/invites/redeem",
		`{"token":"tok","full_name":"Ana","password":"long-enough"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if fake.redeemCalls != 1 {
		t.Fatalf("expected one redeem call, got %d", fake.redeemCalls)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["user_id"] != "200" || resp["school_id"] != "300" || resp["role"] != "student" {
		t.Fatalf("unexpected response: %v", resp)
	}

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, session.DefaultCookieName+"=session-token") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}

func TestRedeemInviteInvalidTokenPayload(t *testing.T) {
	causes := []error{
		invitedomain.ErrInviteInvalid, // covers unknown, used and expired alike
	}
	for _, cause := range causes {
		s := newTestServer(&fakeInviteService{redeemErr: cause}, &fakeSubscriptionService{})

		w := doJSON(s, http.MethodPost, "/api/invites/redeem",
			`{"token":"tok","full_name":"Ana","password":"long-enough"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if resp.Error.Type != "invite_invalid" {
			t.Fatalf("expected invite_invalid, got %q", resp.Error.Type)
		}
	}
}

func TestRedeemInviteProvisioningFailure(t *testing.T) {
	s := newTestServer(&fakeInviteService{redeemErr: invitedomain.ErrProvisioningFailed}, &fakeSubscriptionService{})

	w := doJSON(s, http.MethodPost, "/api/invites/redeem",
		`{"token":"tok","full_name":"Ana","password":"long-enough"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRedeemInviteEmailRegistered(t *testing.T) {
	s := newTestServer(&fakeInviteService{redeemErr: invitedomain.ErrEmailRegistered}, &fakeSubscriptionService{})

	w := doJSON(s, http.MethodPost, "/api/invites/redeem",
		`{"token":"tok","full_name":"Ana","password":"long-enough"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestBillingWebhookDuplicateAcknowledged(t *testing.T) {
	s := newTestServer(&fakeInviteService{}, &fakeSubscriptionService{
		ingestErr: subscriptiondomain.ErrEventAlreadyProcessed,
	})

	w := doJSON(s, http.MethodPost, "/api/billing/webhooks/stripe",
		`{"id":"evt_1","type":"payment.failed"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBillingWebhookUnknownCustomer(t *testing.T) {
	s := newTestServer(&fakeInviteService{}, &fakeSubscriptionService{
		ingestErr: subscriptiondomain.ErrUnknownSchool,
	})

	w := doJSON(s, http.MethodPost, "/api/billing/webhooks/stripe",
		`{"id":"evt_2","type":"payment.failed"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
