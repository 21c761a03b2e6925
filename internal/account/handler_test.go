package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/documents"
	"interview-backend/internal/interviews"
	"interview-backend/internal/reports"
	"interview-backend/internal/usage"
)

type accountFixture struct {
	docRepo       *documents.MemoryRepo
	interviewRepo *interviews.MemoryRepo
	reportRepo    *reports.MemoryRepo
	usageSvc      *usage.Service
	svc           *Service
}

func newAccountFixture() *accountFixture {
	docRepo := documents.NewMemoryRepo()
	interviewRepo := interviews.NewMemoryRepo()
	reportRepo := reports.NewMemoryRepo()
	usageSvc := usage.NewService(10)
	return &accountFixture{
		docRepo:       docRepo,
		interviewRepo: interviewRepo,
		reportRepo:    reportRepo,
		usageSvc:      usageSvc,
		svc:           NewService(docRepo, interviewRepo, reportRepo, usageSvc),
	}
}

func newAccountRouter(svc *Service, userID string, isGuest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Set("isGuest", isGuest)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func seedOwnedData(t *testing.T, fx *accountFixture, userID string) {
	t.Helper()
	ctx := context.Background()
	doc := documents.Document{
		ID:        "doc-" + userID,
		UserID:    userID,
		Kind:      documents.KindResume,
		FileName:  "resume.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 123,
		CreatedAt: time.Now().UTC(),
	}
	if err := fx.docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	session := interviews.Session{
		ID:        "session-" + userID,
		UserID:    userID,
		Status:    interviews.StatusCompleted,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := fx.interviewRepo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	artifact := reports.Artifact{
		ID:        "artifact-" + userID,
		UserID:    userID,
		SessionID: session.ID,
		Format:    reports.FormatMarkdown,
		FileName:  "interview_report.md",
		CreatedAt: time.Now().UTC(),
	}
	if err := fx.reportRepo.Create(ctx, artifact); err != nil {
		t.Fatalf("create artifact: %v", err)
	}
}

func TestClaimGuestMigratesData(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "user-1", false)

	guestID := "11111111-1111-1111-1111-111111111111"
	seedOwnedData(t, fx, "guest:"+guestID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result ClaimResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.MigratedDocuments != 1 || result.MigratedInterviews != 1 || result.MigratedArtifacts != 1 {
		t.Fatalf("unexpected claim result: %+v", result)
	}

	ctx := context.Background()
	docs, err := fx.docRepo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 migrated doc, got %d", len(docs))
	}
	sessions, err := fx.interviewRepo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 migrated session, got %d", len(sessions))
	}
	artifacts, err := fx.reportRepo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list artifacts: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 migrated artifact, got %d", len(artifacts))
	}

	leftovers, err := fx.interviewRepo.ListByUser(ctx, "guest:"+guestID, 10, 0)
	if err != nil {
		t.Fatalf("list guest sessions: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected guest sessions to move, %d left", len(leftovers))
	}
}

func TestClaimGuestSecondCallFindsNothing(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "user-1", false)

	guestID := "22222222-2222-2222-2222-222222222222"
	seedOwnedData(t, fx, "guest:"+guestID)

	for i, wantMigrated := range []int{1, 0} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
		req.Header.Set("X-Guest-Id", guestID)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i, resp.Code)
		}
		var result ClaimResult
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatalf("call %d: decode response: %v", i, err)
		}
		if result.MigratedInterviews != wantMigrated {
			t.Fatalf("call %d: expected %d migrated interviews, got %d", i, wantMigrated, result.MigratedInterviews)
		}
	}
}

func TestClaimGuestRejectsGuestCaller(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "guest:33333333-3333-3333-3333-333333333333", true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "33333333-3333-3333-3333-333333333333")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestClaimGuestRequiresHeader(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestClaimGuestRejectsMalformedGuestID(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "not-a-uuid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPurgeDeletesOwnedData(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "user-1", false)

	ctx := context.Background()
	seedOwnedData(t, fx, "user-1")
	seedOwnedData(t, fx, "user-2")
	if _, err := fx.usageSvc.Consume(ctx, "user-1", 1); err != nil {
		t.Fatalf("consume usage: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result PurgeResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.DeletedDocuments != 1 || result.DeletedInterviews != 1 || result.DeletedArtifacts != 1 {
		t.Fatalf("unexpected purge result: %+v", result)
	}

	sessions, err := fx.interviewRepo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected sessions to be purged, %d left", len(sessions))
	}
	otherSessions, err := fx.interviewRepo.ListByUser(ctx, "user-2", 10, 0)
	if err != nil {
		t.Fatalf("list other sessions: %v", err)
	}
	if len(otherSessions) != 1 {
		t.Fatalf("expected other user's sessions untouched, got %d", len(otherSessions))
	}

	u, err := fx.usageSvc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected usage reset to 0, got %d", u.Used)
	}
}

func TestPurgeRequiresIdentity(t *testing.T) {
	fx := newAccountFixture()
	router := newAccountRouter(fx.svc, "", false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}
