package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/handlers"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock GroupService ---
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) GetGroupByID(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}
func (m *MockGroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, userID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}
func (m *MockGroupService) AuthorizeGroupAction(ctx context.Context, userID, groupID string, required domain.MemberPermission) (*domain.Group, error) {
	args := m.Called(ctx, userID, groupID, required)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

var _ portssvc.GroupSvcFacade = (*MockGroupService)(nil)

// --- Mock MemberService ---
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) ListMembers(ctx context.Context, groupID, userID string) ([]domain.MemberWithBalances, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MemberWithBalances), args.Error(1)
}
func (m *MockMemberService) ApplyMemberBatch(ctx context.Context, groupID string, req dto.MemberBatchRequest, userID string) ([]domain.MemberWithBalances, error) {
	args := m.Called(ctx, groupID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MemberWithBalances), args.Error(1)
}

var _ portssvc.MemberSvcFacade = (*MockMemberService)(nil)

// --- Mock RecordService ---
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) GetRecordByID(ctx context.Context, groupID, recordID, userID string) (*domain.Record, error) {
	args := m.Called(ctx, groupID, recordID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}
func (m *MockRecordService) ListRecords(ctx context.Context, groupID, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error) {
	args := m.Called(ctx, groupID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRecordsResponse), args.Error(1)
}
func (m *MockRecordService) CreateRecord(ctx context.Context, groupID string, req dto.CreateRecordRequest, userID string) (*domain.Record, error) {
	args := m.Called(ctx, groupID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}
func (m *MockRecordService) UpdateRecord(ctx context.Context, groupID, recordID string, req dto.UpdateRecordRequest, userID string) (*domain.Record, error) {
	args := m.Called(ctx, groupID, recordID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}
func (m *MockRecordService) DeleteRecord(ctx context.Context, groupID, recordID, userID string) error {
	args := m.Called(ctx, groupID, recordID, userID)
	return args.Error(0)
}

var _ portssvc.RecordSvcFacade = (*MockRecordService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Reconcile(ctx context.Context, tx pgx.Tx, groupID, currency string) ([]domain.Balance, error) {
	args := m.Called(ctx, tx, groupID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}
func (m *MockBalanceService) ReconcileGroup(ctx context.Context, groupID, userID string) ([]domain.Balance, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

// --- Shared suite plumbing ---

const testJWTSecret = "test-secret-for-handlers"

// handlerSuite owns a gin engine guarded by the auth middleware.
type handlerSuite struct {
	suite.Suite
	router *gin.Engine
	v1     *gin.RouterGroup
}

func (s *handlerSuite) setupRouter() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = gin.New()
	s.router.Use(middleware.StructuredLoggingMiddleware(logger))
	s.v1 = s.router.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, ""))
}

// generateTestToken signs an HS256 token for userID with the suite secret.
func (s *handlerSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	s.Require().NoError(err)
	return fmt.Sprintf("Bearer %s", signed)
}

// do sends a JSON request; an empty userID omits the Authorization header.
func (s *handlerSuite) do(method, path string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", s.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
