package services_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/core/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	ownerUserID    = "user-owner"
	bindedUserID   = "user-binded"
	viewerUserID   = "user-viewer"
	strangerUserID = "user-stranger"
)

// ledgerSuite seeds a group with an owner-member, a bound member, an unbound
// member and a view-only member, and builds the services over a fake store.
type ledgerSuite struct {
	suite.Suite
	ctx     context.Context
	ledger  *fakeLedger
	metrics *metrics.Metrics
	svc     *portssvc.ServiceContainer

	group     domain.Group
	owner     domain.Member
	binded    domain.Member
	nonBinded domain.Member
	viewer    domain.Member
}

func (s *ledgerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = middleware.WithLogger(context.Background(), logger)
	s.ledger = newFakeLedger()
	s.metrics = metrics.New()
	s.svc = services.NewServiceContainer(s.ledger.provider(), s.metrics)

	now := time.Now().UTC()
	s.group = domain.Group{
		GroupID:          uuid.NewString(),
		OwnerID:          ownerUserID,
		Name:             "Trip",
		PublicPermission: domain.VisibilityLimited,
		PrimaryCurrency:  "TWD",
		AuditFields:      domain.NewAuditFields(ownerUserID, now),
	}
	s.ledger.seedGroup(s.group)

	s.owner = s.seedMember("Owner", strPtr(ownerUserID), domain.PermissionEdit)
	s.binded = s.seedMember("Binded", strPtr(bindedUserID), domain.PermissionEdit)
	s.nonBinded = s.seedMember("NonBinded", nil, domain.PermissionEdit)
	s.viewer = s.seedMember("Viewer", strPtr(viewerUserID), domain.PermissionView)
}

func (s *ledgerSuite) seedMember(name string, userID *string, perm domain.MemberPermission) domain.Member {
	m := domain.Member{
		MemberID:    uuid.NewString(),
		GroupID:     s.group.GroupID,
		UserID:      userID,
		Name:        name,
		Permission:  perm,
		AuditFields: domain.NewAuditFields(ownerUserID, time.Now().UTC()),
	}
	s.ledger.seedMember(m)
	return m
}

// assertBalance checks the cached balance of m in currency.
func (s *ledgerSuite) assertBalance(m domain.Member, currency, want string) {
	got, ok := s.ledger.balanceOf(m.MemberID, currency)
	s.Require().True(ok, "no %s balance row for %s", currency, m.Name)
	s.True(dec(want).Equal(got), "%s %s balance: want %s, got %s", m.Name, currency, want, got.String())
}

func (s *ledgerSuite) createRecordRequest(amount string, from, to []dto.AllocationRequest) dto.CreateRecordRequest {
	return dto.CreateRecordRequest{
		What:        "Dinner",
		Amount:      dec(amount),
		Type:        domain.RecordExpense,
		Currency:    "TWD",
		FromMembers: from,
		ToMembers:   to,
	}
}

func alloc(m domain.Member, amount string) dto.AllocationRequest {
	return dto.AllocationRequest{MemberID: m.MemberID, Amount: dec(amount)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func domainBalance(memberID, currency, amount string) domain.Balance {
	return domain.Balance{MemberID: memberID, Currency: currency, Balance: dec(amount), LastUpdatedAt: time.Now().UTC()}
}
