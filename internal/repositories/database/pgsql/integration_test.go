//go:build integration

package pgsql_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/core/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
	"github.com/SscSPs/easysplit_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/easysplit_backend/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const integrationOwner = "integration-owner"

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	svc       *portssvc.ServiceContainer
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = middleware.WithLogger(context.Background(), logger)

	ctr, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("easysplit"),
		postgres.WithUsername("easysplit"),
		postgres.WithPassword("easysplit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = ctr

	connStr, err := ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(connStr, database.MigrateUp, logger))

	s.pool, err = database.NewPgxPool(s.ctx, connStr, true, logger)
	s.Require().NoError(err)
	s.svc = services.NewServiceContainer(pgsql.NewRepositoryProvider(s.pool), metrics.New())
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("Failed to terminate container: %v", err)
		}
	}
}

func (s *PostgresIntegrationSuite) balance(members []domain.MemberWithBalances, name, currency string) decimal.Decimal {
	for _, m := range members {
		if m.Name != name {
			continue
		}
		for _, b := range m.Balances {
			if b.Currency == currency {
				return b.Balance
			}
		}
		return decimal.Zero
	}
	s.FailNow("member not found", name)
	return decimal.Zero
}

func (s *PostgresIntegrationSuite) memberID(members []domain.MemberWithBalances, name string) string {
	for _, m := range members {
		if m.Name == name {
			return m.MemberID
		}
	}
	s.FailNow("member not found", name)
	return ""
}

func (s *PostgresIntegrationSuite) TestRecordLifecycleKeepsBalancesConsistent() {
	group, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Trip", OwnerName: "Owner"}, integrationOwner)
	s.Require().NoError(err)

	members, err := s.svc.Member.ApplyMemberBatch(s.ctx, group.GroupID, dto.MemberBatchRequest{
		Create: []dto.CreateMemberRequest{{Name: "Friend", Permission: domain.PermissionEdit}},
		Update: []dto.UpdateMemberRequest{},
		Delete: []dto.DeleteMemberRequest{},
	}, integrationOwner)
	s.Require().NoError(err)
	s.Require().Len(members, 2)
	owner, friend := s.memberID(members, "Owner"), s.memberID(members, "Friend")

	record, err := s.svc.Record.CreateRecord(s.ctx, group.GroupID, dto.CreateRecordRequest{
		What:        "dinner",
		Amount:      decimal.NewFromInt(600),
		Type:        domain.RecordExpense,
		FromMembers: []dto.AllocationRequest{{MemberID: owner, Amount: decimal.NewFromInt(600)}},
		ToMembers: []dto.AllocationRequest{
			{MemberID: owner, Amount: decimal.NewFromInt(-300)},
			{MemberID: friend, Amount: decimal.NewFromInt(-300)},
		},
	}, integrationOwner)
	s.Require().NoError(err)
	s.Equal("TWD", record.Currency)

	members, err = s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(300).Equal(s.balance(members, "Owner", "TWD")))
	s.True(decimal.NewFromInt(-300).Equal(s.balance(members, "Friend", "TWD")))

	_, err = s.svc.Record.UpdateRecord(s.ctx, group.GroupID, record.RecordID, dto.UpdateRecordRequest{
		ToMembers: dto.Some([]dto.AllocationRequest{{MemberID: friend, Amount: decimal.NewFromInt(-600)}}),
	}, integrationOwner)
	s.Require().NoError(err)

	members, err = s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(600).Equal(s.balance(members, "Owner", "TWD")))
	s.True(decimal.NewFromInt(-600).Equal(s.balance(members, "Friend", "TWD")))

	// friend is referenced by an allocation, so the batch must roll back
	_, err = s.svc.Member.ApplyMemberBatch(s.ctx, group.GroupID, dto.MemberBatchRequest{
		Create: []dto.CreateMemberRequest{{Name: "Ghost", Permission: domain.PermissionView}},
		Update: []dto.UpdateMemberRequest{},
		Delete: []dto.DeleteMemberRequest{{ID: friend}},
	}, integrationOwner)
	s.Require().ErrorIs(err, apperrors.ErrIntegrity)
	members, err = s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.Len(members, 2)

	s.Require().NoError(s.svc.Record.DeleteRecord(s.ctx, group.GroupID, record.RecordID, integrationOwner))
	members, err = s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.True(decimal.Zero.Equal(s.balance(members, "Owner", "TWD")))
	s.True(decimal.Zero.Equal(s.balance(members, "Friend", "TWD")))

	_, err = s.svc.Record.GetRecordByID(s.ctx, group.GroupID, record.RecordID, integrationOwner)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestOwnerCannotBeDeleted() {
	group, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Flat"}, integrationOwner)
	s.Require().NoError(err)
	members, err := s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.Require().Len(members, 1)

	_, err = s.svc.Member.ApplyMemberBatch(s.ctx, group.GroupID, dto.MemberBatchRequest{
		Create: []dto.CreateMemberRequest{},
		Update: []dto.UpdateMemberRequest{},
		Delete: []dto.DeleteMemberRequest{{ID: members[0].MemberID}},
	}, integrationOwner)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *PostgresIntegrationSuite) TestReconcileGroupHealsEveryCurrency() {
	group, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Japan", PrimaryCurrency: "JPY"}, integrationOwner)
	s.Require().NoError(err)
	members, err := s.svc.Member.ListMembers(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	owner := members[0].MemberID

	for _, cur := range []string{"JPY", "USD"} {
		_, err = s.svc.Record.CreateRecord(s.ctx, group.GroupID, dto.CreateRecordRequest{
			What:        "ticket",
			Amount:      decimal.NewFromInt(10),
			Type:        domain.RecordExpense,
			Currency:    cur,
			FromMembers: []dto.AllocationRequest{{MemberID: owner, Amount: decimal.NewFromInt(10)}},
			ToMembers:   []dto.AllocationRequest{{MemberID: owner, Amount: decimal.NewFromInt(-4)}},
		}, integrationOwner)
		s.Require().NoError(err)
	}

	_, err = s.pool.Exec(s.ctx, `UPDATE balances SET balance = 999 WHERE member_id = $1`, owner)
	s.Require().NoError(err)

	balances, err := s.svc.Balance.ReconcileGroup(s.ctx, group.GroupID, integrationOwner)
	s.Require().NoError(err)
	s.Len(balances, 2)
	for _, b := range balances {
		s.True(decimal.NewFromInt(6).Equal(b.Balance), "currency %s", b.Currency)
	}
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}
