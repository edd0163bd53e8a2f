package services_test

import (
	"testing"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MemberServiceTestSuite struct {
	ledgerSuite
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}

func emptyBatch() dto.MemberBatchRequest {
	return dto.MemberBatchRequest{
		Create: []dto.CreateMemberRequest{},
		Update: []dto.UpdateMemberRequest{},
		Delete: []dto.DeleteMemberRequest{},
	}
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_CreateUpdateDelete() {
	batch := emptyBatch()
	batch.Create = []dto.CreateMemberRequest{{Name: "Carol", Permission: domain.PermissionView}}
	batch.Update = []dto.UpdateMemberRequest{{ID: s.nonBinded.MemberID, UserID: strPtr("user-dave"), Name: "Dave", Permission: domain.PermissionEdit}}
	batch.Delete = []dto.DeleteMemberRequest{{ID: s.viewer.MemberID}}

	members, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)
	s.Require().NoError(err)

	s.Require().Len(members, 4)
	byName := map[string]domain.MemberWithBalances{}
	for _, m := range members {
		byName[m.Name] = m
		s.NotNil(m.Balances)
	}
	s.Contains(byName, "Carol")
	s.Contains(byName, "Owner")
	s.NotContains(byName, "Viewer")
	dave := byName["Dave"]
	s.Equal(s.nonBinded.MemberID, dave.MemberID)
	s.Require().NotNil(dave.UserID)
	s.Equal("user-dave", *dave.UserID)
	s.Equal(s.group.GroupID, dave.GroupID)
	s.Equal(1, s.ledger.commits)
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_ReturnsBalances() {
	_, err := s.svc.Record.CreateRecord(s.ctx, s.group.GroupID, s.createRecordRequest("600",
		[]dto.AllocationRequest{alloc(s.owner, "600")},
		[]dto.AllocationRequest{alloc(s.owner, "-300"), alloc(s.binded, "-300")},
	), ownerUserID)
	s.Require().NoError(err)

	members, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, emptyBatch(), ownerUserID)
	s.Require().NoError(err)

	for _, m := range members {
		if m.MemberID == s.owner.MemberID {
			s.Require().Len(m.Balances, 1)
			s.Equal("TWD", m.Balances[0].Currency)
			s.True(dec("300").Equal(m.Balances[0].Balance))
		}
	}
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_DeleteOwnerRejected() {
	before := s.ledger.memberSnapshot()
	batch := emptyBatch()
	batch.Create = []dto.CreateMemberRequest{{Name: "Eve", Permission: domain.PermissionView}}
	batch.Delete = []dto.DeleteMemberRequest{{ID: s.nonBinded.MemberID}, {ID: s.owner.MemberID}}

	members, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)

	s.Nil(members)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Contains(err.Error(), "Can't delete group owner")
	s.Equal(before, s.ledger.memberSnapshot())
	s.Zero(s.ledger.begins)
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_UpdateOwnerRejected() {
	before := s.ledger.memberSnapshot()
	batch := emptyBatch()
	batch.Update = []dto.UpdateMemberRequest{{ID: s.owner.MemberID, UserID: strPtr(ownerUserID), Name: "Boss", Permission: domain.PermissionEdit}}

	_, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, bindedUserID)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Contains(err.Error(), "Can't update group owner")
	s.Equal(before, s.ledger.memberSnapshot())
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_UnknownIDs() {
	batch := emptyBatch()
	batch.Delete = []dto.DeleteMemberRequest{{ID: uuid.NewString()}}

	_, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	batch = emptyBatch()
	batch.Update = []dto.UpdateMemberRequest{{ID: uuid.NewString(), Name: "Ghost", Permission: domain.PermissionView}}
	_, err = s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_DuplicateDeleteIDsAreCollapsed() {
	batch := emptyBatch()
	batch.Delete = []dto.DeleteMemberRequest{{ID: s.viewer.MemberID}, {ID: s.viewer.MemberID}}

	members, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)
	s.Require().NoError(err)
	s.Len(members, 3)
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_DuplicateUpdateIDsRejected() {
	batch := emptyBatch()
	batch.Update = []dto.UpdateMemberRequest{
		{ID: s.viewer.MemberID, Name: "A", Permission: domain.PermissionView},
		{ID: s.viewer.MemberID, Name: "B", Permission: domain.PermissionView},
	}

	_, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_ReferencedMemberDeleteRollsBackWholeBatch() {
	_, err := s.svc.Record.CreateRecord(s.ctx, s.group.GroupID, s.createRecordRequest("10",
		[]dto.AllocationRequest{alloc(s.nonBinded, "10")},
		[]dto.AllocationRequest{alloc(s.owner, "-10")},
	), ownerUserID)
	s.Require().NoError(err)
	before := s.ledger.memberSnapshot()

	batch := emptyBatch()
	batch.Create = []dto.CreateMemberRequest{{Name: "Frank", Permission: domain.PermissionEdit}}
	batch.Delete = []dto.DeleteMemberRequest{{ID: s.nonBinded.MemberID}}

	_, err = s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, batch, ownerUserID)

	s.ErrorIs(err, apperrors.ErrIntegrity)
	s.Equal(before, s.ledger.memberSnapshot())
}

func (s *MemberServiceTestSuite) TestApplyMemberBatch_Authorization() {
	_, err := s.svc.Member.ApplyMemberBatch(s.ctx, s.group.GroupID, emptyBatch(), viewerUserID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.svc.Member.ApplyMemberBatch(s.ctx, uuid.NewString(), emptyBatch(), ownerUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MemberServiceTestSuite) TestListMembers() {
	members, err := s.svc.Member.ListMembers(s.ctx, s.group.GroupID, viewerUserID)
	s.Require().NoError(err)
	s.Len(members, 4)
	s.Equal(s.owner.MemberID, members[0].MemberID)
	s.Empty(members[0].Balances)

	_, err = s.svc.Member.ListMembers(s.ctx, s.group.GroupID, strangerUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}
