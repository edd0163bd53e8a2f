package mapping

import (
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:    d.MemberID,
		GroupID:     d.GroupID,
		UserID:      d.UserID,
		Name:        d.Name,
		Permission:  string(d.Permission),
		AuditFields: models.AuditFields(d.AuditFields),
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:    m.MemberID,
		GroupID:     m.GroupID,
		UserID:      m.UserID,
		Name:        m.Name,
		Permission:  domain.MemberPermission(m.Permission),
		AuditFields: domain.AuditFields(m.AuditFields),
	}
}

// ToDomainMemberSlice converts a slice of model Members to domain Members
func ToDomainMemberSlice(ms []models.Member) []domain.Member {
	out := make([]domain.Member, len(ms))
	for i, m := range ms {
		out[i] = ToDomainMember(m)
	}
	return out
}
