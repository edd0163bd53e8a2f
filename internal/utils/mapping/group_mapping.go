package mapping

import (
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/models"
)

// ToModelGroup converts a domain Group to a model Group
func ToModelGroup(d domain.Group) models.Group {
	return models.Group{
		GroupID:          d.GroupID,
		OwnerID:          d.OwnerID,
		Name:             d.Name,
		Note:             d.Note,
		PublicPermission: string(d.PublicPermission),
		PrimaryCurrency:  d.PrimaryCurrency,
		AuditFields:      models.AuditFields(d.AuditFields),
	}
}

// ToDomainGroup converts a model Group to a domain Group
func ToDomainGroup(m models.Group) domain.Group {
	return domain.Group{
		GroupID:          m.GroupID,
		OwnerID:          m.OwnerID,
		Name:             m.Name,
		Note:             m.Note,
		PublicPermission: domain.GroupVisibility(m.PublicPermission),
		PrimaryCurrency:  m.PrimaryCurrency,
		AuditFields:      domain.AuditFields(m.AuditFields),
	}
}

// ToDomainGroupSlice converts a slice of model Groups to domain Groups
func ToDomainGroupSlice(ms []models.Group) []domain.Group {
	out := make([]domain.Group, len(ms))
	for i, m := range ms {
		out[i] = ToDomainGroup(m)
	}
	return out
}
