package mapping

import (
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/models"
)

// ToModelRecord converts a domain Record to a model Record. Allocations are mapped separately.
func ToModelRecord(d domain.Record) models.Record {
	return models.Record{
		RecordID:     d.RecordID,
		GroupID:      d.GroupID,
		What:         d.What,
		Amount:       d.Amount,
		Type:         string(d.Type),
		Currency:     d.Currency,
		ExchangeRate: d.ExchangeRate,
		Note:         d.Note,
		IsEqualSplit: d.IsEqualSplit,
		AuditFields:  models.AuditFields(d.AuditFields),
	}
}

// ToDomainRecord converts a model Record to a domain Record without allocations.
func ToDomainRecord(m models.Record) domain.Record {
	return domain.Record{
		RecordID:     m.RecordID,
		GroupID:      m.GroupID,
		What:         m.What,
		Amount:       m.Amount,
		Type:         domain.RecordType(m.Type),
		Currency:     m.Currency,
		ExchangeRate: m.ExchangeRate,
		Note:         m.Note,
		IsEqualSplit: m.IsEqualSplit,
		AuditFields:  domain.AuditFields(m.AuditFields),
	}
}

// ToModelAllocation converts a domain Allocation to a model Allocation
func ToModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID: d.AllocationID,
		RecordID:     d.RecordID,
		MemberID:     d.MemberID,
		Kind:         string(d.Kind),
		Amount:       d.Amount,
		Position:     d.Position,
	}
}

// ToDomainAllocation converts a model Allocation to a domain Allocation
func ToDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID: m.AllocationID,
		RecordID:     m.RecordID,
		MemberID:     m.MemberID,
		Kind:         domain.AllocationKind(m.Kind),
		Amount:       m.Amount,
		Position:     m.Position,
	}
}

// AttachAllocations splits allocations by kind onto the record they belong to.
// Allocations are expected in position order.
func AttachAllocations(record *domain.Record, allocations []domain.Allocation) {
	record.From = make([]domain.Allocation, 0)
	record.To = make([]domain.Allocation, 0)
	for _, a := range allocations {
		if a.RecordID != record.RecordID {
			continue
		}
		switch a.Kind {
		case domain.AllocationFrom:
			record.From = append(record.From, a)
		case domain.AllocationTo:
			record.To = append(record.To, a)
		}
	}
}
