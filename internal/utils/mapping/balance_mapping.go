package mapping

import (
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	"github.com/SscSPs/easysplit_backend/internal/models"
)

// ToModelBalance converts a domain Balance to a model Balance
func ToModelBalance(d domain.Balance) models.Balance {
	return models.Balance{
		MemberID:      d.MemberID,
		Currency:      d.Currency,
		Balance:       d.Balance,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ToDomainBalance converts a model Balance to a domain Balance
func ToDomainBalance(m models.Balance) domain.Balance {
	return domain.Balance{
		MemberID:      m.MemberID,
		Currency:      m.Currency,
		Balance:       m.Balance,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

// GroupBalancesByMember indexes balances by member id, keeping input order per member.
func GroupBalancesByMember(balances []domain.Balance) map[string][]domain.Balance {
	out := make(map[string][]domain.Balance)
	for _, b := range balances {
		out[b.MemberID] = append(out[b.MemberID], b)
	}
	return out
}
