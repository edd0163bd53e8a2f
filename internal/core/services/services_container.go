package services

import (
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Initialize group service first since it authorizes every other service
	groupService := NewGroupService(repos.TxManager, repos.GroupRepo, repos.MemberRepo, WithMetrics(m))
	container.Group = groupService

	shared := []ServiceOption{WithGroupAuthorizer(groupService), WithMetrics(m)}

	balanceService := NewBalanceService(repos.TxManager, repos.MemberRepo, repos.RecordRepo, repos.BalanceRepo, shared...)
	container.Balance = balanceService
	container.Member = NewMemberService(repos.TxManager, repos.MemberRepo, repos.BalanceRepo, shared...)
	container.Record = NewRecordService(repos.TxManager, repos.RecordRepo, repos.MemberRepo, balanceService, shared...)

	return container
}
