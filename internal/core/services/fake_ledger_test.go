package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerState is the full table set of the fake store.
type ledgerState struct {
	groups      map[string]domain.Group
	members     map[string]domain.Member
	memberOrder []string
	records     map[string]domain.Record
	allocations []domain.Allocation
	balances    map[string]domain.Balance // keyed by member_id|currency
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		groups:   map[string]domain.Group{},
		members:  map[string]domain.Member{},
		records:  map[string]domain.Record{},
		balances: map[string]domain.Balance{},
	}
}

func (s *ledgerState) clone() *ledgerState {
	c := newLedgerState()
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	c.memberOrder = append([]string{}, s.memberOrder...)
	for k, v := range s.records {
		c.records[k] = v
	}
	c.allocations = append([]domain.Allocation{}, s.allocations...)
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

// fakeTx marks the transaction a fake repository call runs in.
type fakeTx struct {
	pgx.Tx
	snapshot *ledgerState
	done     bool
}

// fakeLedger is an in-memory store implementing every repository port and
// the transaction manager. Rollback restores the snapshot taken by Begin.
type fakeLedger struct {
	mu       sync.Mutex
	state    *ledgerState
	failures map[string]error

	begins    int
	commits   int
	rollbacks int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{state: newLedgerState(), failures: map[string]error{}}
}

var (
	_ portsrepo.TransactionManager      = (*fakeLedger)(nil)
	_ portsrepo.GroupRepositoryFacade   = (*fakeLedger)(nil)
	_ portsrepo.MemberRepositoryFacade  = (*fakeLedger)(nil)
	_ portsrepo.RecordRepositoryFacade  = (*fakeLedger)(nil)
	_ portsrepo.BalanceRepositoryFacade = (*fakeLedger)(nil)
)

func (f *fakeLedger) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:   f,
		GroupRepo:   f,
		MemberRepo:  f,
		RecordRepo:  f,
		BalanceRepo: f,
	}
}

// failOn makes the named method return err until cleared.
func (f *fakeLedger) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

func (f *fakeLedger) fail(method string) error {
	return f.failures[method]
}

// --- TransactionManager ---

func (f *fakeLedger) Begin(ctx context.Context) (pgx.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Begin"); err != nil {
		return nil, err
	}
	f.begins++
	return &fakeTx{snapshot: f.state.clone()}, nil
}

func (f *fakeLedger) Commit(ctx context.Context, tx pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Commit"); err != nil {
		return err
	}
	ftx := tx.(*fakeTx)
	ftx.done = true
	f.commits++
	return nil
}

func (f *fakeLedger) Rollback(ctx context.Context, tx pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ftx, ok := tx.(*fakeTx)
	if !ok || ftx.done {
		return nil
	}
	ftx.done = true
	f.state = ftx.snapshot
	f.rollbacks++
	return nil
}

// --- seeding helpers ---

func (f *fakeLedger) seedGroup(g domain.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.groups[g.GroupID] = g
}

func (f *fakeLedger) seedMember(m domain.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.members[m.MemberID] = m
	f.state.memberOrder = append(f.state.memberOrder, m.MemberID)
}

func (f *fakeLedger) balanceOf(memberID, currency string) (decimal.Decimal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.state.balances[memberID+"|"+currency]
	return b.Balance, ok
}

func (f *fakeLedger) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.records)
}

func (f *fakeLedger) allocationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.allocations)
}

func (f *fakeLedger) memberSnapshot() map[string]domain.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.Member, len(f.state.members))
	for k, v := range f.state.members {
		out[k] = v
	}
	return out
}

// --- GroupRepositoryFacade ---

func (f *fakeLedger) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.state.groups[groupID]
	if !ok {
		return nil, apperrors.NewNotFoundError("group " + groupID)
	}
	return &g, nil
}

func (f *fakeLedger) ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Group
	for _, g := range f.state.groups {
		if g.OwnerID == userID || f.hasBoundMember(g.GroupID, userID) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedger) hasBoundMember(groupID, userID string) bool {
	for _, m := range f.state.members {
		if m.GroupID == groupID && m.UserID != nil && *m.UserID == userID {
			return true
		}
	}
	return false
}

func (f *fakeLedger) SaveGroupInTx(ctx context.Context, tx pgx.Tx, group domain.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SaveGroupInTx"); err != nil {
		return err
	}
	f.state.groups[group.GroupID] = group
	return nil
}

func (f *fakeLedger) UpdateGroup(ctx context.Context, group domain.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.groups[group.GroupID]; !ok {
		return apperrors.NewNotFoundError("group " + group.GroupID)
	}
	f.state.groups[group.GroupID] = group
	return nil
}

func (f *fakeLedger) DeleteGroup(ctx context.Context, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.groups[groupID]; !ok {
		return apperrors.NewNotFoundError("group " + groupID)
	}
	delete(f.state.groups, groupID)
	for id, r := range f.state.records {
		if r.GroupID == groupID {
			f.deleteAllocations(id, nil)
			delete(f.state.records, id)
		}
	}
	for id, m := range f.state.members {
		if m.GroupID == groupID {
			f.deleteMember(id)
		}
	}
	return nil
}

// --- MemberRepositoryFacade ---

func (f *fakeLedger) membersOf(groupID string) []domain.Member {
	out := make([]domain.Member, 0)
	for _, id := range f.state.memberOrder {
		if m, ok := f.state.members[id]; ok && m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeLedger) ListMembersByGroupID(ctx context.Context, groupID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.membersOf(groupID), nil
}

func (f *fakeLedger) ListMembersByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListMembersByGroupIDInTx"); err != nil {
		return nil, err
	}
	return f.membersOf(groupID), nil
}

func (f *fakeLedger) FindMembersByIDs(ctx context.Context, groupID string, memberIDs []string) (map[string]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.membersByIDs(groupID, memberIDs), nil
}

func (f *fakeLedger) FindMembersByIDsInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) (map[string]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("FindMembersByIDsInTx"); err != nil {
		return nil, err
	}
	return f.membersByIDs(groupID, memberIDs), nil
}

func (f *fakeLedger) membersByIDs(groupID string, memberIDs []string) map[string]domain.Member {
	out := make(map[string]domain.Member)
	for _, id := range memberIDs {
		if m, ok := f.state.members[id]; ok && m.GroupID == groupID {
			out[id] = m
		}
	}
	return out
}

func (f *fakeLedger) FindMemberByUserID(ctx context.Context, groupID, userID string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.membersOf(groupID) {
		if m.UserID != nil && *m.UserID == userID {
			return &m, nil
		}
	}
	return nil, apperrors.NewNotFoundError("member for user " + userID)
}

func (f *fakeLedger) InsertMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InsertMembersInTx"); err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID != nil && f.hasBoundMember(m.GroupID, *m.UserID) {
			return fmt.Errorf("%w: user already bound in group", apperrors.ErrDuplicate)
		}
		f.state.members[m.MemberID] = m
		f.state.memberOrder = append(f.state.memberOrder, m.MemberID)
	}
	return nil
}

func (f *fakeLedger) UpdateMembersInTx(ctx context.Context, tx pgx.Tx, members []domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateMembersInTx"); err != nil {
		return err
	}
	for _, m := range members {
		if _, ok := f.state.members[m.MemberID]; !ok {
			return apperrors.NewNotFoundError("member " + m.MemberID)
		}
		f.state.members[m.MemberID] = m
	}
	return nil
}

func (f *fakeLedger) DeleteMembersInTx(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteMembersInTx"); err != nil {
		return err
	}
	for _, id := range memberIDs {
		m, ok := f.state.members[id]
		if !ok || m.GroupID != groupID {
			return apperrors.NewNotFoundError("member " + id)
		}
		for _, a := range f.state.allocations {
			if a.MemberID == id {
				return fmt.Errorf("%w: member %s is referenced by allocations", apperrors.ErrIntegrity, id)
			}
		}
		f.deleteMember(id)
	}
	return nil
}

func (f *fakeLedger) deleteMember(id string) {
	delete(f.state.members, id)
	for k, b := range f.state.balances {
		if b.MemberID == id {
			delete(f.state.balances, k)
		}
	}
}

// --- RecordRepositoryFacade ---

func (f *fakeLedger) withAllocations(r domain.Record) domain.Record {
	r.From, r.To = nil, nil
	for _, a := range f.state.allocations {
		if a.RecordID != r.RecordID {
			continue
		}
		if a.Kind == domain.AllocationFrom {
			r.From = append(r.From, a)
		} else {
			r.To = append(r.To, a)
		}
	}
	sort.SliceStable(r.From, func(i, j int) bool { return r.From[i].Position < r.From[j].Position })
	sort.SliceStable(r.To, func(i, j int) bool { return r.To[i].Position < r.To[j].Position })
	return r
}

func (f *fakeLedger) FindRecordByID(ctx context.Context, groupID, recordID string) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.state.records[recordID]
	if !ok || r.GroupID != groupID {
		return nil, apperrors.NewNotFoundError("record " + recordID)
	}
	r = f.withAllocations(r)
	return &r, nil
}

func (f *fakeLedger) ListRecordsByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Record, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Record
	for _, r := range f.state.records {
		if r.GroupID == groupID {
			out = append(out, f.withAllocations(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (f *fakeLedger) InsertRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InsertRecordInTx"); err != nil {
		return err
	}
	record.From, record.To = nil, nil
	f.state.records[record.RecordID] = record
	return nil
}

func (f *fakeLedger) UpdateRecordInTx(ctx context.Context, tx pgx.Tx, record domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateRecordInTx"); err != nil {
		return err
	}
	if _, ok := f.state.records[record.RecordID]; !ok {
		return apperrors.NewNotFoundError("record " + record.RecordID)
	}
	record.From, record.To = nil, nil
	f.state.records[record.RecordID] = record
	return nil
}

func (f *fakeLedger) DeleteRecordInTx(ctx context.Context, tx pgx.Tx, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.records[recordID]; !ok {
		return apperrors.NewNotFoundError("record " + recordID)
	}
	f.deleteAllocations(recordID, nil)
	delete(f.state.records, recordID)
	return nil
}

func (f *fakeLedger) InsertAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.Allocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InsertAllocationsInTx"); err != nil {
		return err
	}
	for _, a := range allocations {
		if _, ok := f.state.members[a.MemberID]; !ok {
			return fmt.Errorf("%w: unknown member %s", apperrors.ErrIntegrity, a.MemberID)
		}
		f.state.allocations = append(f.state.allocations, a)
	}
	return nil
}

func (f *fakeLedger) DeleteAllocationsInTx(ctx context.Context, tx pgx.Tx, recordID string, kinds ...domain.AllocationKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteAllocations(recordID, kinds)
	return nil
}

func (f *fakeLedger) deleteAllocations(recordID string, kinds []domain.AllocationKind) {
	kept := f.state.allocations[:0:0]
	for _, a := range f.state.allocations {
		if a.RecordID == recordID && (len(kinds) == 0 || containsKind(kinds, a.Kind)) {
			continue
		}
		kept = append(kept, a)
	}
	f.state.allocations = kept
}

func containsKind(kinds []domain.AllocationKind, k domain.AllocationKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func (f *fakeLedger) SumAllocationsInTx(ctx context.Context, tx pgx.Tx, groupID, memberID, currency string, kind domain.AllocationKind) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SumAllocationsInTx"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range f.state.allocations {
		r, ok := f.state.records[a.RecordID]
		if !ok || r.GroupID != groupID || r.Currency != currency {
			continue
		}
		if a.MemberID == memberID && a.Kind == kind {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

// --- BalanceRepositoryFacade ---

func (f *fakeLedger) ListBalancesByGroupID(ctx context.Context, groupID string) ([]domain.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Balance
	for _, b := range f.state.balances {
		if m, ok := f.state.members[b.MemberID]; ok && m.GroupID == groupID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MemberID == out[j].MemberID {
			return out[i].Currency < out[j].Currency
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out, nil
}

func (f *fakeLedger) UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.Balance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpsertBalanceInTx"); err != nil {
		return err
	}
	f.state.balances[balance.MemberID+"|"+balance.Currency] = balance
	return nil
}

func (f *fakeLedger) ListCurrenciesByGroupIDInTx(ctx context.Context, tx pgx.Tx, groupID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := map[string]struct{}{}
	for _, r := range f.state.records {
		if r.GroupID == groupID {
			set[r.Currency] = struct{}{}
		}
	}
	for _, b := range f.state.balances {
		if m, ok := f.state.members[b.MemberID]; ok && m.GroupID == groupID {
			set[b.Currency] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
