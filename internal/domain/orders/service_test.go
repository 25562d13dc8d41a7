package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain"
	"aurotex/internal/domain/inventory"
	"aurotex/internal/domain/status"
	"aurotex/pkg/numerator"
)

// --- fakes ---

type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[id.ID]*Order
	history map[id.ID][]status.HistoryEntry

	// failUpdates forces the next n Update calls to report a version
	// conflict, exercising the service retry loop.
	failUpdates int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:  make(map[id.ID]*Order),
		history: make(map[id.ID][]status.HistoryEntry),
	}
}

func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		cp.Items[i] = item
		cp.Items[i].ThreadAllocations = append([]ThreadAllocation(nil), item.ThreadAllocations...)
	}
	return &cp
}

func (r *memOrderRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	cp := copyOrder(o)
	cp.StatusHistory = append([]status.HistoryEntry(nil), r.history[orderID]...)
	return cp, nil
}

func (r *memOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			return copyOrder(o), nil
		}
	}
	return nil, apperror.NewNotFound("order", number)
}

func (r *memOrderRepo) Update(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return apperror.NewNotFound("order", o.ID.String())
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return apperror.NewConcurrentModification("order", o.ID.String())
	}
	if stored.Version != o.Version {
		return apperror.NewConcurrentModification("order", o.ID.String())
	}
	cp := copyOrder(o)
	cp.Version++
	r.orders[o.ID] = cp
	o.Version = cp.Version
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, orderID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderID)
	return nil
}

func (r *memOrderRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Order]{}
	for _, o := range r.orders {
		out.Items = append(out.Items, copyOrder(o))
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

func (r *memOrderRepo) ListByClient(ctx context.Context, clientID id.ID, _ domain.ListFilter) (domain.ListResult[*Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Order]{}
	for _, o := range r.orders {
		if o.ClientID == clientID {
			out.Items = append(out.Items, copyOrder(o))
		}
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

func (r *memOrderRepo) AppendStatusHistory(_ context.Context, orderID id.ID, e status.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[orderID] = append(r.history[orderID], e)
	return nil
}

func (r *memOrderRepo) GetStatusHistory(_ context.Context, orderID id.ID) ([]status.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.HistoryEntry(nil), r.history[orderID]...), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqNumberer struct {
	mu sync.Mutex
	n  int64
}

func (s *seqNumberer) GetNextNumber(_ context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d-%03d", cfg.Prefix, period.Year(), s.n), nil
}

// fakeStock models one lot per material with plain available/allocated
// bookkeeping, recording each ledger call.
type fakeStock struct {
	mu   sync.Mutex
	lots map[id.ID]*inventory.Lot // keyed by material

	allocated map[id.ID]types.Quantity // by lot
	released  map[id.ID]types.Quantity
	consumed  map[id.ID]types.Quantity
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		lots:      make(map[id.ID]*inventory.Lot),
		allocated: make(map[id.ID]types.Quantity),
		released:  make(map[id.ID]types.Quantity),
		consumed:  make(map[id.ID]types.Quantity),
	}
}

func (f *fakeStock) addLot(materialID id.ID, stockKg float64, costPerKg string) *inventory.Lot {
	lot := inventory.NewLot(materialID, types.MustMoney(costPerKg))
	_, _ = lot.Restock(types.NewQuantityFromFloat64(stockKg), "seed", "")
	f.lots[materialID] = lot
	return lot
}

func (f *fakeStock) GetByMaterial(_ context.Context, materialID id.ID) (*inventory.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lot, ok := f.lots[materialID]
	if !ok {
		return nil, apperror.NewNotFound("inventory_lot", materialID.String())
	}
	return lot, nil
}

func (f *fakeStock) Allocate(_ context.Context, lotID, orderID id.ID, qty types.Quantity) (*inventory.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lot := range f.lots {
		if lot.ID == lotID {
			if _, err := lot.Allocate(orderID, qty, "test"); err != nil {
				return nil, err
			}
			f.allocated[lotID] += qty
			return lot, nil
		}
	}
	return nil, apperror.NewNotFound("inventory_lot", lotID.String())
}

func (f *fakeStock) Release(_ context.Context, lotID, orderID id.ID, qty types.Quantity) (*inventory.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lot := range f.lots {
		if lot.ID == lotID {
			if _, err := lot.Release(orderID, qty, "test"); err != nil {
				return nil, err
			}
			f.released[lotID] += qty
			return lot, nil
		}
	}
	return nil, apperror.NewNotFound("inventory_lot", lotID.String())
}

func (f *fakeStock) Consume(_ context.Context, lotID, orderID id.ID, qty types.Quantity, _ string) (*inventory.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lot := range f.lots {
		if lot.ID == lotID {
			if _, err := lot.Consume(orderID, qty, "test", ""); err != nil {
				return nil, err
			}
			f.consumed[lotID] += qty
			return lot, nil
		}
	}
	return nil, apperror.NewNotFound("inventory_lot", lotID.String())
}

func testCtx() context.Context {
	return actor.WithActor(context.Background(), actor.Actor{
		UserID: "u-test",
		Role:   actor.RoleInternalEmployee,
	})
}

func newTestService(t *testing.T) (*Service, *memOrderRepo, *fakeStock) {
	t.Helper()
	repo := newMemOrderRepo()
	stock := newFakeStock()
	svc := NewService(repo, passthroughTx{}, stock, &seqNumberer{}, nil)
	return svc, repo, stock
}

func draftOrder(t *testing.T, svc *Service, items ...OrderItem) *Order {
	t.Helper()
	o := NewOrder(id.New())
	o.Items = items
	created, err := svc.Create(testCtx(), o)
	require.NoError(t, err)
	return created
}

func item(quantity int64, unitPrice string) OrderItem {
	return OrderItem{
		ProductID: id.New(),
		Quantity:  quantity,
		UnitPrice: types.MustMoney(unitPrice),
	}
}

// --- tests ---

func TestOrderService_Create(t *testing.T) {
	svc, repo, _ := newTestService(t)

	o := draftOrder(t, svc, item(2, "100"), item(3, "50"))

	assert.Equal(t, fmt.Sprintf("AUR-ORD-%d-001", time.Now().Year()), o.Number)
	assert.Equal(t, status.OrderDraft, o.Status)
	assert.True(t, o.TotalValue.Equal(types.MustMoney("350")))
	for _, it := range o.Items {
		assert.False(t, id.IsNil(it.LineID))
		assert.Equal(t, ItemPending, it.Status)
	}

	hist, err := repo.GetStatusHistory(testCtx(), o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, status.OrderDraft, hist[0].Status)
	assert.Equal(t, "u-test", hist[0].ChangedBy)

	second := draftOrder(t, svc, item(1, "10"))
	assert.Equal(t, fmt.Sprintf("AUR-ORD-%d-002", time.Now().Year()), second.Number)
}

func TestOrderService_ChangeStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"))

	o, err := svc.ChangeStatus(testCtx(), o.ID, status.OrderConfirmed, "client signed")
	require.NoError(t, err)
	assert.Equal(t, status.OrderConfirmed, o.Status)

	// illegal jump is rejected and leaves state untouched
	_, err = svc.ChangeStatus(testCtx(), o.ID, status.OrderCompleted, "")
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	stored, err := repo.GetByID(testCtx(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, status.OrderConfirmed, stored.Status)

	// history carries one entry per successful transition
	hist, err := repo.GetStatusHistory(testCtx(), o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, status.OrderConfirmed, hist[1].Status)
	assert.Equal(t, "client signed", hist[1].Notes)
}

func TestOrderService_ApproveAndAssign(t *testing.T) {
	svc, repo, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"))

	o, err := svc.Approve(testCtx(), o.ID, "reviewed")
	require.NoError(t, err)
	assert.Equal(t, status.OrderConfirmed, o.Status)
	assert.Equal(t, "u-test", o.ApprovedBy)
	require.NotNil(t, o.ApprovedAt)

	contractorID := id.New()
	o, err = svc.AssignContractor(testCtx(), o.ID, contractorID, "assigned to unit 2")
	require.NoError(t, err)
	assert.Equal(t, status.OrderInProgress, o.Status)
	require.NotNil(t, o.AssignedContractorID)
	assert.Equal(t, contractorID, *o.AssignedContractorID)

	hist, err := repo.GetStatusHistory(testCtx(), o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, status.OrderInProgress, hist[2].Status)

	// a draft cannot jump straight to a contractor
	second := draftOrder(t, svc, item(1, "10"))
	_, err = svc.AssignContractor(testCtx(), second.ID, contractorID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
}

func TestOrderService_ConfirmEmptyOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	o := draftOrder(t, svc)

	_, err := svc.ChangeStatus(testCtx(), o.ID, status.OrderConfirmed, "")
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORDER_EMPTY", appErr.Code)
}

func TestOrderService_UpdateDraftOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"))

	o.Items = append(o.Items, item(4, "25"))
	updated, err := svc.UpdateDraft(testCtx(), o)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalItems)
	assert.True(t, updated.TotalValue.Equal(types.MustMoney("110")))

	_, err = svc.ChangeStatus(testCtx(), o.ID, status.OrderConfirmed, "")
	require.NoError(t, err)

	_, err = svc.UpdateDraft(testCtx(), updated)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORDER_NOT_EDITABLE", appErr.Code)
}

func TestOrderService_AllocateThread(t *testing.T) {
	svc, _, stock := newTestService(t)
	materialID := id.New()
	lot := stock.addLot(materialID, 100, "12.50")

	o := draftOrder(t, svc, item(10, "40"))
	lineID := o.Items[0].LineID

	o, err := svc.AllocateThread(testCtx(), o.ID, lineID, materialID, kg(30))
	require.NoError(t, err)

	require.Len(t, o.Items[0].ThreadAllocations, 1)
	alloc := o.Items[0].ThreadAllocations[0]
	assert.Equal(t, lot.ID, alloc.LotID)
	assert.Equal(t, kg(30), alloc.AllocatedKg)
	assert.True(t, alloc.CostPerKg.Equal(types.MustMoney("12.50")))

	// aggregates follow the allocation: 30 x 12.50 = 375 thread cost
	assert.Equal(t, kg(30), o.TotalThreadKg)
	assert.True(t, o.TotalCost.Equal(types.MustMoney("375")))
	assert.Equal(t, ItemAllocated, o.Items[0].Status)

	// ledger saw the reservation
	assert.Equal(t, kg(30), stock.allocated[lot.ID])
	assert.Equal(t, kg(70), lot.AvailableKg)
}

func TestOrderService_AllocateThread_InsufficientStock(t *testing.T) {
	svc, _, stock := newTestService(t)
	materialID := id.New()
	stock.addLot(materialID, 10, "5")

	o := draftOrder(t, svc, item(1, "10"))

	_, err := svc.AllocateThread(testCtx(), o.ID, o.Items[0].LineID, materialID, kg(10.5))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// nothing mirrored onto the order
	stored, err := svc.GetByID(testCtx(), o.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items[0].ThreadAllocations)
}

func TestOrderService_ReleaseThread(t *testing.T) {
	svc, _, stock := newTestService(t)
	materialID := id.New()
	lot := stock.addLot(materialID, 100, "10")

	o := draftOrder(t, svc, item(1, "10"))
	lineID := o.Items[0].LineID

	_, err := svc.AllocateThread(testCtx(), o.ID, lineID, materialID, kg(30))
	require.NoError(t, err)

	o, err = svc.ReleaseThread(testCtx(), o.ID, lineID, materialID, kg(10))
	require.NoError(t, err)
	assert.Equal(t, kg(20), o.Items[0].ThreadAllocations[0].AllocatedKg)
	assert.Equal(t, kg(10), stock.released[lot.ID])

	// releasing more than held is an over-release, checked order-side first
	_, err = svc.ReleaseThread(testCtx(), o.ID, lineID, materialID, kg(20.0001))
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeOverRelease, appErr.Code)

	// releasing the rest removes the allocation record
	o, err = svc.ReleaseThread(testCtx(), o.ID, lineID, materialID, kg(20))
	require.NoError(t, err)
	assert.Empty(t, o.Items[0].ThreadAllocations)
	assert.Equal(t, kg(0), o.TotalThreadKg)
}

func TestOrderService_ConsumeThread(t *testing.T) {
	svc, _, stock := newTestService(t)
	materialID := id.New()
	lot := stock.addLot(materialID, 100, "10")

	o := draftOrder(t, svc, item(1, "10"))
	lineID := o.Items[0].LineID

	_, err := svc.AllocateThread(testCtx(), o.ID, lineID, materialID, kg(30))
	require.NoError(t, err)

	o, err = svc.ConsumeThread(testCtx(), o.ID, lineID, materialID, kg(25), "issued")
	require.NoError(t, err)
	assert.Equal(t, kg(5), o.Items[0].ThreadAllocations[0].AllocatedKg)
	assert.Equal(t, kg(25), stock.consumed[lot.ID])
	assert.Equal(t, kg(75), lot.CurrentStockKg)
}

func TestOrderService_CancelReleasesAllocations(t *testing.T) {
	svc, repo, stock := newTestService(t)
	materialID := id.New()
	lot := stock.addLot(materialID, 100, "10")

	o := draftOrder(t, svc, item(1, "10"))
	lineID := o.Items[0].LineID
	_, err := svc.AllocateThread(testCtx(), o.ID, lineID, materialID, kg(40))
	require.NoError(t, err)

	o, err = svc.Cancel(testCtx(), o.ID, "client withdrew")
	require.NoError(t, err)
	assert.Equal(t, status.OrderCancelled, o.Status)
	assert.Empty(t, o.Items[0].ThreadAllocations)
	assert.Equal(t, ItemCancelled, o.Items[0].Status)

	// the full reservation went back to the lot
	assert.Equal(t, kg(40), stock.released[lot.ID])
	assert.Equal(t, kg(100), lot.AvailableKg)

	// cancelled is terminal
	_, err = svc.ChangeStatus(testCtx(), o.ID, status.OrderInProgress, "")
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	hist, err := repo.GetStatusHistory(testCtx(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, status.OrderCancelled, hist[len(hist)-1].Status)
}

func TestOrderService_AllocateOnClosedOrder(t *testing.T) {
	svc, _, stock := newTestService(t)
	materialID := id.New()
	stock.addLot(materialID, 100, "10")

	o := draftOrder(t, svc, item(1, "10"))
	_, err := svc.Cancel(testCtx(), o.ID, "")
	require.NoError(t, err)

	_, err = svc.AllocateThread(testCtx(), o.ID, o.Items[0].LineID, materialID, kg(5))
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORDER_CLOSED", appErr.Code)
}

func TestOrderService_SetItemStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"), item(2, "20"))

	o, err := svc.SetItemStatus(testCtx(), o.ID, o.Items[0].LineID, ItemCompleted)
	require.NoError(t, err)
	assert.Equal(t, ItemCompleted, o.Items[0].Status)
	assert.Equal(t, ItemPending, o.Items[1].Status)

	_, err = svc.SetItemStatus(testCtx(), o.ID, o.Items[1].LineID, "DONEISH")
	require.Error(t, err)
}

func TestOrderService_ItemCompletionDrivesHeader(t *testing.T) {
	svc, repo, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"), item(2, "20"))
	first, second := o.Items[0].LineID, o.Items[1].LineID

	_, err := svc.Approve(testCtx(), o.ID, "")
	require.NoError(t, err)
	_, err = svc.AssignContractor(testCtx(), o.ID, id.New(), "")
	require.NoError(t, err)

	o, err = svc.SetItemStatus(testCtx(), o.ID, first, ItemCompleted)
	require.NoError(t, err)
	assert.Equal(t, status.OrderPartiallyCompleted, o.Status)

	o, err = svc.SetItemStatus(testCtx(), o.ID, second, ItemCompleted)
	require.NoError(t, err)
	assert.Equal(t, status.OrderCompleted, o.Status)

	hist, err := repo.GetStatusHistory(testCtx(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, status.OrderCompleted, hist[len(hist)-1].Status)
}

func TestOrderService_RetryOnVersionConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	o := draftOrder(t, svc, item(1, "10"))

	// two simulated conflicts, the third attempt lands
	repo.mu.Lock()
	repo.failUpdates = 2
	repo.mu.Unlock()

	updated, err := svc.SetItemStatus(testCtx(), o.ID, o.Items[0].LineID, ItemInProgress)
	require.NoError(t, err)
	assert.Equal(t, ItemInProgress, updated.Items[0].Status)

	// conflicts beyond the retry budget surface to the caller
	repo.mu.Lock()
	repo.failUpdates = 10
	repo.mu.Unlock()

	_, err = svc.SetItemStatus(testCtx(), o.ID, o.Items[0].LineID, ItemCompleted)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}
