package inventory

import (
	"context"
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
)

// memRepo is an in-memory repository with real optimistic locking:
// Update fails with CONCURRENT_MODIFICATION unless the incoming version
// matches the stored one, then bumps it. That makes the service's retry
// loop observable without a database.
type memRepo struct {
	mu        sync.Mutex
	lots      map[id.ID]*Lot
	movements []Movement

	// failUpdates forces the next n Update calls to report a version
	// conflict regardless of the actual version.
	failUpdates int

	updateErr error // overrides Update entirely when set
}

func newMemRepo() *memRepo {
	return &memRepo{lots: make(map[id.ID]*Lot)}
}

func (r *memRepo) Create(_ context.Context, lot *Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lot
	r.lots[lot.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, lotID id.ID) (*Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[lotID]
	if !ok {
		return nil, apperror.NewNotFound("inventory_lot", lotID.String())
	}
	cp := *lot
	return &cp, nil
}

func (r *memRepo) GetByMaterial(_ context.Context, materialID id.ID) (*Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lot := range r.lots {
		if lot.RawMaterialID == materialID {
			cp := *lot
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("inventory_lot", materialID.String())
}

func (r *memRepo) Update(_ context.Context, lot *Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return apperror.NewConcurrentModification("inventory_lot", lot.ID.String())
	}

	stored, ok := r.lots[lot.ID]
	if !ok {
		return apperror.NewNotFound("inventory_lot", lot.ID.String())
	}
	if stored.Version != lot.Version {
		return apperror.NewConcurrentModification("inventory_lot", lot.ID.String())
	}

	cp := *lot
	cp.Version++
	r.lots[lot.ID] = &cp
	lot.Version = cp.Version
	return nil
}

func (r *memRepo) Delete(_ context.Context, lotID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.lots[lotID]
	if !ok {
		return apperror.NewNotFound("inventory_lot", lotID.String())
	}
	stored.DeletionMark = true
	stored.Version++
	return nil
}

func (r *memRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Lot], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Lot]{}
	for _, lot := range r.lots {
		cp := *lot
		out.Items = append(out.Items, &cp)
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

func (r *memRepo) AppendMovement(_ context.Context, m Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, m)
	return nil
}

func (r *memRepo) GetMovements(_ context.Context, lotID id.ID, _ int) ([]Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Movement
	for _, m := range r.movements {
		if m.LotID == lotID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) ListLowStock(_ context.Context) ([]*Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Lot
	for _, lot := range r.lots {
		if lot.computeAlerts().LowStock {
			cp := *lot
			out = append(out, &cp)
		}
	}
	return out, nil
}

// passthroughTx runs fn without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	mu        sync.Mutex
	lowStock  int
	critical  int
	restocked int
}

func (n *recordingNotifier) NotifyStockLow(_ context.Context, _ *Lot, critical bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lowStock++
	if critical {
		n.critical++
	}
	return nil
}

func (n *recordingNotifier) NotifyRestocked(_ context.Context, _ *Lot, _ types.Quantity) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restocked++
	return nil
}

func testCtx() context.Context {
	return actor.WithActor(context.Background(), actor.Actor{
		UserID: "u-test",
		Name:   "Test User",
		Role:   actor.RoleInternalEmployee,
	})
}

func seedLot(t *testing.T, repo *memRepo, stockKg float64) *Lot {
	t.Helper()
	lot := newTestLot(t, stockKg)
	require.NoError(t, repo.Create(context.Background(), lot))
	return lot
}

func TestService_CreateLot(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()

	lot := NewLot(id.New(), types.MustMoney("10"))
	lot.CurrentStockKg = qty(50)
	lot.ThresholdKg = qty(10)

	created, err := svc.CreateLot(ctx, lot)
	require.NoError(t, err)
	assert.Equal(t, qty(50), created.AvailableKg)

	// initial stock is on the movement log
	moves, err := repo.GetMovements(ctx, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, MovementIn, moves[0].Type)
	assert.Equal(t, qty(50), moves[0].Quantity)

	// one lot per material
	dup := NewLot(lot.RawMaterialID, types.MustMoney("10"))
	_, err = svc.CreateLot(ctx, dup)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_WritePersistsLotAndMovement(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	updated, err := svc.Allocate(ctx, lot.ID, id.New(), qty(30))
	require.NoError(t, err)
	assert.Equal(t, qty(70), updated.AvailableKg)

	stored, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(30), stored.AllocatedKg)
	assert.Equal(t, lot.Version+1, stored.Version)

	moves, err := repo.GetMovements(ctx, lot.ID, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "u-test", moves[0].PerformedBy)
}

func TestService_RetriesOnVersionConflict(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	// two forced conflicts, the third attempt lands
	repo.failUpdates = 2
	updated, err := svc.Restock(ctx, lot.ID, qty(10), "")
	require.NoError(t, err)
	assert.Equal(t, qty(110), updated.CurrentStockKg)
}

func TestService_GivesUpAfterMaxRetries(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	repo.failUpdates = maxCASRetries
	_, err := svc.Restock(ctx, lot.ID, qty(10), "")
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))

	// no partial state, no stray movement
	stored, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(100), stored.CurrentStockKg)
	moves, _ := repo.GetMovements(ctx, lot.ID, 0)
	assert.Empty(t, moves)
}

func TestService_DeadlineDuringWriteIsIndeterminate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	repo.updateErr = context.DeadlineExceeded
	_, err := svc.Restock(ctx, lot.ID, qty(10), "")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeIndeterminate, appErr.Code)
}

func TestService_ValidationErrorsDoNotRetry(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	_, err := svc.Allocate(ctx, lot.ID, id.New(), qty(100.0001))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	_, err = svc.Release(ctx, lot.ID, id.New(), qty(1))
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeOverRelease, appErr.Code)
}

// Two workers race to allocate from the same lot. The version check
// serializes them: exactly one wins the remainder, the other reloads
// fresh state and fails with INSUFFICIENT_STOCK instead of overdrawing.
func TestService_ConcurrentAllocation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	requests := []types.Quantity{qty(60), qty(70)}
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i, q := range requests {
		wg.Add(1)
		go func(i int, q types.Quantity) {
			defer wg.Done()
			_, errs[i] = svc.Allocate(ctx, lot.ID, id.New(), q)
		}(i, q)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsInsufficientStock(err):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one allocation must win")
	assert.Equal(t, 1, insufficient)

	stored, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.True(t, stored.AllocatedKg == qty(60) || stored.AllocatedKg == qty(70),
		"allocated %s", stored.AllocatedKg)
	assert.Equal(t, qty(100), stored.CurrentStockKg)
}

func TestService_LowStockNotification(t *testing.T) {
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, passthroughTx{}, notifier)
	ctx := testCtx()
	lot := seedLot(t, repo, 100) // threshold 20

	// still above threshold: no alert
	_, err := svc.Allocate(ctx, lot.ID, id.New(), qty(10))
	require.NoError(t, err)
	assert.Equal(t, 0, notifier.lowStock)

	// dropping stock to the threshold fires the alert
	_, err = svc.Adjust(ctx, lot.ID, qty(18), "cycle count")
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.lowStock)
	assert.Equal(t, 0, notifier.critical)

	// below half the threshold the alert escalates
	_, err = svc.Consume(ctx, lot.ID, id.New(), qty(9), "")
	require.NoError(t, err)
	assert.Equal(t, 2, notifier.lowStock)
	assert.Equal(t, 1, notifier.critical)
}

func TestService_RestockedNotification(t *testing.T) {
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, passthroughTx{}, notifier)
	ctx := testCtx()
	lot := seedLot(t, repo, 10)

	_, err := svc.Restock(ctx, lot.ID, qty(40), "delivery")
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.restocked)
}

func TestService_UpdatePolicy(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)

	updated, err := svc.UpdatePolicy(ctx, lot.ID, Policy{
		ThresholdKg:    qty(150),
		ReorderPointKg: qty(160),
		MaxStockKg:     qty(500),
		CostPerKg:      types.MustMoney("20"),
		Location:       "shelf B3",
	})
	require.NoError(t, err)

	// alerts and valuation follow the new policy immediately
	assert.True(t, updated.Alerts.LowStock)
	assert.True(t, updated.TotalValue.Equal(types.MustMoney("2000")))

	// policy edits leave the movement log untouched
	moves, _ := repo.GetMovements(ctx, lot.ID, 0)
	assert.Empty(t, moves)
}

func TestService_DeleteBlockedByAllocations(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 100)
	orderID := id.New()

	_, err := svc.Allocate(ctx, lot.ID, orderID, qty(30))
	require.NoError(t, err)

	err = svc.Delete(ctx, lot.ID)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// once the reservation is gone the delete goes through, and the
	// movement log survives the mark
	_, err = svc.Release(ctx, lot.ID, orderID, qty(30))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, lot.ID))

	stored, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.True(t, stored.DeletionMark)
	moves, _ := repo.GetMovements(ctx, lot.ID, 0)
	assert.Len(t, moves, 2)
}

func TestService_GetMovements_UnknownLot(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)

	_, err := svc.GetMovements(testCtx(), id.New(), 10)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_MutationTimestampAttribution(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, passthroughTx{}, nil)
	ctx := testCtx()
	lot := seedLot(t, repo, 10)

	before := time.Now().UTC()
	updated, err := svc.Restock(ctx, lot.ID, qty(5), "")
	require.NoError(t, err)
	assert.Equal(t, "u-test", updated.LastRestockedBy)
	assert.False(t, updated.LastRestockedAt.Before(before))
}
