package tasks

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
	"aurotex/internal/domain/status"
	"aurotex/pkg/numerator"
)

// --- fakes ---

type memTaskRepo struct {
	mu       sync.Mutex
	tasks    map[id.ID]*Task
	progress map[id.ID][]DailyProgress
	history  map[id.ID][]status.HistoryEntry

	failUpdates int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{
		tasks:    make(map[id.ID]*Task),
		progress: make(map[id.ID][]DailyProgress),
		history:  make(map[id.ID][]status.HistoryEntry),
	}
}

func copyTask(t *Task) *Task {
	cp := *t
	cp.DailyProgress = append([]DailyProgress(nil), t.DailyProgress...)
	cp.StatusHistory = append([]status.HistoryEntry(nil), t.StatusHistory...)
	return &cp
}

func (r *memTaskRepo) Create(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, taskID id.ID) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, apperror.NewNotFound("task", taskID.String())
	}
	cp := copyTask(t)
	cp.DailyProgress = append([]DailyProgress(nil), r.progress[taskID]...)
	return cp, nil
}

func (r *memTaskRepo) GetByNumber(_ context.Context, number string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.Number == number {
			return copyTask(t), nil
		}
	}
	return nil, apperror.NewNotFound("task", number)
}

func (r *memTaskRepo) Update(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[t.ID]
	if !ok {
		return apperror.NewNotFound("task", t.ID.String())
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return apperror.NewConcurrentModification("task", t.ID.String())
	}
	if stored.Version != t.Version {
		return apperror.NewConcurrentModification("task", t.ID.String())
	}
	cp := copyTask(t)
	cp.Version++
	r.tasks[t.ID] = cp
	t.Version = cp.Version
	return nil
}

func (r *memTaskRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Task], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Task]{}
	for _, t := range r.tasks {
		out.Items = append(out.Items, copyTask(t))
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

func (r *memTaskRepo) ListByOrder(_ context.Context, orderID id.ID) ([]*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Task
	for _, t := range r.tasks {
		if t.OrderID == orderID {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByAssignee(_ context.Context, assigneeID id.ID, _ domain.ListFilter) (domain.ListResult[*Task], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Task]{}
	for _, t := range r.tasks {
		if (t.ContractorID != nil && *t.ContractorID == assigneeID) ||
			(t.WorkerID != nil && *t.WorkerID == assigneeID) {
			out.Items = append(out.Items, copyTask(t))
		}
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

func (r *memTaskRepo) AppendProgress(_ context.Context, p DailyProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[p.TaskID] = append(r.progress[p.TaskID], p)
	return nil
}

func (r *memTaskRepo) GetProgress(_ context.Context, taskID id.ID) ([]DailyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DailyProgress(nil), r.progress[taskID]...), nil
}

func (r *memTaskRepo) AppendStatusHistory(_ context.Context, taskID id.ID, e status.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[taskID] = append(r.history[taskID], e)
	return nil
}

func (r *memTaskRepo) GetStatusHistory(_ context.Context, taskID id.ID) ([]status.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.HistoryEntry(nil), r.history[taskID]...), nil
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
	return fmt.Sprintf("%s-%d-%04d", cfg.Prefix, period.Year(), s.n), nil
}

type recordingNotifier struct {
	assigned  int
	approved  int
	rejected  int
	completed int
}

func (n *recordingNotifier) NotifyTaskAssigned(context.Context, *Task) error {
	n.assigned++
	return nil
}

func (n *recordingNotifier) NotifyTaskDecided(_ context.Context, _ *Task, approved bool) error {
	if approved {
		n.approved++
	} else {
		n.rejected++
	}
	return nil
}

func (n *recordingNotifier) NotifyTaskCompleted(context.Context, *Task) error {
	n.completed++
	return nil
}

func testCtx() context.Context {
	return actor.WithActor(context.Background(), actor.Actor{
		UserID: "u-approver",
		Role:   actor.RoleAdmin,
	})
}

func newTestService(t *testing.T) (*Service, *memTaskRepo, *recordingNotifier) {
	t.Helper()
	repo := newMemTaskRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, passthroughTx{}, &seqNumberer{}, notifier)
	return svc, repo, notifier
}

func pendingTask(t *testing.T, svc *Service, quantity int64, wage string) *Task {
	t.Helper()
	contractorID := id.New()
	task := NewTask(id.New(), id.New(), id.New(), quantity, types.MustMoney(wage))
	task.ContractorID = &contractorID
	created, err := svc.Create(testCtx(), task)
	require.NoError(t, err)
	return created
}

// --- tests ---

func TestTaskService_Create(t *testing.T) {
	svc, repo, notifier := newTestService(t)

	task := pendingTask(t, svc, 50, "8.50")

	assert.Equal(t, fmt.Sprintf("TSK-%d-0001", time.Now().Year()), task.Number)
	assert.Equal(t, status.TaskPendingApproval, task.Status)
	// 50 x 8.50
	assert.True(t, task.TotalWage.Equal(types.MustMoney("425")), "got %s", task.TotalWage)
	assert.Equal(t, 1, notifier.assigned)

	hist, err := repo.GetStatusHistory(testCtx(), task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, status.TaskPendingApproval, hist[0].Status)
}

func TestTaskService_Create_RequiresAssignee(t *testing.T) {
	svc, _, _ := newTestService(t)

	task := NewTask(id.New(), id.New(), id.New(), 10, types.MustMoney("5"))
	_, err := svc.Create(testCtx(), task)
	require.Error(t, err)

	contractorID, workerID := id.New(), id.New()
	task.ContractorID = &contractorID
	task.WorkerID = &workerID
	_, err = svc.Create(testCtx(), task)
	require.Error(t, err)
}

func TestTaskService_ApprovalFlow(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	task := pendingTask(t, svc, 10, "5")

	// a pending task cannot jump straight into production
	_, err := svc.Start(testCtx(), task.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	task, err = svc.Approve(testCtx(), task.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, status.TaskApproved, task.Status)
	assert.Equal(t, "u-approver", task.ApprovedBy)
	require.NotNil(t, task.ApprovedAt)
	assert.Equal(t, 1, notifier.approved)

	task, err = svc.Start(testCtx(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, status.TaskInProgress, task.Status)

	task, err = svc.Complete(testCtx(), task.ID, "all pieces delivered")
	require.NoError(t, err)
	assert.Equal(t, status.TaskCompleted, task.Status)
	assert.Equal(t, 1, notifier.completed)

	// completed is terminal
	_, err = svc.Cancel(testCtx(), task.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	hist, err := repo.GetStatusHistory(testCtx(), task.ID)
	require.NoError(t, err)
	statuses := make([]string, len(hist))
	for i, e := range hist {
		statuses[i] = e.Status
	}
	assert.Equal(t, []string{
		status.TaskPendingApproval,
		status.TaskApproved,
		status.TaskInProgress,
		status.TaskCompleted,
	}, statuses)
}

func TestTaskService_Reject(t *testing.T) {
	svc, _, notifier := newTestService(t)
	task := pendingTask(t, svc, 10, "5")

	_, err := svc.Reject(testCtx(), task.ID, "")
	require.Error(t, err, "rejection requires a reason")

	task, err = svc.Reject(testCtx(), task.ID, "wrong contractor")
	require.NoError(t, err)
	assert.Equal(t, status.TaskRejected, task.Status)
	assert.Equal(t, "wrong contractor", task.RejectionReason)
	assert.Equal(t, 1, notifier.rejected)

	// rejected is terminal
	_, err = svc.Approve(testCtx(), task.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
}

func TestTaskService_DailyProgress(t *testing.T) {
	svc, repo, _ := newTestService(t)
	task := pendingTask(t, svc, 100, "2")

	// progress before production start is rejected
	_, err := svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{PiecesCompleted: 5})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TASK_NOT_IN_PROGRESS", appErr.Code)

	_, err = svc.Approve(testCtx(), task.ID, "")
	require.NoError(t, err)
	_, err = svc.Start(testCtx(), task.ID)
	require.NoError(t, err)

	task, err = svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{
		PiecesCompleted: 30,
		HoursWorked:     types.NewQuantityFromFloat64(6),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), task.PiecesCompleted)
	assert.Equal(t, types.NewQuantityFromFloat64(6), task.HoursLogged)
	assert.Equal(t, 30, task.ProgressPercentage)

	task, err = svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{
		PiecesCompleted: 45,
		HoursWorked:     types.NewQuantityFromFloat64(7.5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75), task.PiecesCompleted)
	assert.Equal(t, types.NewQuantityFromFloat64(13.5), task.HoursLogged)
	assert.Equal(t, 75, task.ProgressPercentage)

	// the log itself is append-only with attribution
	entries, err := repo.GetProgress(testCtx(), task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u-approver", entries[0].RecordedBy)
	assert.False(t, entries[0].Date.IsZero())
}

func TestTaskService_ProgressCapsAtHundred(t *testing.T) {
	svc, _, _ := newTestService(t)
	task := pendingTask(t, svc, 10, "2")
	_, err := svc.Approve(testCtx(), task.ID, "")
	require.NoError(t, err)
	_, err = svc.Start(testCtx(), task.ID)
	require.NoError(t, err)

	task, err = svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{PiecesCompleted: 12})
	require.NoError(t, err)
	assert.Equal(t, 100, task.ProgressPercentage, "over-delivery caps the percentage")
	assert.Equal(t, int64(12), task.PiecesCompleted, "raw count keeps the real value")
}

func TestTaskService_EmptyProgressRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	task := pendingTask(t, svc, 10, "2")

	_, err := svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{})
	require.Error(t, err)
}

func TestTaskService_QualityCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	task := pendingTask(t, svc, 10, "2")
	_, err := svc.Approve(testCtx(), task.ID, "")
	require.NoError(t, err)
	_, err = svc.Start(testCtx(), task.ID)
	require.NoError(t, err)

	// inspection before completion is rejected
	_, err = svc.RecordQualityCheck(testCtx(), task.ID, 0, "")
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TASK_NOT_COMPLETED", appErr.Code)

	_, err = svc.AddDailyProgress(testCtx(), task.ID, DailyProgress{PiecesCompleted: 10})
	require.NoError(t, err)
	_, err = svc.Complete(testCtx(), task.ID, "")
	require.NoError(t, err)

	_, err = svc.RecordQualityCheck(testCtx(), task.ID, 12, "")
	require.Error(t, err, "cannot reject more than was completed")

	task, err = svc.RecordQualityCheck(testCtx(), task.ID, 2, "loose seams on 2 pieces")
	require.NoError(t, err)
	assert.True(t, task.QualityChecked)
	assert.Equal(t, int64(2), task.PiecesRejected)
	assert.Equal(t, "loose seams on 2 pieces", task.QualityNotes)
}

func TestTaskService_SetWage(t *testing.T) {
	svc, _, _ := newTestService(t)
	task := pendingTask(t, svc, 40, "5")

	task, err := svc.SetWage(testCtx(), task.ID, types.MustMoney("6.25"))
	require.NoError(t, err)
	// wage is rederived: 40 x 6.25
	assert.True(t, task.TotalWage.Equal(types.MustMoney("250")), "got %s", task.TotalWage)

	_, err = svc.Approve(testCtx(), task.ID, "")
	require.NoError(t, err)
	_, err = svc.Start(testCtx(), task.ID)
	require.NoError(t, err)

	_, err = svc.SetWage(testCtx(), task.ID, types.MustMoney("1"))
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TASK_WAGE_LOCKED", appErr.Code)
}

func TestTaskService_RetryOnVersionConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	task := pendingTask(t, svc, 10, "2")

	repo.mu.Lock()
	repo.failUpdates = 2
	repo.mu.Unlock()

	updated, err := svc.Approve(testCtx(), task.ID, "")
	require.NoError(t, err)
	assert.Equal(t, status.TaskApproved, updated.Status)

	repo.mu.Lock()
	repo.failUpdates = 10
	repo.mu.Unlock()

	_, err = svc.Start(testCtx(), task.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestRecomputeWage(t *testing.T) {
	task := NewTask(id.New(), id.New(), id.New(), 7, types.MustMoney("3.3333"))
	assert.True(t, task.TotalWage.Equal(types.MustMoney("23.3331")), "got %s", task.TotalWage)

	task.Quantity = 9
	RecomputeWage(task)
	assert.True(t, task.TotalWage.Equal(types.MustMoney("29.9997")), "got %s", task.TotalWage)
}
