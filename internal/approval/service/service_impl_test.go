package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/dispenseid"
	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	approvalrepository "github.com/pharmadesk/pharmadesk/internal/approval/repository"
)

type idgenStub struct {
	mu  sync.Mutex
	ids []string
}

func (g *idgenStub) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return ""
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id
}

func setupApprovalService(t *testing.T, idgen domain.IdentifierGenerator) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	prepareApprovalSchema(t, conn)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))

	if idgen == nil {
		idgen = dispenseid.New(clk, 42)
	}

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  approvalrepository.Provide(),
		IDGen: idgen,
		Clock: clk,
	})

	return svc, conn, clk
}

func prepareApprovalSchema(t *testing.T, conn *gorm.DB) {
	t.Helper()

	require.NoError(t, conn.Exec(`CREATE TABLE payment_approvals (
		id INTEGER PRIMARY KEY,
		dispense_id TEXT NOT NULL DEFAULT '',
		approved_by TEXT NOT NULL,
		created_by TEXT NOT NULL,
		approved_amount NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		dispensed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX idx_payment_approvals_dispense_id
		ON payment_approvals (dispense_id) WHERE dispense_id <> ''`).Error)
}

func TestCreateAssignsDispenseID(t *testing.T) {
	svc, conn, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(125000),
	})
	require.NoError(t, err)

	assert.True(t, dispenseid.Valid(approval.DispenseID), "unexpected identifier %q", approval.DispenseID)
	assert.Equal(t, domain.StatusPending, approval.Status)
	assert.Equal(t, "budi", approval.ApprovedBy)
	assert.Equal(t, "budi", approval.CreatedBy, "created_by defaults to approved_by")
	assert.Nil(t, approval.DispensedAt)

	var stored string
	require.NoError(t, conn.Raw(`SELECT dispense_id FROM payment_approvals WHERE id = ?`, approval.ID).Scan(&stored).Error)
	assert.Equal(t, approval.DispenseID, stored)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	t.Run("empty approver", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateApprovalRequest{
			ApprovedBy:     "   ",
			ApprovedAmount: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidApprover)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateApprovalRequest{
			ApprovedBy:     "budi",
			ApprovedAmount: decimal.NewFromInt(-1),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("zero amount is accepted at creation", func(t *testing.T) {
		approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
			ApprovedBy: "budi",
		})
		require.NoError(t, err)
		assert.True(t, approval.ApprovedAmount.IsZero())
	})
}

func TestCreateCorrectiveAssignment(t *testing.T) {
	// First Generate call fails, so the row goes in with an empty
	// identifier and the corrective update supplies one.
	idgen := &idgenStub{ids: []string{"", "DISP-2026-0042"}}
	svc, conn, _ := setupApprovalService(t, idgen)

	approval, err := svc.Create(context.Background(), domain.CreateApprovalRequest{
		ApprovedBy:     "sari",
		ApprovedAmount: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, "DISP-2026-0042", approval.DispenseID)

	var stored string
	require.NoError(t, conn.Raw(`SELECT dispense_id FROM payment_approvals WHERE id = ?`, approval.ID).Scan(&stored).Error)
	assert.Equal(t, "DISP-2026-0042", stored)
}

func TestCreateGeneratorFailure(t *testing.T) {
	idgen := &idgenStub{}
	svc, _, _ := setupApprovalService(t, idgen)

	_, err := svc.Create(context.Background(), domain.CreateApprovalRequest{
		ApprovedBy:     "sari",
		ApprovedAmount: decimal.NewFromInt(50000),
	})
	assert.ErrorIs(t, err, domain.ErrIdentifierGeneration)
}

func TestCreateDuplicateDispenseID(t *testing.T) {
	idgen := &idgenStub{ids: []string{"DISP-2026-0007", "DISP-2026-0007"}}
	svc, _, _ := setupApprovalService(t, idgen)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "sari",
		ApprovedAmount: decimal.NewFromInt(200),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateDispenseID)
}

func TestApproveLifecycle(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(75000),
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, approval.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	t.Run("approve is not repeatable", func(t *testing.T) {
		_, err := svc.Approve(ctx, approval.ID.String())
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("reject after approve is refused", func(t *testing.T) {
		_, err := svc.Reject(ctx, approval.ID.String())
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})
}

func TestRejectLifecycle(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(75000),
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, approval.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	_, err = svc.Approve(ctx, approval.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestApproveRequiresPositiveAmount(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{ApprovedBy: "budi"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, approval.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	// Rejection of a zero-amount record is still allowed.
	rejected, err := svc.Reject(ctx, approval.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
}

func TestApproveRequiresDispenseID(t *testing.T) {
	svc, conn, clk := setupApprovalService(t, nil)
	ctx := context.Background()

	// A row stranded by a failed corrective assignment: pending, but
	// with no identifier.
	node, err := snowflake.NewNode(9)
	require.NoError(t, err)
	id := node.Generate()
	now := clk.Now()
	require.NoError(t, conn.Exec(
		`INSERT INTO payment_approvals (id, dispense_id, approved_by, created_by, approved_amount, status, created_at, updated_at)
		 VALUES (?, '', 'budi', 'budi', 150000, 'pending', ?, ?)`,
		id, now, now,
	).Error)

	_, err = svc.Approve(ctx, id.String())
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	var status string
	require.NoError(t, conn.Raw(`SELECT status FROM payment_approvals WHERE id = ?`, id).Scan(&status).Error)
	assert.Equal(t, "pending", status)

	// Rejection does not feed the approved aggregates and stays allowed.
	rejected, err := svc.Reject(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
}

func TestTransitionMissingRecord(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	_, err := svc.Approve(ctx, "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Approve(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestConcurrentApproveSingleWinner(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(ctx, approval.ID.String())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domain.ErrInvalidStateTransition):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one transition must win")
	assert.Equal(t, attempts-1, conflicts)
}

func TestGetByDispenseID(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
		ApprovedBy:     "budi",
		ApprovedAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	found, err := svc.GetByDispenseID(ctx, approval.DispenseID)
	require.NoError(t, err)
	assert.Equal(t, approval.ID, found.ID)

	_, err = svc.GetByDispenseID(ctx, "DISP-26-1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByDispenseID(ctx, "DISP-2026-9998")
	if err == nil {
		t.Skip("random identifier collided with the created record")
	}
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersAndPaging(t *testing.T) {
	svc, _, _ := setupApprovalService(t, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		approval, err := svc.Create(ctx, domain.CreateApprovalRequest{
			ApprovedBy:     "budi",
			ApprovedAmount: decimal.NewFromInt(int64(1000 * (i + 1))),
		})
		require.NoError(t, err)
		if i < 2 {
			_, err = svc.Approve(ctx, approval.ID.String())
			require.NoError(t, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListApprovalsRequest{
		Page:   pagination.Pagination{Page: 1, PerPage: 2},
		Status: string(domain.StatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.LastPage)
	assert.Len(t, resp.Approvals, 2)
	for _, item := range resp.Approvals {
		assert.Equal(t, domain.StatusPending, item.Status)
	}

	_, err = svc.List(ctx, domain.ListApprovalsRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
