package payment

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize(1500)

	assert.Equal(t, 1500.0, s.Subtotal)
	assert.Equal(t, 75.0, s.ServiceFee)
	assert.Equal(t, 1575.0, s.Total)
	assert.Equal(t, "PKR", s.Currency)
	assert.Equal(t, []Method{MethodCash, MethodCard}, s.Methods)
}

func TestSummarize_Rounds(t *testing.T) {
	s := Summarize(333.4)

	assert.Equal(t, 16.67, s.ServiceFee)
	assert.Equal(t, 350.07, s.Total)
}

func TestSummarizeEarnings(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	payouts := []Payout{
		{TaskID: "a", Amount: 1000, CompletedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{TaskID: "b", Amount: 2500, CompletedAt: time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)},
		{TaskID: "c", Amount: 400, CompletedAt: time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)},
	}

	e := SummarizeEarnings(payouts, now)

	assert.Equal(t, 3900.0, e.Total)
	assert.Equal(t, 1000.0, e.ThisMonth)
	assert.Equal(t, 2500.0, e.LastMonth)
	assert.Equal(t, 3, e.CompletedJobs)
}

func TestSummarizeEarnings_January(t *testing.T) {
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	payouts := []Payout{{Amount: 700, CompletedAt: time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)}}

	e := SummarizeEarnings(payouts, now)

	assert.Equal(t, 700.0, e.LastMonth)
	assert.Zero(t, e.ThisMonth)
}

func TestSummarizeEarnings_Empty(t *testing.T) {
	e := SummarizeEarnings(nil, time.Now())

	assert.NotNil(t, e.History)
	assert.Zero(t, e.Total)
}

func TestService_TaskSummary(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	customer := dbtest.InsertUser(t, conn, "customer", "Ayesha")
	worker := dbtest.InsertUser(t, conn, "worker", "Bilal", "Plumber")
	stranger := dbtest.InsertUser(t, conn, "customer", "Sara")

	assigned := dbtest.InsertTask(t, conn, customer, "Plumber", "in-progress", worker)
	dbtest.InsertBid(t, conn, assigned, worker, 2000, true)
	open := dbtest.InsertTask(t, conn, customer, "Plumber", "pending", "")
	dbtest.InsertBid(t, conn, open, worker, 1800, false)

	svc := NewPaymentService(NewPaymentRepository(), conn)

	summary, err := svc.TaskSummary(ctx, customer, assigned)
	require.NoError(t, err)
	assert.Equal(t, 2100.0, summary.Total)

	summary, err = svc.TaskSummary(ctx, worker, assigned)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.ServiceFee)

	_, err = svc.TaskSummary(ctx, stranger, assigned)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.TaskSummary(ctx, customer, open)
	assert.ErrorIs(t, err, ErrNoAcceptedBid)

	_, err = svc.TaskSummary(ctx, customer, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestService_WorkerEarnings(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	customer := dbtest.InsertUser(t, conn, "customer", "Ayesha")
	worker := dbtest.InsertUser(t, conn, "worker", "Bilal", "Plumber")

	done := dbtest.InsertTask(t, conn, customer, "Plumber", "completed", worker)
	dbtest.InsertBid(t, conn, done, worker, 2000, true)
	ongoing := dbtest.InsertTask(t, conn, customer, "Plumber", "in-progress", worker)
	dbtest.InsertBid(t, conn, ongoing, worker, 900, true)

	earnings, err := NewPaymentService(NewPaymentRepository(), conn).WorkerEarnings(ctx, worker)

	require.NoError(t, err)
	assert.Equal(t, 2000.0, earnings.Total)
	assert.Equal(t, 1, earnings.CompletedJobs)
	require.Len(t, earnings.History, 1)
	assert.Equal(t, done, earnings.History[0].TaskID)
}
