package api

import (
	"net/http"
	"testing"
	"time"

	"finance_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryBalance(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.newUser(t, "owner@example.com")
	env.seedExpense(t, userID, "Paycheck", 100, domain.TypeIncome, time.Now())
	env.seedExpense(t, userID, "Groceries", 40, domain.TypeExpense, time.Now())

	w := env.request(t, http.MethodGet, "/expense/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["summary"].(map[string]any)
	assert.Equal(t, 100.0, summary["totalIncome"])
	assert.Equal(t, 40.0, summary["totalExpenses"])
	assert.Equal(t, 60.0, summary["balance"])
}

func TestSummaryIsScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	userA, tokenA := env.newUser(t, "a@example.com")
	userB, _ := env.newUser(t, "b@example.com")
	env.seedExpense(t, userA, "Mine", 10, domain.TypeIncome, time.Now())
	env.seedExpense(t, userB, "Not mine", 1000, domain.TypeIncome, time.Now())

	w := env.request(t, http.MethodGet, "/expense/summary", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["summary"].(map[string]any)
	assert.Equal(t, 10.0, summary["totalIncome"])
}

func TestSummaryDateRange(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.newUser(t, "owner@example.com")
	inRange, err := time.Parse(time.RFC3339, "2026-02-10T00:00:00Z")
	require.NoError(t, err)
	outOfRange, err := time.Parse(time.RFC3339, "2026-05-10T00:00:00Z")
	require.NoError(t, err)
	env.seedExpense(t, userID, "February rent", 900, domain.TypeExpense, inRange)
	env.seedExpense(t, userID, "May rent", 950, domain.TypeExpense, outOfRange)

	w := env.request(t, http.MethodGet, "/expense/summary?start=2026-02-01&end=2026-02-28", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["summary"].(map[string]any)
	assert.Equal(t, 900.0, summary["totalExpenses"])
}

func TestSummaryRejectsBadDates(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "owner@example.com")

	w := env.request(t, http.MethodGet, "/expense/summary?start=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryCacheInvalidatedByMutation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "owner@example.com")

	w := env.request(t, http.MethodGet, "/expense/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["cached"])

	w = env.request(t, http.MethodGet, "/expense/summary", token, nil)
	assert.Equal(t, true, decodeBody(t, w)["cached"])

	wc := env.request(t, http.MethodPost, "/expense", token, map[string]any{
		"title": "New income", "amount": 10.0, "type": "income",
	})
	require.Equal(t, http.StatusCreated, wc.Code)

	w = env.request(t, http.MethodGet, "/expense/summary", token, nil)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, 10.0, body["summary"].(map[string]any)["totalIncome"])
}

func TestCategoryStats(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.newUser(t, "owner@example.com")
	env.seedExpense(t, userID, "Paycheck", 3000, domain.TypeIncome, time.Now())
	env.seedExpense(t, userID, "Bonus", 500, domain.TypeIncome, time.Now())
	env.seedExpense(t, userID, "Rent", 1000, domain.TypeExpense, time.Now())

	w := env.request(t, http.MethodGet, "/expense/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)["stats"].([]any)
	require.Len(t, stats, 2)

	// Sorted by total descending: income (3500) before expense (1000)
	income := stats[0].(map[string]any)
	assert.Equal(t, "income", income["type"])
	assert.Equal(t, 2.0, income["count"])
	assert.Equal(t, 3500.0, income["total"])
	assert.Equal(t, 1750.0, income["average"])
	assert.Equal(t, 3000.0, income["max"])
	assert.Equal(t, 500.0, income["min"])

	expense := stats[1].(map[string]any)
	assert.Equal(t, "expense", expense["type"])
	assert.Equal(t, 1000.0, expense["total"])
}

func TestCategoryStatsEmpty(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "owner@example.com")

	w := env.request(t, http.MethodGet, "/expense/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Empty(t, body["stats"])
}
