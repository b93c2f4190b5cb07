package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "api-test-secret"

// testEnv bundles a router with its backing in-memory store and cache
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	rdb    *redis.Client
}

// newTestEnv wires the full route table against an in-memory sqlite database
// and a miniredis instance
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// A pooled second connection would see a different in-memory database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&domain.User{}, &domain.Expense{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	RegisterRoutes(r, gdb, rdb, testSecret)
	return &testEnv{router: r, db: gdb, rdb: rdb}
}

// request performs a JSON request against the router, optionally authenticated
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// newUser seeds a user directly in the store and returns its ID and a token
func (e *testEnv) newUser(t *testing.T, email string) (uint, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{Email: email, Password: string(hash), Name: "Test User"}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.ID, testSecret)
	require.NoError(t, err)
	return user.ID, token
}

// seedExpense inserts an expense directly in the store
func (e *testEnv) seedExpense(t *testing.T, userID uint, title string, amount float64, typ string, date time.Time) domain.Expense {
	t.Helper()
	expense := domain.Expense{
		Title:  title,
		Amount: amount,
		Date:   date,
		Type:   typ,
		UserID: userID,
	}
	require.NoError(t, e.db.Create(&expense).Error)
	return expense
}

// decodeBody unmarshals a JSON response body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// expenseCount counts the caller's stored expenses
func (e *testEnv) expenseCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&domain.Expense{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}
