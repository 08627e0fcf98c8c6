package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-crud-service/internal/adapter/db/postgres"
	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/usecase/user"
)

func setupBenchmarkRouter(b *testing.B) *gin.Engine {
	b.Helper()
	gin.SetMode(gin.ReleaseMode)
	log := zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard, TranslateError: true})
	if err != nil {
		b.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	b.Cleanup(func() { _ = sqlDB.Close() })
	if err := postgres.AutoMigrate(db); err != nil {
		b.Fatal(err)
	}

	uc := user.New(postgres.NewUserRepoPG(db, log), log)
	return SetupRouter(handler.NewUserHandler(uc, log), Options{}, log)
}

func serve(r *gin.Engine, method, target, body string) int {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func BenchmarkCreateUser(b *testing.B) {
	r := setupBenchmarkRouter(b)
	var seq atomic.Int64

	for b.Loop() {
		n := seq.Add(1)
		body := fmt.Sprintf(`{"name":"Bench User","email":"bench%d@example.com"}`, n)
		if code := serve(r, http.MethodPost, "/users", body); code != http.StatusCreated {
			b.Fatalf("unexpected status %d", code)
		}
	}
}

func BenchmarkGetUser(b *testing.B) {
	r := setupBenchmarkRouter(b)
	if code := serve(r, http.MethodPost, "/users", `{"name":"Bench User","email":"bench@example.com"}`); code != http.StatusCreated {
		b.Fatalf("seed failed with status %d", code)
	}

	for b.Loop() {
		if code := serve(r, http.MethodGet, "/users/1", ""); code != http.StatusOK {
			b.Fatalf("unexpected status %d", code)
		}
	}
}

func BenchmarkListUsers(b *testing.B) {
	r := setupBenchmarkRouter(b)
	for i := range 200 {
		serve(r, http.MethodPost, "/users", fmt.Sprintf(`{"name":"User %03d","email":"user%d@example.com"}`, i, i))
	}

	for b.Loop() {
		if code := serve(r, http.MethodGet, "/users?limit=20&sortBy=name&sortOrder=desc&search=user", ""); code != http.StatusOK {
			b.Fatalf("unexpected status %d", code)
		}
	}
}

func BenchmarkValidationFailure(b *testing.B) {
	r := setupBenchmarkRouter(b)

	for b.Loop() {
		if code := serve(r, http.MethodPost, "/users", `{"name":"A","email":"nope"}`); code != http.StatusBadRequest {
			b.Fatalf("unexpected status %d", code)
		}
	}
}
