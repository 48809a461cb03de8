package tenants

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/users"
)

func openGate(authority.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newHandlerFixture(t *testing.T) (*mux.Router, sqlmock.Sqlmock, func()) {
	svc, mock, db := newMockService(t)
	handlers := NewHandlers(svc, nil)

	router := mux.NewRouter()
	handlers.RegisterRoutes(router, httputil.Gate(openGate))
	return router, mock, func() { db.Close() }
}

func TestHandlersCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, mock, cleanup := newHandlerFixture(t)
		defer cleanup()

		expectNameExists(mock, "Acme Corp", false)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO tenants`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`INSERT INTO roles`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectExec(`INSERT INTO user_roles`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		r := httptest.NewRequest("POST", "/tenants", strings.NewReader(`{"name":"Acme Corp"}`))
		ctx := contextkeys.WithActingUser(r.Context(), &users.User{ID: 5})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"Acme Corp"`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires identity", func(t *testing.T) {
		router, _, cleanup := newHandlerFixture(t)
		defer cleanup()

		r := httptest.NewRequest("POST", "/tenants", strings.NewReader(`{"name":"Acme Corp"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("blank name maps to 400", func(t *testing.T) {
		router, _, cleanup := newHandlerFixture(t)
		defer cleanup()

		r := httptest.NewRequest("POST", "/tenants", strings.NewReader(`{"name":"  "}`))
		ctx := contextkeys.WithActingUser(r.Context(), &users.User{ID: 5})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"tenant_name_required"`)
	})
}

func TestHandlersRename(t *testing.T) {
	now := time.Now()

	t.Run("renames the acting tenant", func(t *testing.T) {
		router, mock, cleanup := newHandlerFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, name, created_at, updated_at FROM tenants WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
				AddRow(7, "Acme Corp", now, now))
		expectNameExists(mock, "Acme Inc", false)
		mock.ExpectExec(`UPDATE tenants SET name = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		r := httptest.NewRequest("PUT", "/tenants", strings.NewReader(`{"id":7,"name":"Acme Inc"}`))
		ctx := contextkeys.WithTenant(r.Context(), 7)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"Acme Inc"`)
	})

	t.Run("body must name the acting tenant", func(t *testing.T) {
		router, _, cleanup := newHandlerFixture(t)
		defer cleanup()

		r := httptest.NewRequest("PUT", "/tenants", strings.NewReader(`{"id":8,"name":"Acme Inc"}`))
		ctx := contextkeys.WithTenant(r.Context(), 7)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing tenant context is forbidden", func(t *testing.T) {
		router, _, cleanup := newHandlerFixture(t)
		defer cleanup()

		r := httptest.NewRequest("PUT", "/tenants", strings.NewReader(`{"id":7,"name":"Acme Inc"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
