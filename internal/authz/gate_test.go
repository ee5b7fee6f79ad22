package authz_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/rbac-admin/internal/authz"
)

var _ = Describe("Gate", func() {
	var (
		gate          *authz.Gate
		handlerCalled bool
		next          http.Handler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		gate = authz.NewGate(logger)
		handlerCalled = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})
	})

	It("returns 401 when no user is in the context", func() {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()

		gate.Require(authz.PermUserList)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("authentication required"))
		Expect(handlerCalled).To(BeFalse())
	})

	It("returns 403 when the user lacks the permission", func() {
		user := &authz.User{ID: 7, Permissions: []string{"role-list"}}
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		gate.Require(authz.PermUserList)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("forbidden"))
		Expect(handlerCalled).To(BeFalse())
	})

	It("calls the handler when the permission is held", func() {
		user := &authz.User{ID: 7, Permissions: []string{"user-list"}}
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		gate.Require(authz.PermUserList)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(handlerCalled).To(BeTrue())
	})

	It("passes RequireAny when one of the permissions is held", func() {
		user := &authz.User{ID: 7, Permissions: []string{"user-create"}}
		req := httptest.NewRequest(http.MethodGet, "/admin/roles/all", nil)
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		gate.RequireAny(authz.PermRoleList, authz.PermUserCreate)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(handlerCalled).To(BeTrue())
	})

	It("rejects RequireAny with 403 when none are held", func() {
		user := &authz.User{ID: 7, Permissions: []string{"permission-list"}}
		req := httptest.NewRequest(http.MethodGet, "/admin/roles/all", nil)
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		gate.RequireAny(authz.PermRoleList, authz.PermUserCreate)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(handlerCalled).To(BeFalse())
	})

	It("checks permission exactly, not by prefix", func() {
		user := &authz.User{ID: 7, Permissions: []string{"user-listing"}}
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		gate.Require(authz.PermUserList)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(handlerCalled).To(BeFalse())
	})
})
