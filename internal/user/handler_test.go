package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/crm-auth/internal/auth"
	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("UserHandler", func() {
	var (
		router   *chi.Mux
		mockRepo *mockRepository
		actor    *auth.User
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRepository()
		policy := auth.NewABACPolicy(auth.NewPermissionChecker())
		svc := NewService(mockRepo, stubPositions{}, auth.NewBcryptHasher(bcrypt.MinCost), policy, nil, logger.Discard())
		h := NewHandler(transport.NewBaseHandler(logger.Discard()), svc)
		actor = &auth.User{ID: "u-admin", Position: adminPosition, IsActive: true}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), actor)))
			})
		})
		router.Get("/api/users", h.ListUsers)
		router.Post("/api/users", h.CreateUser)
		router.Get("/api/users/{id}", h.GetUser)
		router.Patch("/api/users/{id}/position", h.AssignPosition)
		router.Patch("/api/users/{id}/deactivate", h.DeactivateUser)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	ginkgo.It("should list users", func() {
		w := do(http.MethodGet, "/api/users", nil)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var users []map[string]interface{}
		gomega.Expect(json.Unmarshal(w.Body.Bytes(), &users)).To(gomega.Succeed())
		gomega.Expect(users).To(gomega.HaveLen(1))
		gomega.Expect(users[0]["email"]).To(gomega.Equal("agent@example.com"))
	})

	ginkgo.It("should create a user and answer 201", func() {
		w := do(http.MethodPost, "/api/users", CreateUserDTO{Email: "new@example.com", FullName: "New", Password: "long-enough-pw"})

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(w.Body.String()).ToNot(gomega.ContainSubstring("long-enough-pw"))
	})

	ginkgo.It("should answer 409 for a taken email", func() {
		w := do(http.MethodPost, "/api/users", CreateUserDTO{Email: "agent@example.com", FullName: "Dup", Password: "long-enough-pw"})

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.It("should reassign a position", func() {
		w := do(http.MethodPatch, "/api/users/u-agent/position", AssignPositionDTO{PositionID: managerPosition.ID})

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(*mockRepo.users["u-agent"].PositionID).To(gomega.Equal(managerPosition.ID))
	})

	ginkgo.It("should answer 400 without a position id and 404 for unknown ones", func() {
		gomega.Expect(do(http.MethodPatch, "/api/users/u-agent/position", map[string]int{}).Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(do(http.MethodPatch, "/api/users/u-agent/position", AssignPositionDTO{PositionID: 42}).Code).To(gomega.Equal(http.StatusNotFound))
	})

	ginkgo.It("should deactivate with 204 and forbid self deactivation", func() {
		gomega.Expect(do(http.MethodPatch, "/api/users/u-agent/deactivate", nil).Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(do(http.MethodPatch, "/api/users/u-admin/deactivate", nil).Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should answer 404 for unknown users", func() {
		gomega.Expect(do(http.MethodGet, "/api/users/nope", nil).Code).To(gomega.Equal(http.StatusNotFound))
	})
})
