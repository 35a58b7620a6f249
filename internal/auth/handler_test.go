package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var body errorBody
	gomega.Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(gomega.Succeed())
	return body
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	b, err := json.Marshal(payload)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler  *Handler
		mockRepo *mockRepository
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRepository()
		tokenGen = NewJWTTokenGenerator(testSecret, time.Hour, 24*time.Hour)
		svc := NewService(mockRepo, stubPositions{}, tokenGen, NewBcryptHasher(bcrypt.MinCost), nil, logger.Discard())
		handler = NewHandler(transport.NewBaseHandler(logger.Discard()), svc)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return user, token and refreshToken", func() {
			w := httptest.NewRecorder()
			handler.Login(w, jsonRequest(http.MethodPost, "/api/auth/login", LoginDTO{Email: "agent@example.com", Password: "correct_password"}))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var body map[string]interface{}
			gomega.Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body).To(gomega.HaveKey("token"))
			gomega.Expect(body).To(gomega.HaveKey("refreshToken"))
			user := body["user"].(map[string]interface{})
			gomega.Expect(user["id"]).To(gomega.Equal("u-agent"))
			gomega.Expect(user["fullName"]).To(gomega.Equal("Agent"))
			gomega.Expect(user["position"].(map[string]interface{})["is_admin"]).To(gomega.BeFalse())
		})

		ginkgo.It("should answer 400 on missing fields", func() {
			w := httptest.NewRecorder()
			handler.Login(w, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"email": "agent@example.com"}))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decodeError(w).Error.Message).To(gomega.Equal("email and password required"))
		})

		ginkgo.It("should answer 400 on a malformed body", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should answer 401 with the same message for unknown email and wrong password", func() {
			w1 := httptest.NewRecorder()
			handler.Login(w1, jsonRequest(http.MethodPost, "/api/auth/login", LoginDTO{Email: "nobody@example.com", Password: "x"}))
			w2 := httptest.NewRecorder()
			handler.Login(w2, jsonRequest(http.MethodPost, "/api/auth/login", LoginDTO{Email: "agent@example.com", Password: "x"}))

			gomega.Expect(w1.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(w2.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(w1.Body.String()).To(gomega.Equal(w2.Body.String()))
			gomega.Expect(decodeError(w1).Error.Message).To(gomega.Equal("Invalid email or password"))
		})
	})

	ginkgo.Describe("RefreshToken", func() {
		ginkgo.It("should return a rotated pair", func() {
			refresh, _ := tokenGen.GenerateRefreshToken("u-agent", "agent@example.com")
			w := httptest.NewRecorder()

			handler.RefreshToken(w, jsonRequest(http.MethodPost, "/api/auth/refresh", RefreshTokenDTO{RefreshToken: refresh}))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var tokens AuthTokens
			gomega.Expect(json.Unmarshal(w.Body.Bytes(), &tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should answer 401 for an access token", func() {
			access, _ := tokenGen.GenerateAccessToken("u-agent", "agent@example.com")
			w := httptest.NewRecorder()

			handler.RefreshToken(w, jsonRequest(http.MethodPost, "/api/auth/refresh", RefreshTokenDTO{RefreshToken: access}))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should answer 400 when the field is missing", func() {
			w := httptest.NewRecorder()

			handler.RefreshToken(w, jsonRequest(http.MethodPost, "/api/auth/refresh", map[string]string{}))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			reached *User
			next    http.Handler
		)

		ginkgo.BeforeEach(func() {
			reached = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
		})

		serve := func(authHeader string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if authHeader != "" {
				req.Header.Set("Authorization", authHeader)
			}
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, req)
			return w
		}

		ginkgo.It("should attach the principal for a valid token", func() {
			access, _ := tokenGen.GenerateAccessToken("u-admin", "admin@example.com")

			w := serve("Bearer " + access)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached).ToNot(gomega.BeNil())
			gomega.Expect(reached.ID).To(gomega.Equal("u-admin"))
		})

		ginkgo.It("should answer 401 authentication required without a bearer token", func() {
			for _, header := range []string{"", "Basic abc", "Bearer"} {
				w := serve(header)
				gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized), header)
				gomega.Expect(decodeError(w).Error.Message).To(gomega.Equal("authentication required"))
			}
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("should answer 401 for expired or refresh tokens", func() {
			expired := NewJWTTokenGenerator(testSecret, -time.Minute, time.Hour)
			expiredToken, _ := expired.GenerateAccessToken("u-admin", "admin@example.com")
			refresh, _ := tokenGen.GenerateRefreshToken("u-admin", "admin@example.com")

			for _, token := range []string{expiredToken, refresh, "garbage"} {
				w := serve("Bearer " + token)
				gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
				gomega.Expect(decodeError(w).Error.Message).To(gomega.Equal("invalid or expired token"))
			}
		})

		ginkgo.It("should answer 403 for deleted and inactive users", func() {
			gone, _ := tokenGen.GenerateAccessToken("u-gone", "gone@example.com")
			inactive, _ := tokenGen.GenerateAccessToken("u-inactive", "inactive@example.com")

			w := serve("Bearer " + gone)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeError(w).Error.Message).To(gomega.Equal("user no longer exists"))

			w = serve("Bearer " + inactive)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeError(w).Error.Message).To(gomega.Equal("user account is inactive"))
		})

		ginkgo.It("should not repair positions on the request path", func() {
			access, _ := tokenGen.GenerateAccessToken("u-agent", "agent@example.com")

			serve("Bearer " + access)

			gomega.Expect(mockRepo.updated).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Me", func() {
		ginkgo.It("should render the principal with its resolved position", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req = req.WithContext(ContextWithUser(context.Background(), &User{ID: "u-agent", Email: "agent@example.com", FullName: "Agent", Role: "agent"}))
			w := httptest.NewRecorder()

			handler.Me(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var view map[string]interface{}
			gomega.Expect(json.Unmarshal(w.Body.Bytes(), &view)).To(gomega.Succeed())
			gomega.Expect(view).To(gomega.HaveKeyWithValue("email", "agent@example.com"))
			gomega.Expect(view["position"].(map[string]interface{})["name"]).To(gomega.Equal("Agent"))
			gomega.Expect(view).ToNot(gomega.HaveKey("role"))
		})

		ginkgo.It("should answer 401 without a principal", func() {
			w := httptest.NewRecorder()
			handler.Me(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should answer 204 for a valid access token", func() {
			access, _ := tokenGen.GenerateAccessToken("u-agent", "agent@example.com")
			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			w := httptest.NewRecorder()

			handler.Logout(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
		})

		ginkgo.It("should answer 401 without a token", func() {
			w := httptest.NewRecorder()
			handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("should answer 204 and update the credential", func() {
			req := jsonRequest(http.MethodPost, "/api/auth/change-password", ChangePasswordDTO{CurrentPassword: "correct_password", NewPassword: "another-secret"})
			req = req.WithContext(ContextWithUser(req.Context(), mockRepo.users["u-agent"]))
			w := httptest.NewRecorder()

			handler.ChangePassword(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(VerifyPassword(mockRepo.credentials["agent@example.com"].PasswordHash, "another-secret")).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var (
		rbac *RBACAuthorization
		ok   http.Handler
	)

	ginkgo.BeforeEach(func() {
		rbac = NewRBACAuthorization(NewPermissionChecker(), logger.Discard())
		ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serveAs := func(mw func(http.Handler) http.Handler, u *User) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(ContextWithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		mw(ok).ServeHTTP(w, req)
		return w.Code
	}

	ginkgo.It("should answer 401 without a principal", func() {
		gomega.Expect(serveAs(rbac.RequirePermission("users", "view"), nil)).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should enforce section and action permissions", func() {
		agent := &User{ID: "u-1", Position: agentPosition}
		admin := &User{ID: "u-2", Position: adminPosition}

		gomega.Expect(serveAs(rbac.RequirePermission("users", "create"), agent)).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(serveAs(rbac.RequirePermission("dashboard", "view"), agent)).To(gomega.Equal(http.StatusOK))
		gomega.Expect(serveAs(rbac.RequirePermission("users", "create"), admin)).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should gate manager and admin routes", func() {
		agent := &User{ID: "u-1", Position: agentPosition}
		admin := &User{ID: "u-2", Position: adminPosition}

		gomega.Expect(serveAs(rbac.RequireManager(), agent)).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(serveAs(rbac.RequireManager(), admin)).To(gomega.Equal(http.StatusOK))
		gomega.Expect(serveAs(rbac.RequireAdmin(), agent)).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(serveAs(rbac.RequireAdmin(), admin)).To(gomega.Equal(http.StatusOK))
	})
})
