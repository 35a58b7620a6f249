package position

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/crm-auth/internal/transport"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("PositionHandler", func() {
	var (
		handler  *Handler
		mockRepo *mockRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = &mockRepository{
			positions: []*Position{
				{ID: 1, Name: "Agent", Level: LevelAgent, Permissions: Permissions{"book": {"view": true}}},
				{ID: 6, Name: "Admin", Level: LevelAdmin, IsAdmin: true},
			},
		}
		handler = NewHandler(transport.NewBaseHandler(logger.Discard()), NewService(mockRepo, logger.Discard()))
	})

	ginkgo.It("should return positions as a JSON array", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/positions", nil).WithContext(context.Background())
		w := httptest.NewRecorder()

		// When
		handler.GetPositions(w, req)

		// Then
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var body []map[string]any
		gomega.Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(gomega.Succeed())
		gomega.Expect(body).To(gomega.HaveLen(2))
		gomega.Expect(body[0]["name"]).To(gomega.Equal("Agent"))
		gomega.Expect(body[1]["is_admin"]).To(gomega.BeTrue())
	})

	ginkgo.It("should answer 500 when the store fails", func() {
		mockRepo.setError(errors.New("db down"))
		req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
		w := httptest.NewRecorder()

		handler.GetPositions(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusInternalServerError))
		gomega.Expect(w.Body.String()).ToNot(gomega.ContainSubstring("db down"))
	})
})
