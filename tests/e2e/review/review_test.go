//go:build e2e

package review_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/dto/response"
	"storefront-core/tests/common/builder"
	"storefront-core/tests/common/dbtest"
	"storefront-core/tests/common/httptest"
	"storefront-core/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reviewURL  = "/api/products/%s/review"
	reviewsURL = "/api/products/%s/reviews"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type ReviewSuite struct {
	e2e.SharedSuite
}

func TestReviewSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReviewSuite))
}

// completedPurchase places an order for productID and drives it to completed.
func (s *ReviewSuite) completedPurchase(t *testing.T, buyer, admin string, productID uuid.UUID) {
	t.Helper()
	req := builder.NewOrderBuilder().WithProduct(productID).BuildPlaceOrderRequestDTO()
	var placed response.OrderResponse
	httptest.AssertSuccessResponse(t,
		httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/orders", req, buyer), http.StatusCreated, &placed)

	w := httptest.PerformRequest(t, s.Router, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
		map[string]any{"status": "delivered"}, admin)
	httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)

	w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/orders/"+placed.ID+"/confirm-receipt", nil, buyer)
	httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)
}

func (s *ReviewSuite) tokens(t *testing.T) (buyer, admin string) {
	buyerID := dbtest.CreateTestUser(t, s.DB, "reviewer@example.com", string(user.RoleUser))
	adminID := dbtest.CreateTestUser(t, s.DB, "admin@example.com", string(user.RoleAdmin))
	return s.JWT.GenerateToken(t, buyerID, user.RoleUser), s.JWT.GenerateToken(t, adminID, user.RoleAdmin)
}

func (s *ReviewSuite) TestSubmitReview() {
	s.Run("Normal case: verified buyer creates then edits a review", func() {
		t := s.T()
		buyer, admin := s.tokens(t)
		productID := uuid.New()
		s.completedPurchase(t, buyer, admin, productID)

		w := httptest.PerformMultipart(t, s.Router, http.MethodPut, fmt.Sprintf(reviewURL, productID),
			[][2]string{{"rating", "4"}, {"comment", "Rich crema"}},
			[]httptest.FormFile{{Field: "images", Filename: "cup.png", ContentType: "image/png", Data: pngHeader}},
			buyer)
		var created response.ReviewResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
		require.Equal(t, 4, created.Rating)
		require.Len(t, created.Images, 1)

		w = httptest.PerformMultipart(t, s.Router, http.MethodPut, fmt.Sprintf(reviewURL, productID),
			[][2]string{{"rating", "5"}, {"retain_image_ids", created.Images[0].ID}}, nil, buyer)
		var edited response.ReviewResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &edited)
		require.Equal(t, created.ID, edited.ID)
		require.Equal(t, 5, edited.Rating)
		require.Equal(t, created.Images, edited.Images, "retained image keeps its id and url")

		var list response.ReviewListResponse
		httptest.AssertSuccessResponse(t,
			httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reviewsURL, productID), nil, ""),
			http.StatusOK, &list)
		require.Len(t, list.Reviews, 1)
	})

	s.Run("Error case: no completed order for the product", func() {
		t := s.T()
		buyer, admin := s.tokens(t)
		s.completedPurchase(t, buyer, admin, uuid.New())

		w := httptest.PerformMultipart(t, s.Router, http.MethodPut, fmt.Sprintf(reviewURL, uuid.New()),
			[][2]string{{"rating", "5"}}, nil, buyer)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "NOT_ELIGIBLE")
	})

	s.Run("Error case: rating out of range", func() {
		t := s.T()
		buyer, admin := s.tokens(t)
		productID := uuid.New()
		s.completedPurchase(t, buyer, admin, productID)

		w := httptest.PerformMultipart(t, s.Router, http.MethodPut, fmt.Sprintf(reviewURL, productID),
			[][2]string{{"rating", "6"}}, nil, buyer)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "INVALID_INPUT")
	})

	s.Run("Edge case: concurrent first submissions yield one review", func() {
		t := s.T()
		buyer, admin := s.tokens(t)
		productID := uuid.New()
		s.completedPurchase(t, buyer, admin, productID)

		const n = 4
		codes := make([]int, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformMultipart(t, s.Router, http.MethodPut, fmt.Sprintf(reviewURL, productID),
					[][2]string{{"rating", "3"}}, nil, buyer)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		for _, code := range codes {
			require.Contains(t, []int{http.StatusCreated, http.StatusOK, http.StatusConflict}, code)
		}

		var list response.ReviewListResponse
		httptest.AssertSuccessResponse(t,
			httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reviewsURL, productID), nil, ""),
			http.StatusOK, &list)
		require.Len(t, list.Reviews, 1)
	})
}
