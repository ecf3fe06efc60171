package response

import (
	"time"

	"storefront-core/internal/usecase/queries"
)

type ReviewImageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ReviewResponse struct {
	ID        string                `json:"id"`
	ProductID string                `json:"product_id"`
	UserID    string                `json:"user_id"`
	Rating    int                   `json:"rating"`
	Comment   string                `json:"comment"`
	Images    []ReviewImageResponse `json:"images"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
}

func FromReviewView(v *queries.ReviewView) (*ReviewResponse, error) {
	var res ReviewResponse
	if err := mapInto(&res, v); err != nil {
		return nil, err
	}
	if res.Images == nil {
		res.Images = []ReviewImageResponse{}
	}
	return &res, nil
}

func FromReviewViews(views []*queries.ReviewView) (*ReviewListResponse, error) {
	res := &ReviewListResponse{Reviews: make([]*ReviewResponse, 0, len(views))}
	for _, v := range views {
		r, err := FromReviewView(v)
		if err != nil {
			return nil, err
		}
		res.Reviews = append(res.Reviews, r)
	}
	return res, nil
}
