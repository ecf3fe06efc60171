package review

import (
	"strconv"
	"strings"

	"storefront-core/internal/pkg/errs"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

var (
	ErrInvalidRating  = errs.Define("rating must be a whole number between 1 and 5", errs.ErrInvalidInput)
	ErrCommentTooLong = errs.Define("comment exceeds maximum length", errs.ErrInvalidInput)
)

type Rating struct {
	value int
}

func NewRating(v int) (Rating, error) {
	if v < MinRating || v > MaxRating {
		return Rating{}, ErrInvalidRating
	}
	return Rating{value: v}, nil
}

// ParseRating accepts the raw form value as submitted by the client.
func ParseRating(raw string) (Rating, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Rating{}, ErrInvalidRating
	}
	return NewRating(v)
}

func (r Rating) Value() int { return r.value }

// Comment may be empty.
type Comment struct {
	text string
}

func NewComment(s string) (Comment, error) {
	t := strings.TrimSpace(s)
	if len(t) > MaxCommentLength {
		return Comment{}, ErrCommentTooLong
	}
	return Comment{text: t}, nil
}

func (c Comment) String() string { return c.text }
func (c Comment) IsEmpty() bool  { return c.text == "" }

type Image struct {
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}
