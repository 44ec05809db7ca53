package domain

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review is a user's scored opinion of a title. The pair (AuthorID, TitleID)
// is unique.
type Review struct {
	ID        string
	TitleID   string
	AuthorID  string
	Author    string // username, resolved on read
	Text      string
	Score     int
	CreatedAt time.Time
}

// Comment belongs to a review and is removed together with it.
type Comment struct {
	ID        string
	ReviewID  string
	AuthorID  string
	Author    string
	Text      string
	CreatedAt time.Time
}

func ValidateScore(score int, ve *ValidationError) {
	if score < MinScore || score > MaxScore {
		ve.Add("score", "score must be between 1 and 10")
	}
}

func ValidateText(text string, ve *ValidationError) {
	if text == "" {
		ve.Add("text", "this field is required")
	}
}

// MeanScore returns the arithmetic mean of sum over count, or nil when count
// is zero. Zero reviews must never read as a rating of 0.
func MeanScore(sum, count int64) *float64 {
	if count == 0 {
		return nil
	}
	mean := float64(sum) / float64(count)
	return &mean
}
