package models

// Feed view modes.
const (
	ViewFeed      = "feed"
	ViewFollowing = "following"
	ViewSaved     = "saved"
	ViewTrending  = "trending"
)

// RecipePage is one page of recipes for any feed view.
type RecipePage struct {
	Recipes []RecipeView `json:"recipes"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	View    string       `json:"view"`
}

// Recommendation is the output of the follow-suggestion heuristic.
// SimilarAuthors lists authors of recipes the requester up-voted; it is
// reported alongside the ranked profiles but does not affect them.
type Recommendation struct {
	Profiles       []PublicProfile `json:"profiles"`
	SimilarAuthors []string        `json:"similar_authors"`
}
