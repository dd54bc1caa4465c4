// Package testutil provides in-memory repository fakes for service and
// handler tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

// Store is an in-memory implementation of every repository interface. It
// enforces the same unique constraints as the SQL schema. Set Fail[method] to
// make that method return an error; Calls counts invocations per method.
type Store struct {
	mu sync.Mutex

	Profiles   map[string]*models.Profile
	Recipes    map[string]*models.Recipe
	Votes      map[string]*models.Vote
	Follows    map[string]*models.Follow
	Saved      map[string]*models.SavedRecipe
	Accounts   map[string]*models.Account
	Hashtags   []models.Hashtag
	Activities []models.Activity
	Avatars    map[string]StoredAvatar

	Fail  map[string]error
	Calls map[string]int

	clock time.Time
}

// StoredAvatar is an uploaded avatar held in memory.
type StoredAvatar struct {
	OwnerID     string
	ContentType string
	Data        []byte
}

func NewStore() *Store {
	return &Store{
		Profiles: make(map[string]*models.Profile),
		Recipes:  make(map[string]*models.Recipe),
		Votes:    make(map[string]*models.Vote),
		Follows:  make(map[string]*models.Follow),
		Saved:    make(map[string]*models.SavedRecipe),
		Accounts: make(map[string]*models.Account),
		Avatars:  make(map[string]StoredAvatar),
		Fail:     make(map[string]error),
		Calls:    make(map[string]int),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TotalCalls sums Calls across all methods.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		n += c
	}
	return n
}

func (s *Store) enter(method string) error {
	s.Calls[method]++
	return s.Fail[method]
}

// tick advances the fake clock so rows created later sort as newer.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// ---------------------------------------------------------------------------
// Seeding helpers
// ---------------------------------------------------------------------------

// AddProfile inserts a profile with a matching account.
func (s *Store) AddProfile(id, username string) *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	p := &models.Profile{ID: id, Username: username, CreatedAt: now, UpdatedAt: now}
	s.Profiles[id] = p
	if _, ok := s.Accounts[id]; !ok {
		s.Accounts[id] = &models.Account{ID: id, Email: id + "@example.com", Username: username, CreatedAt: now}
	}
	return p
}

// AddRecipe inserts a recipe created at the given time. A zero time uses the
// store clock.
func (s *Store) AddRecipe(id, ownerID string, public bool, createdAt time.Time) *models.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	if createdAt.IsZero() {
		createdAt = s.tick()
	}
	r := &models.Recipe{
		ID:          id,
		UserID:      ownerID,
		RecipeName:  "recipe " + id,
		Description: "description " + id,
		IsPublic:    public,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	s.Recipes[id] = r
	return r
}

func (s *Store) AddVote(recipeID, userID, voteType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &models.Vote{ID: uuid.NewString(), RecipeID: recipeID, UserID: userID, VoteType: voteType, CreatedAt: s.tick()}
	s.Votes[v.ID] = v
}

func (s *Store) AddFollow(followerID, followingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &models.Follow{ID: uuid.NewString(), FollowerID: followerID, FollowingID: followingID, CreatedAt: s.tick()}
	s.Follows[f.ID] = f
}

func (s *Store) AddSaved(userID, recipeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr := &models.SavedRecipe{ID: uuid.NewString(), UserID: userID, RecipeID: recipeID, CreatedAt: s.tick()}
	s.Saved[sr.ID] = sr
}

// VotesFor returns every vote row on recipeID.
func (s *Store) VotesFor(recipeID string) []models.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vote
	for _, v := range s.Votes {
		if v.RecipeID == recipeID {
			out = append(out, *v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// ProfileRepository
// ---------------------------------------------------------------------------

func (s *Store) CreateProfile(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateProfile"); err != nil {
		return err
	}
	if _, ok := s.Profiles[profile.ID]; ok {
		return repositories.ErrConflict
	}
	for _, p := range s.Profiles {
		if p.Username == profile.Username {
			return repositories.ErrConflict
		}
	}
	now := s.tick()
	profile.CreatedAt, profile.UpdatedAt = now, now
	cp := *profile
	s.Profiles[profile.ID] = &cp
	return nil
}

func (s *Store) GetProfileByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProfileByID"); err != nil {
		return nil, err
	}
	p, ok := s.Profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProfilesByIDs"); err != nil {
		return nil, err
	}
	var out []models.Profile
	for _, id := range ids {
		if p, ok := s.Profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Store) UpdateProfile(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateProfile"); err != nil {
		return err
	}
	p, ok := s.Profiles[profile.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, other := range s.Profiles {
		if id != profile.ID && other.Username == profile.Username {
			return repositories.ErrConflict
		}
	}
	p.Username, p.FullName, p.Bio = profile.Username, profile.FullName, profile.Bio
	p.UpdatedAt = s.tick()
	return nil
}

func (s *Store) UpdateAvatarURL(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateAvatarURL"); err != nil {
		return err
	}
	p, ok := s.Profiles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.AvatarURL = url
	return nil
}

func (s *Store) SearchProfiles(_ context.Context, query string, limit int) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SearchProfiles"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []models.Profile
	for _, p := range s.Profiles {
		if strings.Contains(strings.ToLower(p.Username), q) || strings.Contains(strings.ToLower(p.FullName), q) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListProfiles(_ context.Context, exclude []string, limit int) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProfiles"); err != nil {
		return nil, err
	}
	skip := toSet(exclude)
	var out []models.Profile
	for _, p := range s.Profiles {
		if !skip[p.ID] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// RecipeRepository
// ---------------------------------------------------------------------------

func (s *Store) CreateRecipe(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateRecipe"); err != nil {
		return err
	}
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	now := s.tick()
	recipe.CreatedAt, recipe.UpdatedAt = now, now
	cp := *recipe
	s.Recipes[recipe.ID] = &cp
	return nil
}

func (s *Store) GetRecipeByID(_ context.Context, id string) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetRecipeByID"); err != nil {
		return nil, err
	}
	r, ok := s.Recipes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) UpdateRecipe(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateRecipe"); err != nil {
		return err
	}
	old, ok := s.Recipes[recipe.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	cp := *recipe
	cp.UserID = old.UserID
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = s.tick()
	s.Recipes[recipe.ID] = &cp
	return nil
}

func (s *Store) DeleteRecipe(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteRecipe"); err != nil {
		return err
	}
	if _, ok := s.Recipes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.Recipes, id)
	return nil
}

func (s *Store) filterRecipes(keep func(*models.Recipe) bool) []models.Recipe {
	var out []models.Recipe
	for _, r := range s.Recipes {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func pageOf(all []models.Recipe, offset, limit int) ([]models.Recipe, int64) {
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Recipe{}, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (s *Store) ListPublic(_ context.Context, offset, limit int) ([]models.Recipe, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPublic"); err != nil {
		return nil, 0, err
	}
	page, total := pageOf(s.filterRecipes(func(r *models.Recipe) bool { return r.IsPublic }), offset, limit)
	return page, total, nil
}

func (s *Store) ListPublicByOwners(_ context.Context, ownerIDs []string, offset, limit int) ([]models.Recipe, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPublicByOwners"); err != nil {
		return nil, 0, err
	}
	owners := toSet(ownerIDs)
	page, total := pageOf(s.filterRecipes(func(r *models.Recipe) bool { return r.IsPublic && owners[r.UserID] }), offset, limit)
	return page, total, nil
}

func (s *Store) ListVisibleByIDs(_ context.Context, ids []string, viewerID string, offset, limit int) ([]models.Recipe, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListVisibleByIDs"); err != nil {
		return nil, 0, err
	}
	want := toSet(ids)
	page, total := pageOf(s.filterRecipes(func(r *models.Recipe) bool {
		return want[r.ID] && (r.IsPublic || r.UserID == viewerID)
	}), offset, limit)
	return page, total, nil
}

func (s *Store) ListPublicSince(_ context.Context, since time.Time) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPublicSince"); err != nil {
		return nil, err
	}
	return s.filterRecipes(func(r *models.Recipe) bool { return r.IsPublic && !r.CreatedAt.Before(since) }), nil
}

func (s *Store) ListPublicByHashtag(_ context.Context, tag string, offset, limit int) ([]models.Recipe, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPublicByHashtag"); err != nil {
		return nil, 0, err
	}
	needle := "#" + strings.ToLower(strings.TrimPrefix(tag, "#"))
	page, total := pageOf(s.filterRecipes(func(r *models.Recipe) bool {
		notes := ""
		if r.BrewingNotes != nil {
			notes = *r.BrewingNotes
		}
		return r.IsPublic && (strings.Contains(strings.ToLower(r.Description), needle) || strings.Contains(strings.ToLower(notes), needle))
	}), offset, limit)
	return page, total, nil
}

func (s *Store) SearchPublic(_ context.Context, query string, limit int) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SearchPublic"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := s.filterRecipes(func(r *models.Recipe) bool {
		return r.IsPublic && (strings.Contains(strings.ToLower(r.RecipeName), q) || strings.Contains(strings.ToLower(r.Description), q))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) OwnerIDs(_ context.Context, recipeIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("OwnerIDs"); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, id := range recipeIDs {
		if r, ok := s.Recipes[id]; ok && !seen[r.UserID] {
			seen[r.UserID] = true
			out = append(out, r.UserID)
		}
	}
	return out, nil
}

func (s *Store) CountByOwner(_ context.Context, ownerID string, includePrivate bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountByOwner"); err != nil {
		return 0, err
	}
	var n int64
	for _, r := range s.Recipes {
		if r.UserID == ownerID && (includePrivate || r.IsPublic) {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// VoteRepository
// ---------------------------------------------------------------------------

func (s *Store) GetVote(_ context.Context, recipeID, userID string) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetVote"); err != nil {
		return nil, err
	}
	for _, v := range s.Votes {
		if v.RecipeID == recipeID && v.UserID == userID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) CreateVote(_ context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateVote"); err != nil {
		return err
	}
	for _, v := range s.Votes {
		if v.RecipeID == vote.RecipeID && v.UserID == vote.UserID {
			return repositories.ErrConflict
		}
	}
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	vote.CreatedAt = s.tick()
	cp := *vote
	s.Votes[vote.ID] = &cp
	return nil
}

func (s *Store) UpdateVoteType(_ context.Context, id, voteType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateVoteType"); err != nil {
		return err
	}
	v, ok := s.Votes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	v.VoteType = voteType
	return nil
}

func (s *Store) DeleteVote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteVote"); err != nil {
		return err
	}
	if _, ok := s.Votes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.Votes, id)
	return nil
}

func (s *Store) Tallies(_ context.Context, recipeIDs []string) (map[string]models.VoteTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Tallies"); err != nil {
		return nil, err
	}
	want := toSet(recipeIDs)
	out := make(map[string]models.VoteTally)
	for _, v := range s.Votes {
		if !want[v.RecipeID] {
			continue
		}
		t := out[v.RecipeID]
		t.RecipeID = v.RecipeID
		if v.VoteType == models.VoteUp {
			t.Up++
		} else {
			t.Down++
		}
		out[v.RecipeID] = t
	}
	return out, nil
}

func (s *Store) UserVotes(_ context.Context, userID string, recipeIDs []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UserVotes"); err != nil {
		return nil, err
	}
	want := toSet(recipeIDs)
	out := make(map[string]string)
	for _, v := range s.Votes {
		if v.UserID == userID && want[v.RecipeID] {
			out[v.RecipeID] = v.VoteType
		}
	}
	return out, nil
}

func (s *Store) UpVotedRecipeIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpVotedRecipeIDs"); err != nil {
		return nil, err
	}
	var out []string
	for _, v := range s.Votes {
		if v.UserID == userID && v.VoteType == models.VoteUp {
			out = append(out, v.RecipeID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) UpVoterIDs(_ context.Context, recipeIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpVoterIDs"); err != nil {
		return nil, err
	}
	want := toSet(recipeIDs)
	var out []string
	for _, v := range s.Votes {
		if want[v.RecipeID] && v.VoteType == models.VoteUp {
			out = append(out, v.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) CountUpvotesReceived(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountUpvotesReceived"); err != nil {
		return 0, err
	}
	var n int64
	for _, v := range s.Votes {
		if r, ok := s.Recipes[v.RecipeID]; ok && r.UserID == ownerID && v.VoteType == models.VoteUp {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// FollowRepository
// ---------------------------------------------------------------------------

func (s *Store) CreateFollow(_ context.Context, follow *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateFollow"); err != nil {
		return err
	}
	for _, f := range s.Follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return repositories.ErrConflict
		}
	}
	if follow.ID == "" {
		follow.ID = uuid.NewString()
	}
	follow.CreatedAt = s.tick()
	cp := *follow
	s.Follows[follow.ID] = &cp
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, followerID, followingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteFollow"); err != nil {
		return err
	}
	for id, f := range s.Follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			delete(s.Follows, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *Store) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("IsFollowing"); err != nil {
		return false, err
	}
	for _, f := range s.Follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetFollowersCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFollowersCount"); err != nil {
		return 0, err
	}
	var n int64
	for _, f := range s.Follows {
		if f.FollowingID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetFollowingCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFollowingCount"); err != nil {
		return 0, err
	}
	var n int64
	for _, f := range s.Follows {
		if f.FollowerID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetFollowingIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFollowingIDs"); err != nil {
		return nil, err
	}
	var out []string
	for _, f := range s.Follows {
		if f.FollowerID == userID {
			out = append(out, f.FollowingID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) MostFollowed(_ context.Context, exclude []string, limit int) ([]models.FollowerCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MostFollowed"); err != nil {
		return nil, err
	}
	skip := toSet(exclude)
	counts := make(map[string]int64)
	for _, f := range s.Follows {
		if !skip[f.FollowingID] {
			counts[f.FollowingID]++
		}
	}
	out := make([]models.FollowerCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, models.FollowerCount{UserID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// SavedRecipeRepository
// ---------------------------------------------------------------------------

func (s *Store) SaveRecipe(_ context.Context, saved *models.SavedRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SaveRecipe"); err != nil {
		return err
	}
	for _, sr := range s.Saved {
		if sr.UserID == saved.UserID && sr.RecipeID == saved.RecipeID {
			return repositories.ErrConflict
		}
	}
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	saved.CreatedAt = s.tick()
	cp := *saved
	s.Saved[saved.ID] = &cp
	return nil
}

func (s *Store) UnsaveRecipe(_ context.Context, userID, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UnsaveRecipe"); err != nil {
		return err
	}
	for id, sr := range s.Saved {
		if sr.UserID == userID && sr.RecipeID == recipeID {
			delete(s.Saved, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *Store) IsRecipeSaved(_ context.Context, userID, recipeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("IsRecipeSaved"); err != nil {
		return false, err
	}
	for _, sr := range s.Saved {
		if sr.UserID == userID && sr.RecipeID == recipeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetSavedRecipeIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetSavedRecipeIDs"); err != nil {
		return nil, err
	}
	var rows []models.SavedRecipe
	for _, sr := range s.Saved {
		if sr.UserID == userID {
			rows = append(rows, *sr)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.RecipeID
	}
	return out, nil
}

func (s *Store) GetSavedSet(_ context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetSavedSet"); err != nil {
		return nil, err
	}
	want := toSet(recipeIDs)
	out := make(map[string]bool)
	for _, sr := range s.Saved {
		if sr.UserID == userID && want[sr.RecipeID] {
			out[sr.RecipeID] = true
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// HashtagRepository, AccountRepository, ActivityRepository, AvatarStore
// ---------------------------------------------------------------------------

func (s *Store) Trending(_ context.Context, limit int) ([]models.Hashtag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Trending"); err != nil {
		return nil, err
	}
	out := append([]models.Hashtag(nil), s.Hashtags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateAccount"); err != nil {
		return err
	}
	for _, a := range s.Accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return repositories.ErrConflict
		}
		if account.FirebaseUID != nil && a.FirebaseUID != nil && *a.FirebaseUID == *account.FirebaseUID {
			return repositories.ErrConflict
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if _, ok := s.Accounts[account.ID]; ok {
		return repositories.ErrConflict
	}
	now := s.tick()
	account.CreatedAt, account.UpdatedAt = now, now
	cp := *account
	s.Accounts[account.ID] = &cp
	return nil
}

func (s *Store) findAccount(method string, match func(*models.Account) bool) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(method); err != nil {
		return nil, err
	}
	for _, a := range s.Accounts {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetAccountByID(_ context.Context, id string) (*models.Account, error) {
	return s.findAccount("GetAccountByID", func(a *models.Account) bool { return a.ID == id })
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	return s.findAccount("GetAccountByEmail", func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (s *Store) GetAccountByFirebaseUID(_ context.Context, uid string) (*models.Account, error) {
	return s.findAccount("GetAccountByFirebaseUID", func(a *models.Account) bool {
		return a.FirebaseUID != nil && *a.FirebaseUID == uid
	})
}

func (s *Store) LinkFirebaseUID(_ context.Context, id, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LinkFirebaseUID"); err != nil {
		return err
	}
	a, ok := s.Accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.FirebaseUID = &uid
	return nil
}

func (s *Store) CreateActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateActivity"); err != nil {
		return err
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = s.tick()
	}
	s.Activities = append(s.Activities, *activity)
	return nil
}

func (s *Store) ListByActors(_ context.Context, actorIDs []string, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListByActors"); err != nil {
		return nil, err
	}
	actors := toSet(actorIDs)
	out := []models.Activity{}
	for _, a := range s.Activities {
		if actors[a.UserID] {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Upload(_ context.Context, ownerID, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Upload"); err != nil {
		return "", err
	}
	id := fmt.Sprintf("%024x", len(s.Avatars)+1)
	s.Avatars[id] = StoredAvatar{OwnerID: ownerID, ContentType: contentType, Data: data}
	return id, nil
}

func (s *Store) Open(_ context.Context, id string) (*repositories.Avatar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Open"); err != nil {
		return nil, err
	}
	a, ok := s.Avatars[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &repositories.Avatar{
		ReadCloser:  io.NopCloser(bytes.NewReader(a.Data)),
		ContentType: a.ContentType,
		Size:        int64(len(a.Data)),
	}, nil
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

var (
	_ repositories.ProfileRepository     = (*Store)(nil)
	_ repositories.RecipeRepository      = (*Store)(nil)
	_ repositories.VoteRepository        = (*Store)(nil)
	_ repositories.FollowRepository      = (*Store)(nil)
	_ repositories.SavedRecipeRepository = (*Store)(nil)
	_ repositories.HashtagRepository     = (*Store)(nil)
	_ repositories.AccountRepository     = (*Store)(nil)
	_ repositories.ActivityRepository    = (*Store)(nil)
	_ repositories.AvatarStore           = (*Store)(nil)
)
