package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is a coffee brewing recipe owned by a single profile.
// UserID is set on creation and never changes afterwards.
type Recipe struct {
	ID          string   `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string   `json:"user_id" gorm:"type:varchar(128);index;not null;<-:create"`
	RecipeName  string   `json:"recipe_name" gorm:"type:varchar(200);not null"`
	Description string   `json:"description" gorm:"not null"`
	Rating      *float64 `json:"rating"`
	DateCreated *string  `json:"date_created" gorm:"type:date"`
	IsPublic    bool     `json:"is_public" gorm:"index;default:true"`

	// Bean information
	BeanVariety    *string `json:"bean_variety"`
	BeanRegion     *string `json:"bean_region"`
	IndiaEstate    *string `json:"india_estate"`
	ProcessingType *string `json:"processing_type"`

	// Roasting profile
	RoastType       *string  `json:"roast_type"`
	RoastLevel      *string  `json:"roast_level"`
	CrackTime       *string  `json:"crack_time"`
	RoastTime       *float64 `json:"roast_time"`
	DevelopmentTime *float64 `json:"development_time"`

	// Brewing parameters
	BrewMethod       *string  `json:"brew_method"`
	GrindMicrons     *int     `json:"grind_microns"`
	WaterComposition *string  `json:"water_composition"`
	TDS              *float64 `json:"tds" gorm:"column:tds"`
	Calcium          *float64 `json:"calcium"`
	Magnesium        *float64 `json:"magnesium"`
	Potassium        *float64 `json:"potassium"`
	Sodium           *float64 `json:"sodium"`
	CoffeeAmount     *float64 `json:"coffee_amount"`
	WaterAmount      *float64 `json:"water_amount"`
	WaterTemp        *int     `json:"water_temp"`
	BrewTime         *float64 `json:"brew_time"`

	// Serving preferences
	MilkPreference    *string  `json:"milk_preference"`
	ServingTemp       *string  `json:"serving_temp"`
	Sweetener         *string  `json:"sweetener"`
	SweetenerQuantity *float64 `json:"sweetener_quantity"`
	ServingSize       *float64 `json:"serving_size"`

	// Sensory & evaluation
	AromaNotes        *string  `json:"aroma_notes"`
	Body              *string  `json:"body"`
	AcidityType       *string  `json:"acidity_type"`
	Sweetness         *string  `json:"sweetness"`
	Balance           *string  `json:"balance"`
	Aftertaste        *string  `json:"aftertaste"`
	CleanCup          *string  `json:"clean_cup"`
	Uniformity        *string  `json:"uniformity"`
	CuppingScore      *float64 `json:"cupping_score"`
	CuppingMethod     *string  `json:"cupping_method"`
	Defects           *string  `json:"defects"`
	OverallImpression *string  `json:"overall_impression"`

	BrewingNotes *string `json:"brewing_notes"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// VisibleTo reports whether the identity may read the recipe.
func (r *Recipe) VisibleTo(userID string) bool {
	return r.IsPublic || (userID != "" && r.UserID == userID)
}

// RecipeView is a recipe joined with author and vote metadata.
type RecipeView struct {
	Recipe
	Author    ProfileCompact `json:"author"`
	UpVotes   int64          `json:"up_votes"`
	DownVotes int64          `json:"down_votes"`
	VoteScore int64          `json:"vote_score"`
	UserVote  string         `json:"user_vote,omitempty"`
	IsSaved   bool           `json:"is_saved"`
}

// RecipeFields carries the optional brewing attributes shared by create and
// update requests.
type RecipeFields struct {
	Rating      *float64 `json:"rating" validate:"omitempty,gte=1,lte=10"`
	DateCreated *string  `json:"date_created" validate:"omitempty,datetime=2006-01-02"`

	BeanVariety    *string `json:"bean_variety" validate:"omitempty,max=100"`
	BeanRegion     *string `json:"bean_region" validate:"omitempty,max=100"`
	IndiaEstate    *string `json:"india_estate" validate:"omitempty,max=100"`
	ProcessingType *string `json:"processing_type" validate:"omitempty,max=100"`

	RoastType       *string  `json:"roast_type" validate:"omitempty,max=100"`
	RoastLevel      *string  `json:"roast_level" validate:"omitempty,max=100"`
	CrackTime       *string  `json:"crack_time" validate:"omitempty,max=50"`
	RoastTime       *float64 `json:"roast_time" validate:"omitempty,gte=0"`
	DevelopmentTime *float64 `json:"development_time" validate:"omitempty,gte=0"`

	BrewMethod       *string  `json:"brew_method" validate:"omitempty,max=100"`
	GrindMicrons     *int     `json:"grind_microns" validate:"omitempty,gte=0"`
	WaterComposition *string  `json:"water_composition" validate:"omitempty,max=100"`
	TDS              *float64 `json:"tds" validate:"omitempty,gte=0"`
	Calcium          *float64 `json:"calcium" validate:"omitempty,gte=0"`
	Magnesium        *float64 `json:"magnesium" validate:"omitempty,gte=0"`
	Potassium        *float64 `json:"potassium" validate:"omitempty,gte=0"`
	Sodium           *float64 `json:"sodium" validate:"omitempty,gte=0"`
	CoffeeAmount     *float64 `json:"coffee_amount" validate:"omitempty,gte=0"`
	WaterAmount      *float64 `json:"water_amount" validate:"omitempty,gte=0"`
	WaterTemp        *int     `json:"water_temp" validate:"omitempty,gte=0,lte=100"`
	BrewTime         *float64 `json:"brew_time" validate:"omitempty,gte=0"`

	MilkPreference    *string  `json:"milk_preference" validate:"omitempty,max=100"`
	ServingTemp       *string  `json:"serving_temp" validate:"omitempty,max=50"`
	Sweetener         *string  `json:"sweetener" validate:"omitempty,max=100"`
	SweetenerQuantity *float64 `json:"sweetener_quantity" validate:"omitempty,gte=0"`
	ServingSize       *float64 `json:"serving_size" validate:"omitempty,gte=0"`

	AromaNotes        *string  `json:"aroma_notes"`
	Body              *string  `json:"body" validate:"omitempty,max=100"`
	AcidityType       *string  `json:"acidity_type" validate:"omitempty,max=100"`
	Sweetness         *string  `json:"sweetness" validate:"omitempty,max=100"`
	Balance           *string  `json:"balance" validate:"omitempty,max=100"`
	Aftertaste        *string  `json:"aftertaste" validate:"omitempty,max=100"`
	CleanCup          *string  `json:"clean_cup" validate:"omitempty,max=100"`
	Uniformity        *string  `json:"uniformity" validate:"omitempty,max=100"`
	CuppingScore      *float64 `json:"cupping_score" validate:"omitempty,gte=0,lte=100"`
	CuppingMethod     *string  `json:"cupping_method" validate:"omitempty,max=100"`
	Defects           *string  `json:"defects"`
	OverallImpression *string  `json:"overall_impression"`

	BrewingNotes *string `json:"brewing_notes"`
}

// CreateRecipeRequest defines the request body for creating a new recipe
type CreateRecipeRequest struct {
	RecipeName  string `json:"recipe_name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=1"`
	IsPublic    *bool  `json:"is_public"`
	RecipeFields
}

// UpdateRecipeRequest defines the request body for updating a recipe. Only
// non-nil fields are applied.
type UpdateRecipeRequest struct {
	RecipeName  *string `json:"recipe_name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	IsPublic    *bool   `json:"is_public"`
	RecipeFields
}

// NewRecipe builds a recipe owned by ownerID from a create request.
func NewRecipe(ownerID string, req *CreateRecipeRequest) *Recipe {
	r := &Recipe{
		UserID:      ownerID,
		RecipeName:  req.RecipeName,
		Description: req.Description,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		r.IsPublic = *req.IsPublic
	}
	r.applyFields(&req.RecipeFields, true)
	return r
}

// ApplyUpdate copies the non-nil fields of req onto the recipe. The owner is
// never touched.
func (r *Recipe) ApplyUpdate(req *UpdateRecipeRequest) {
	if req.RecipeName != nil {
		r.RecipeName = *req.RecipeName
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.IsPublic != nil {
		r.IsPublic = *req.IsPublic
	}
	r.applyFields(&req.RecipeFields, false)
}

func (r *Recipe) applyFields(f *RecipeFields, overwrite bool) {
	set := func(dst **string, src *string) {
		if src != nil || overwrite {
			*dst = src
		}
	}
	setF := func(dst **float64, src *float64) {
		if src != nil || overwrite {
			*dst = src
		}
	}
	setI := func(dst **int, src *int) {
		if src != nil || overwrite {
			*dst = src
		}
	}

	setF(&r.Rating, f.Rating)
	set(&r.DateCreated, f.DateCreated)

	set(&r.BeanVariety, f.BeanVariety)
	set(&r.BeanRegion, f.BeanRegion)
	set(&r.IndiaEstate, f.IndiaEstate)
	set(&r.ProcessingType, f.ProcessingType)

	set(&r.RoastType, f.RoastType)
	set(&r.RoastLevel, f.RoastLevel)
	set(&r.CrackTime, f.CrackTime)
	setF(&r.RoastTime, f.RoastTime)
	setF(&r.DevelopmentTime, f.DevelopmentTime)

	set(&r.BrewMethod, f.BrewMethod)
	setI(&r.GrindMicrons, f.GrindMicrons)
	set(&r.WaterComposition, f.WaterComposition)
	setF(&r.TDS, f.TDS)
	setF(&r.Calcium, f.Calcium)
	setF(&r.Magnesium, f.Magnesium)
	setF(&r.Potassium, f.Potassium)
	setF(&r.Sodium, f.Sodium)
	setF(&r.CoffeeAmount, f.CoffeeAmount)
	setF(&r.WaterAmount, f.WaterAmount)
	setI(&r.WaterTemp, f.WaterTemp)
	setF(&r.BrewTime, f.BrewTime)

	set(&r.MilkPreference, f.MilkPreference)
	set(&r.ServingTemp, f.ServingTemp)
	set(&r.Sweetener, f.Sweetener)
	setF(&r.SweetenerQuantity, f.SweetenerQuantity)
	setF(&r.ServingSize, f.ServingSize)

	set(&r.AromaNotes, f.AromaNotes)
	set(&r.Body, f.Body)
	set(&r.AcidityType, f.AcidityType)
	set(&r.Sweetness, f.Sweetness)
	set(&r.Balance, f.Balance)
	set(&r.Aftertaste, f.Aftertaste)
	set(&r.CleanCup, f.CleanCup)
	set(&r.Uniformity, f.Uniformity)
	setF(&r.CuppingScore, f.CuppingScore)
	set(&r.CuppingMethod, f.CuppingMethod)
	set(&r.Defects, f.Defects)
	set(&r.OverallImpression, f.OverallImpression)

	set(&r.BrewingNotes, f.BrewingNotes)
}
