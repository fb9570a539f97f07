package types

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=200"`
	Username  string `json:"username" binding:"required,max=200,username"`
	FirstName string `json:"first_name" binding:"required,max=200"`
	LastName  string `json:"last_name" binding:"required,max=200"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type DeleteAccountRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

// RecipeIngredientRequest is one ingredient line of a recipe write.
type RecipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=32767"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"omitempty,dive"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image" binding:"required"`
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1,max=32767"`
}

// UpdateRecipeRequest represents a PATCH of a recipe. Ingredients and tags
// are always replaced; nil scalar fields keep their stored values.
type UpdateRecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"omitempty,dive"`
	Tags        []uint                    `json:"tags"`
	Image       *string                   `json:"image"`
	Name        *string                   `json:"name" binding:"omitempty,max=200"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time" binding:"omitempty,max=32767"`
}

// RecipeFilter narrows the recipe list.
type RecipeFilter struct {
	Tags             []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}
