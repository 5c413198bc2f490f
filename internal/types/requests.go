package types

// RegisterRequest is the body of POST /users/.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// TagRequest creates a tag. On update every field is optional.
type TagRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Color *string `json:"color" binding:"omitempty,hexcolor6"`
	Slug  *string `json:"slug" binding:"omitempty,max=200,slug"`
}

type IngredientRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=200"`
	MeasurementUnit *string `json:"measurement_unit" binding:"omitempty,max=200"`
}

// IngredientAmount is one entry of a recipe write request.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of recipe create and update. Ingredients and
// tags always replace the stored sets. Scalar fields left nil keep their value
// on update and are required on create.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
	Image       *string            `json:"image"`
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
}
