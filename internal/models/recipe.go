package models

import (
	"time"
)

type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7;not null" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:uniq_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:uniq_ingredient_name_unit" json:"measurement_unit"`
}

type Recipe struct {
	ID                uint               `gorm:"primarykey"`
	AuthorID          uint               `gorm:"not null;index"`
	Author            User               `gorm:"constraint:OnDelete:CASCADE"`
	Name              string             `gorm:"size:200;not null"`
	Text              string             `gorm:"type:text;not null"`
	CookingTime       int                `gorm:"not null;check:cooking_time >= 1"`
	Image             string             `gorm:"size:512;not null"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"index"`
	UpdatedAt         time.Time
}

// RecipeIngredient is the amount of one ingredient in one recipe.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:uniq_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:uniq_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:amount >= 1"`
}

type Favorite struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;uniqueIndex:uniq_favorite_user_recipe"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:uniq_favorite_user_recipe;index"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type ShoppingCart struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;uniqueIndex:uniq_cart_user_recipe"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:uniq_cart_user_recipe;index"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCart{},
	}
}
