package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// RecipeFilter narrows the recipe list. Tag slugs match when a recipe carries
// any of them. IsFavorited and IsInShoppingCart are independent and only
// apply to authenticated viewers.
type RecipeFilter struct {
	AuthorID         *uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParseRecipeFilter reads author, tags, is_favorited and is_in_shopping_cart
// from query parameters.
func ParseRecipeFilter(q url.Values) (RecipeFilter, error) {
	var f RecipeFilter
	if raw := q.Get("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, fieldError("author", "Enter a valid user id.")
		}
		author := uint(id)
		f.AuthorID = &author
	}
	for _, slug := range q["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			f.Tags = append(f.Tags, slug)
		}
	}
	f.IsFavorited = truthy(q.Get("is_favorited"))
	f.IsInShoppingCart = truthy(q.Get("is_in_shopping_cart"))
	return f, nil
}

// checkTagSlugs rejects a tag filter naming a slug that does not exist.
func checkTagSlugs(db *gorm.DB, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	var known []string
	if err := db.Model(&models.Tag{}).Where("slug IN ?", slugs).Pluck("slug", &known).Error; err != nil {
		return fmt.Errorf("failed to look up tags: %w", err)
	}
	found := make(map[string]bool, len(known))
	for _, slug := range known {
		found[slug] = true
	}
	for _, slug := range slugs {
		if !found[slug] {
			return fieldError("tags", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", slug))
		}
	}
	return nil
}

// Apply adds the filter conditions to a query over recipes. viewer 0 is anonymous.
func (f RecipeFilter) Apply(db *gorm.DB, viewer uint) *gorm.DB {
	root := db.Session(&gorm.Session{NewDB: true})

	if f.AuthorID != nil {
		db = db.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if len(f.Tags) > 0 {
		tagged := root.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		db = db.Where("recipes.id IN (?)", tagged)
	}
	if viewer == 0 {
		return db
	}
	if f.IsFavorited {
		favs := root.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer)
		db = db.Where("recipes.id IN (?)", favs)
	}
	if f.IsInShoppingCart {
		cart := root.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", viewer)
		db = db.Where("recipes.id IN (?)", cart)
	}
	return db
}

// escapeLike escapes LIKE wildcards so a prefix is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// NamePrefix matches ingredients whose name starts with prefix, ignoring case.
func NamePrefix(db *gorm.DB, prefix string) *gorm.DB {
	if prefix == "" {
		return db
	}
	return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, strings.ToLower(escapeLike(prefix))+"%")
}
