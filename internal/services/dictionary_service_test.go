package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
)

func TestDictionaryList_SearchAndOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	createTestGenre(t, db, "Western", "western")
	createTestGenre(t, db, "Sci-Fi", "sci-fi")
	createTestGenre(t, db, "Science History", "science-history")

	genres, total, err := svc.ListGenres("", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Sci-Fi", genres[0].Name)

	genres, total, err = svc.ListGenres("Sci", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, genres, 2)
}

func TestDictionaryCreate_SlugCollision(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	_, err := svc.CreateCategory(&dto.DictionaryRequest{Name: "Books", Slug: "books"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(&dto.DictionaryRequest{Name: "More Books", Slug: "books"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestDictionaryCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	var validationErr *ValidationError

	_, err := svc.CreateGenre(&dto.DictionaryRequest{Name: "", Slug: "x"})
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateGenre(&dto.DictionaryRequest{Name: "X", Slug: "bad slug!"})
	assert.ErrorAs(t, err, &validationErr)
}

func TestDeleteCategory_TitlesSurviveWithClearedReference(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	books := createTestCategory(t, db, "Books", "books")
	title := createTestTitle(t, db, "Dune", 1965, books)

	require.NoError(t, svc.DeleteCategory("books"))

	var stored models.Title
	require.NoError(t, db.First(&stored, "id = ?", title.ID).Error)
	assert.Nil(t, stored.CategoryID)
}

func TestDeleteGenre_RemovesOnlyJoinRows(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	scifi := createTestGenre(t, db, "Sci-Fi", "sci-fi")
	drama := createTestGenre(t, db, "Drama", "drama")
	title := createTestTitle(t, db, "Dune", 1965, nil, *scifi, *drama)

	require.NoError(t, svc.DeleteGenre("sci-fi"))

	var titles int64
	db.Model(&models.Title{}).Count(&titles)
	assert.EqualValues(t, 1, titles)

	var joins []models.TitleGenre
	require.NoError(t, db.Find(&joins).Error)
	require.Len(t, joins, 1)
	assert.Equal(t, drama.ID, joins[0].GenreID)
	assert.Equal(t, title.ID, joins[0].TitleID)
}

func TestDeleteDictionary_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDictionaryService(db)

	assert.ErrorIs(t, svc.DeleteCategory("ghost"), ErrCategoryNotFound)
	assert.ErrorIs(t, svc.DeleteGenre("ghost"), ErrGenreNotFound)
}
