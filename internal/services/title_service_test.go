package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
)

func TestTitleRating_MeanOfScores(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	title := createTestTitle(t, db, "Dune", 1965, nil)
	createTestReview(t, db, title, createTestUser(t, db, "u1", models.RoleUser), 4)
	createTestReview(t, db, title, createTestUser(t, db, "u2", models.RoleUser), 7)
	createTestReview(t, db, title, createTestUser(t, db, "u3", models.RoleUser), 10)

	got, err := svc.Get(title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 1e-9)
}

func TestTitleRating_AbsentWithoutReviews(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	title := createTestTitle(t, db, "Dune", 1965, nil)

	got, err := svc.Get(title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating, "zero reviews must yield no rating, not zero")
}

func TestTitleCreate_NestsCategoryAndGenres(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	createTestCategory(t, db, "Books", "books")
	createTestGenre(t, db, "Sci-Fi", "sci-fi")
	createTestGenre(t, db, "Drama", "drama")

	title, err := svc.Create(&dto.TitleRequest{
		Name:        strPtr("Dune"),
		Year:        intPtr(1965),
		Description: strPtr("desert planet"),
		Category:    strPtr("books"),
		Genre:       &[]string{"sci-fi", "drama"},
	})
	require.NoError(t, err)
	require.NotNil(t, title.Category)
	assert.Equal(t, "books", title.Category.Slug)
	assert.Len(t, title.Genres, 2)
	assert.Nil(t, title.Rating)
}

func TestTitleCreate_RejectsFutureYear(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)
	createTestCategory(t, db, "Books", "books")
	createTestGenre(t, db, "Sci-Fi", "sci-fi")

	_, err := svc.Create(&dto.TitleRequest{
		Name:     strPtr("From the Future"),
		Year:     intPtr(time.Now().Year() + 1),
		Category: strPtr("books"),
		Genre:    &[]string{"sci-fi"},
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTitleCreate_CurrentYearAllowed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)
	createTestCategory(t, db, "Books", "books")
	createTestGenre(t, db, "Sci-Fi", "sci-fi")

	_, err := svc.Create(&dto.TitleRequest{
		Name:     strPtr("This Year"),
		Year:     intPtr(time.Now().Year()),
		Category: strPtr("books"),
		Genre:    &[]string{"sci-fi"},
	})
	assert.NoError(t, err)
}

func TestTitleCreate_UnknownSlugIsValidationError(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)
	createTestCategory(t, db, "Books", "books")

	_, err := svc.Create(&dto.TitleRequest{
		Name:     strPtr("Dune"),
		Year:     intPtr(1965),
		Category: strPtr("books"),
		Genre:    &[]string{"nope"},
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTitleList_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	books := createTestCategory(t, db, "Books", "books")
	films := createTestCategory(t, db, "Films", "films")
	scifi := createTestGenre(t, db, "Sci-Fi", "sci-fi")
	drama := createTestGenre(t, db, "Drama", "drama")

	createTestTitle(t, db, "Dune", 1965, books, *scifi)
	createTestTitle(t, db, "Dune Part Two", 2024, films, *scifi, *drama)
	createTestTitle(t, db, "Hamlet", 1603, books, *drama)

	cases := []struct {
		name    string
		filters dto.TitleFilters
		want    int
	}{
		{"by category", dto.TitleFilters{Category: "books"}, 2},
		{"by genre", dto.TitleFilters{Genre: "sci-fi"}, 2},
		{"by name fragment", dto.TitleFilters{Name: "Dune"}, 2},
		{"by exact year", dto.TitleFilters{Year: intPtr(1965)}, 1},
		{"combined", dto.TitleFilters{Category: "films", Genre: "drama"}, 1},
		{"no match", dto.TitleFilters{Name: "Macbeth"}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			titles, total, err := svc.List(&tc.filters, 1, 20)
			require.NoError(t, err)
			assert.EqualValues(t, tc.want, total)
			assert.Len(t, titles, tc.want)
		})
	}
}

func TestTitleUpdate_ReplacesGenres(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	books := createTestCategory(t, db, "Books", "books")
	scifi := createTestGenre(t, db, "Sci-Fi", "sci-fi")
	createTestGenre(t, db, "Drama", "drama")
	title := createTestTitle(t, db, "Dune", 1965, books, *scifi)

	updated, err := svc.Update(title.ID, &dto.TitleRequest{Genre: &[]string{"drama"}})
	require.NoError(t, err)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, "drama", updated.Genres[0].Slug)
}

func TestTitleDelete_RemovesChildren(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTitleService(db)

	scifi := createTestGenre(t, db, "Sci-Fi", "sci-fi")
	title := createTestTitle(t, db, "Dune", 1965, nil, *scifi)
	author := createTestUser(t, db, "bob", models.RoleUser)
	review := createTestReview(t, db, title, author, 8)
	require.NoError(t, db.Create(&models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "hi"}).Error)

	require.NoError(t, svc.Delete(title.ID))

	var reviews, comments, joins int64
	db.Model(&models.Review{}).Count(&reviews)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.TitleGenre{}).Count(&joins)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
	assert.Zero(t, joins)

	// The genre dictionary entry survives.
	var genres int64
	db.Model(&models.Genre{}).Count(&genres)
	assert.EqualValues(t, 1, genres)
}
