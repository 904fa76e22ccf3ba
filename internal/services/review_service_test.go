package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
)

func TestCreateReview_OnePerAuthorAndTitle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)

	_, err := svc.CreateReview(title.ID, bob, reviewReq("great", 9))
	require.NoError(t, err)

	// A second submission is rejected regardless of score.
	_, err = svc.CreateReview(title.ID, bob, reviewReq("changed my mind", 2))
	assert.ErrorIs(t, err, ErrDuplicateReview)

	var count int64
	db.Model(&models.Review{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateReview_IndexBacksThePreCheck(t *testing.T) {
	db := setupTestDB(t)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)
	createTestReview(t, db, title, bob, 8)

	// Insert bypassing the service pre-check: the store must refuse it.
	err := db.Create(&models.Review{TitleID: title.ID, AuthorID: bob.ID, Text: "again", Score: 3}).Error
	assert.Error(t, err)
}

func TestCreateReview_DifferentAuthorsAllowed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	title := createTestTitle(t, db, "Dune", 1965, nil)
	_, err := svc.CreateReview(title.ID, createTestUser(t, db, "bob", models.RoleUser), reviewReq("good", 8))
	require.NoError(t, err)
	_, err = svc.CreateReview(title.ID, createTestUser(t, db, "alice", models.RoleUser), reviewReq("bad", 2))
	assert.NoError(t, err)
}

func TestCreateReview_ScoreBounds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)

	for _, score := range []int{0, -1, 11, 100} {
		_, err := svc.CreateReview(title.ID, bob, reviewReq("x", score))
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "score %d must be rejected", score)
	}
}

func TestCreateReview_MissingTitle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	_, err := svc.CreateReview(uuid.New(), bob, reviewReq("x", 5))
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestUpdateReview_SkipsDuplicateCheck(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)
	review := createTestReview(t, db, title, bob, 8)

	updated, err := svc.UpdateReview(title.ID, review.ID, &dto.ReviewRequest{Score: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Score)
}

func TestListReviews_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	title := createTestTitle(t, db, "Dune", 1965, nil)
	first := createTestReview(t, db, title, createTestUser(t, db, "u1", models.RoleUser), 5)
	second := createTestReview(t, db, title, createTestUser(t, db, "u2", models.RoleUser), 6)
	// Force distinct timestamps; sqlite stores what we give it.
	require.NoError(t, db.Model(first).Update("pub_date", second.PubDate.Add(-1e9)).Error)

	reviews, total, err := svc.ListReviews(title.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)
	require.NotNil(t, reviews[0].Author)
	assert.Equal(t, "u2", reviews[0].Author.Username)
}

func TestListReviews_MissingParent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	_, _, err := svc.ListReviews(uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestComments_ScopedToParents(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)
	other := createTestTitle(t, db, "Hamlet", 1603, nil)
	review := createTestReview(t, db, title, bob, 8)

	comment, err := svc.CreateComment(title.ID, review.ID, bob, &dto.CommentRequest{Text: strPtr("nice")})
	require.NoError(t, err)

	// Right chain resolves.
	got, err := svc.GetComment(title.ID, review.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice", got.Text)

	// The review does not exist under the wrong title.
	_, err = svc.GetComment(other.ID, review.ID, comment.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// A missing title 404s before the review is even considered.
	_, err = svc.GetComment(uuid.New(), review.ID, comment.ID)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestCreateComment_MissingReview(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)

	_, err := svc.CreateComment(title.ID, uuid.New(), bob, &dto.CommentRequest{Text: strPtr("hi")})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteReview_RemovesComments(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReviewService(db)

	bob := createTestUser(t, db, "bob", models.RoleUser)
	title := createTestTitle(t, db, "Dune", 1965, nil)
	review := createTestReview(t, db, title, bob, 8)
	_, err := svc.CreateComment(title.ID, review.ID, bob, &dto.CommentRequest{Text: strPtr("hi")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(title.ID, review.ID))

	var comments int64
	db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, comments)
}
