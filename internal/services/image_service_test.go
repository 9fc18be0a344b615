package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/models"
)

const (
	testImageID  = "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"
	chargeFeeSQL = `UPDATE users SET credit_balance = credit_balance \+ \$2, updated_at = NOW\(\) WHERE clerk_id = \$1 AND \(\$2 >= 0 OR credit_balance \+ \$2 >= 0\)`
)

var imageCols = []string{"id", "title", "transformation_type", "public_id", "secure_url", "width", "height",
	"config", "transformation_url", "aspect_ratio", "color", "prompt", "author_id", "created_at", "updated_at",
	"clerk_id", "first_name", "last_name"}

func newImageFixture(t *testing.T) (*ImageService, *ledgerFixture) {
	f := newLedgerFixture(t)
	service := NewImageService(f.service.store, f.service)
	service.now = f.service.now
	return service, f
}

func imageRow(authorID string) *sqlmock.Rows {
	return sqlmock.NewRows(imageCols).
		AddRow(testImageID, "Restored portrait", "restore", "imaginify/abc", "https://res.cloudinary.com/demo/abc.png",
			int64(800), nil, []byte(`{"restore":true}`), "", "", "", "", authorID, testNow, testNow,
			authorID, "Alice", "Smith")
}

func restoredImage() models.Image {
	return models.Image{
		Title:              "Restored portrait",
		TransformationType: "restore",
		PublicID:           "imaginify/abc",
		SecureURL:          "https://res.cloudinary.com/demo/abc.png",
	}
}

func TestImageService_AddImage(t *testing.T) {
	ctx := context.Background()

	t.Run("saves the image and charges the fee", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 10))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(chargeFeeSQL).WithArgs("u1", -1).WillReturnRows(userRow("u1", 1, 9))
		f.mock.ExpectExec(`INSERT INTO images`).
			WithArgs(sqlmock.AnyArg(), "Restored portrait", "restore", "imaginify/abc",
				"https://res.cloudinary.com/demo/abc.png", nil, nil, nil, "", "", "", "", "u1", testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e models.CreditEvent) bool {
			return e.Reason == models.CreditReasonTransformation && e.Delta == -1 && e.Balance == 9
		})).Return(nil).Once()

		image, user, err := service.AddImage(ctx, "u1", restoredImage(), models.TransformationCreditFee)
		require.NoError(t, err)
		assert.NotEmpty(t, image.ID)
		assert.Equal(t, "u1", image.Author.ClerkID)
		assert.Equal(t, 9, user.CreditBalance)
		assert.NoError(t, f.mock.ExpectationsWereMet())
		f.publisher.AssertExpectations(t)
	})

	t.Run("failed charge leaves no image behind", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 10))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(chargeFeeSQL).WithArgs("u1", -1).WillReturnError(sql.ErrConnDone)
		f.mock.ExpectRollback()

		image, _, err := service.AddImage(ctx, "u1", restoredImage(), -1)
		assert.Error(t, err)
		assert.Nil(t, image)
		assert.NoError(t, f.mock.ExpectationsWereMet())
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("failed insert rolls back the charge", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 10))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(chargeFeeSQL).WithArgs("u1", -1).WillReturnRows(userRow("u1", 1, 9))
		f.mock.ExpectExec(`INSERT INTO images`).WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})
		f.mock.ExpectRollback()

		_, _, err := service.AddImage(ctx, "u1", restoredImage(), -1)
		assert.ErrorIs(t, err, apperror.ErrTransientStore)
		assert.NoError(t, f.mock.ExpectationsWereMet())
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("balance spent since the check", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 1))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(chargeFeeSQL).WithArgs("u1", -1).WillReturnRows(sqlmock.NewRows(userCols))
		f.mock.ExpectRollback()

		_, _, err := service.AddImage(ctx, "u1", restoredImage(), -1)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("free transformation skips the charge", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 0))
		f.mock.ExpectBegin()
		f.mock.ExpectExec(`INSERT INTO images`).WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()

		image, user, err := service.AddImage(ctx, "u1", restoredImage(), 0)
		require.NoError(t, err)
		assert.NotEmpty(t, image.ID)
		assert.Equal(t, 0, user.CreditBalance)
		assert.NoError(t, f.mock.ExpectationsWereMet())
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("u1").WillReturnRows(userRow("u1", 1, 0))

		_, _, err := service.AddImage(ctx, "u1", restoredImage(), -1)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("unknown author", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(selectUserSQL).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userCols))

		_, _, err := service.AddImage(ctx, "ghost", restoredImage(), -1)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("invalid image", func(t *testing.T) {
		service, f := newImageFixture(t)
		image := restoredImage()
		image.TransformationType = "sharpen"

		_, _, err := service.AddImage(ctx, "u1", image, -1)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestImageService_GetImage(t *testing.T) {
	ctx := context.Background()
	service, f := newImageFixture(t)

	f.mock.ExpectQuery(`FROM images i LEFT JOIN users u ON u.clerk_id = i.author_id WHERE i.id = \$1`).
		WithArgs(testImageID).WillReturnRows(imageRow("u1"))
	image, err := service.GetImage(ctx, testImageID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", image.Author.FirstName)
	require.NotNil(t, image.Width)
	assert.Equal(t, 800, *image.Width)
	assert.Nil(t, image.Height)
	assert.Equal(t, true, image.Config["restore"])

	f.mock.ExpectQuery(`WHERE i.id = \$1`).WithArgs(testImageID).WillReturnRows(sqlmock.NewRows(imageCols))
	_, err = service.GetImage(ctx, testImageID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = service.GetImage(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestImageService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("author updates", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`WHERE i.id = \$1`).WithArgs(testImageID).WillReturnRows(imageRow("u1"))
		f.mock.ExpectExec(`UPDATE images SET title = \$2`).
			WithArgs(testImageID, "New title", "restore", "imaginify/abc", "https://res.cloudinary.com/demo/abc.png",
				nil, nil, nil, "", "", "", "", testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		image := restoredImage()
		image.Title = "New title"
		updated, err := service.UpdateImage(ctx, "u1", testImageID, image)
		require.NoError(t, err)
		assert.Equal(t, testImageID, updated.ID)
		assert.Equal(t, "New title", updated.Title)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("someone else cannot update", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`WHERE i.id = \$1`).WithArgs(testImageID).WillReturnRows(imageRow("u1"))

		_, err := service.UpdateImage(ctx, "u2", testImageID, restoredImage())
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("author deletes", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`WHERE i.id = \$1`).WithArgs(testImageID).WillReturnRows(imageRow("u1"))
		f.mock.ExpectExec(`DELETE FROM images WHERE id = \$1`).WithArgs(testImageID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.DeleteImage(ctx, "u1", testImageID))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("someone else cannot delete", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`WHERE i.id = \$1`).WithArgs(testImageID).WillReturnRows(imageRow("u1"))

		err := service.DeleteImage(ctx, "u2", testImageID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestImageService_ListImages(t *testing.T) {
	ctx := context.Background()

	t.Run("search pages nine at a time", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM images i WHERE \(i.title ILIKE \$1`).WithArgs("%portrait%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
		f.mock.ExpectQuery(`ILIKE \$1\) ORDER BY i.updated_at DESC LIMIT 9 OFFSET 9`).WithArgs("%portrait%").
			WillReturnRows(imageRow("u1"))

		page, err := service.ListImages(ctx, " portrait ", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalPage)
		assert.Len(t, page.Data, 1)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("empty gallery", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM images i$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		f.mock.ExpectQuery(`ORDER BY i.updated_at DESC LIMIT 9 OFFSET 0`).
			WillReturnRows(sqlmock.NewRows(imageCols))

		page, err := service.ListImages(ctx, "", 0)
		require.NoError(t, err)
		assert.Equal(t, 0, page.TotalPage)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})

	t.Run("by author", func(t *testing.T) {
		service, f := newImageFixture(t)
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM images i WHERE i.author_id = \$1`).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		f.mock.ExpectQuery(`WHERE i.author_id = \$1 ORDER BY`).WithArgs("u1").
			WillReturnRows(imageRow("u1"))

		page, err := service.ListUserImages(ctx, "u1", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalPage)
		assert.Equal(t, "u1", page.Data[0].Author.ClerkID)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}
