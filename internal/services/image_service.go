package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/database"
	"github.com/imaginify/backend/internal/models"
)

// ImagesPerPage is the gallery page size.
const ImagesPerPage = 9

const imageSelect = `SELECT i.id, i.title, i.transformation_type, i.public_id, i.secure_url, i.width, i.height,
		i.config, i.transformation_url, i.aspect_ratio, i.color, i.prompt, i.author_id, i.created_at, i.updated_at,
		u.clerk_id, u.first_name, u.last_name
	FROM images i LEFT JOIN users u ON u.clerk_id = i.author_id`

// ImageService stores gallery records and charges transformations against
// the author's credit balance.
type ImageService struct {
	store     *database.Handle
	ledger    *LedgerService
	validator *ValidationHelper
	now       func() time.Time
}

func NewImageService(store *database.Handle, ledger *LedgerService) *ImageService {
	return &ImageService{
		store:     store,
		ledger:    ledger,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

func scanImage(row rowScanner) (*models.Image, error) {
	var img models.Image
	var clerkID, firstName, lastName sql.NullString
	err := row.Scan(&img.ID, &img.Title, &img.TransformationType, &img.PublicID, &img.SecureURL,
		&img.Width, &img.Height, &img.Config, &img.TransformationURL, &img.AspectRatio, &img.Color,
		&img.Prompt, &img.AuthorID, &img.CreatedAt, &img.UpdatedAt, &clerkID, &firstName, &lastName)
	if err != nil {
		return nil, err
	}
	if clerkID.Valid {
		img.Author = &models.ImageAuthor{ClerkID: clerkID.String, FirstName: firstName.String, LastName: lastName.String}
	}
	return &img, nil
}

// AddImage saves a transformed image for authorID and applies creditFee
// (normally negative) to the author's balance. The record and the charge
// commit together or not at all.
func (s *ImageService) AddImage(ctx context.Context, authorID string, image models.Image, creditFee int) (*models.Image, *models.User, error) {
	const op = "images.AddImage"

	if err := s.validator.ValidateRequest(&image); err != nil {
		return nil, nil, err
	}

	author, err := s.ledger.GetUser(ctx, authorID)
	if err != nil {
		return nil, nil, err
	}
	if creditFee < 0 && author.CreditBalance+creditFee < 0 {
		return nil, nil, apperror.Forbidden("insufficient credits for this transformation")
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	image.ID = uuid.NewString()
	image.AuthorID = authorID
	image.CreatedAt = now
	image.UpdatedAt = now

	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, classifyStoreError(op, err)
	}
	defer dbTx.Rollback()

	if creditFee != 0 {
		// The balance may have moved since the check above.
		author, err = addCredits(ctx, dbTx, authorID, creditFee, true)
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[IMAGES] Credit fee %d for %s not covered, image discarded", creditFee, authorID)
			return nil, nil, apperror.Forbidden("insufficient credits for this transformation")
		}
		if err != nil {
			return nil, nil, classifyStoreError(op, err)
		}
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO images (id, title, transformation_type, public_id, secure_url, width, height, config,
			transformation_url, aspect_ratio, color, prompt, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
		image.ID, image.Title, image.TransformationType, image.PublicID, image.SecureURL, image.Width, image.Height,
		image.Config, image.TransformationURL, image.AspectRatio, image.Color, image.Prompt, authorID, now)
	if err != nil {
		return nil, nil, classifyStoreError(op, err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, nil, classifyStoreError(op, err)
	}

	image.Author = &models.ImageAuthor{ClerkID: author.ClerkID, FirstName: author.FirstName, LastName: author.LastName}
	log.Printf("[IMAGES] Saved %s image %s for %s", image.TransformationType, image.ID, authorID)
	if creditFee != 0 {
		s.ledger.creditsAdjusted(ctx, author, creditFee, image.ID, models.CreditReasonTransformation)
	}
	return &image, author, nil
}

// GetImage returns one image with its author summary.
func (s *ImageService) GetImage(ctx context.Context, imageID string) (*models.Image, error) {
	const op = "images.GetImage"

	if _, err := uuid.Parse(imageID); err != nil {
		return nil, apperror.NotFound("image", imageID)
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	img, err := scanImage(db.QueryRowContext(ctx, imageSelect+` WHERE i.id = $1`, imageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("image", imageID)
	}
	if err != nil {
		return nil, classifyStoreError(op, err)
	}
	return img, nil
}

// authorize loads the image and checks that userID wrote it.
func (s *ImageService) authorize(ctx context.Context, userID, imageID string) (*models.Image, error) {
	img, err := s.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.AuthorID != userID {
		log.Printf("[IMAGES] WARNING: %s tried to modify image %s owned by %s", userID, imageID, img.AuthorID)
		return nil, apperror.Forbidden("Unauthorized to modify this image")
	}
	return img, nil
}

// UpdateImage overwrites an image's fields. Only the author may do this.
func (s *ImageService) UpdateImage(ctx context.Context, userID, imageID string, image models.Image) (*models.Image, error) {
	const op = "images.UpdateImage"

	if err := s.validator.ValidateRequest(&image); err != nil {
		return nil, err
	}
	existing, err := s.authorize(ctx, userID, imageID)
	if err != nil {
		return nil, err
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	_, err = db.ExecContext(ctx, `
		UPDATE images
		SET title = $2, transformation_type = $3, public_id = $4, secure_url = $5, width = $6, height = $7,
			config = $8, transformation_url = $9, aspect_ratio = $10, color = $11, prompt = $12, updated_at = $13
		WHERE id = $1`,
		imageID, image.Title, image.TransformationType, image.PublicID, image.SecureURL, image.Width, image.Height,
		image.Config, image.TransformationURL, image.AspectRatio, image.Color, image.Prompt, now)
	if err != nil {
		return nil, classifyStoreError(op, err)
	}

	image.ID = existing.ID
	image.AuthorID = existing.AuthorID
	image.Author = existing.Author
	image.CreatedAt = existing.CreatedAt
	image.UpdatedAt = now
	return &image, nil
}

// DeleteImage removes an image. Only the author may do this.
func (s *ImageService) DeleteImage(ctx context.Context, userID, imageID string) error {
	const op = "images.DeleteImage"

	if _, err := s.authorize(ctx, userID, imageID); err != nil {
		return err
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, imageID); err != nil {
		return classifyStoreError(op, err)
	}
	log.Printf("[IMAGES] Deleted image %s", imageID)
	return nil
}

func offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * ImagesPerPage
}

func totalPages(count int) int {
	return (count + ImagesPerPage - 1) / ImagesPerPage
}

func (s *ImageService) page(ctx context.Context, op, where string, arg any, page int) (*models.ImagePage, error) {
	db, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var args []any
	countSQL := `SELECT COUNT(*) FROM images i`
	listSQL := imageSelect
	if where != "" {
		countSQL += ` WHERE ` + where
		listSQL += ` WHERE ` + where
		args = append(args, arg)
	}

	var count int
	if err := db.QueryRowContext(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, classifyStoreError(op, err)
	}

	rows, err := db.QueryContext(ctx,
		listSQL+` ORDER BY i.updated_at DESC LIMIT `+strconv.Itoa(ImagesPerPage)+` OFFSET `+strconv.Itoa(offset(page)), args...)
	if err != nil {
		return nil, classifyStoreError(op, err)
	}
	defer rows.Close()

	result := &models.ImagePage{Data: []models.Image{}, TotalPage: totalPages(count)}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, classifyStoreError(op, err)
		}
		result.Data = append(result.Data, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError(op, err)
	}
	return result, nil
}

// ListImages returns one gallery page, newest first, optionally filtered by
// a case-insensitive match on title, transformation type or prompt.
func (s *ImageService) ListImages(ctx context.Context, searchQuery string, page int) (*models.ImagePage, error) {
	searchQuery = strings.TrimSpace(searchQuery)
	if searchQuery == "" {
		return s.page(ctx, "images.ListImages", "", nil, page)
	}
	return s.page(ctx, "images.ListImages",
		`(i.title ILIKE $1 OR i.transformation_type ILIKE $1 OR i.prompt ILIKE $1)`,
		"%"+escapeLike(searchQuery)+"%", page)
}

// ListUserImages returns one page of images written by authorID.
func (s *ImageService) ListUserImages(ctx context.Context, authorID string, page int) (*models.ImagePage, error) {
	return s.page(ctx, "images.ListUserImages", `i.author_id = $1`, authorID, page)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
