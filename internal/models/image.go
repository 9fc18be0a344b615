package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Image is a gallery record. Pixels live on the media CDN; only references
// and the transformation settings are stored here.
type Image struct {
	ID                 string       `json:"_id"`
	Title              string       `json:"title" validate:"required,max=200"`
	TransformationType string       `json:"transformationType" validate:"required,oneof=restore removeBackground fill remove recolor"`
	PublicID           string       `json:"publicId" validate:"required"`
	SecureURL          string       `json:"secureURL" validate:"required,url"`
	Width              *int         `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height             *int         `json:"height,omitempty" validate:"omitempty,gt=0"`
	Config             Metadata     `json:"config,omitempty" swaggertype:"object"`
	TransformationURL  string       `json:"transformationURL,omitempty" validate:"omitempty,url"`
	AspectRatio        string       `json:"aspectRatio,omitempty"`
	Color              string       `json:"color,omitempty"`
	Prompt             string       `json:"prompt,omitempty"`
	AuthorID           string       `json:"-"`
	Author             *ImageAuthor `json:"author,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// ImageAuthor is the public slice of the author's User row.
type ImageAuthor struct {
	ClerkID   string `json:"clerkId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ImagePage is one page of gallery results.
type ImagePage struct {
	Data      []Image `json:"data"`
	TotalPage int     `json:"totalPage"`
}

// Metadata type for JSONB fields
type Metadata map[string]any

// Value implements driver.Valuer for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for Metadata
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, m)
}
