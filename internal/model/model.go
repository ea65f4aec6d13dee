// SPDX-License-Identifier: EPL-2.0

// Package model holds the documents the web app stores.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrInvalidDocument = errors.New("invalid document")

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Validate() error {
	return required(map[string]string{
		"username": u.Username,
		"email":    u.Email,
		"password": u.PasswordHash,
	})
}

// Media is an uploaded message with its mood. FileObject and QRObject are
// bucket object names.
type Media struct {
	ID         string    `json:"id" bson:"_id"`
	Filename   string    `json:"filename" bson:"filename"`
	FileObject string    `json:"fileObject" bson:"fileObject"`
	QRObject   string    `json:"qrObject" bson:"qrObject"`
	MimeType   string    `json:"mimeType" bson:"mimeType"`
	UploadedBy string    `json:"uploadedBy" bson:"uploadedBy"`
	Message    string    `json:"message" bson:"message"`
	Username   string    `json:"username" bson:"username"`
	Mood       Mood      `json:"mood" bson:"mood"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the fields a client supplies. The object names are filled
// in by the upload handler after validation.
func (m *Media) Validate() error {
	if err := required(map[string]string{
		"filename":   m.Filename,
		"mimeType":   m.MimeType,
		"uploadedBy": m.UploadedBy,
		"message":    m.Message,
		"username":   m.Username,
	}); err != nil {
		return err
	}

	if !m.Mood.Valid() {
		return fmt.Errorf("%w: mood %q is not one of %s", ErrInvalidDocument, m.Mood, moodList())
	}

	return nil
}

// Recording is an audio clip captured on the record page.
type Recording struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Name      string    `json:"name" bson:"name"`
	Object    string    `json:"object" bson:"object"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (r *Recording) Validate() error {
	return required(map[string]string{
		"username": r.Username,
		"name":     r.Name,
	})
}

// required lists every empty field, sorted by name.
func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return fmt.Errorf("%w: missing %s", ErrInvalidDocument, strings.Join(missing, ", "))
}
