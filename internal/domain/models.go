// Package domain defines the persistence models for questions and answers.
// These types are mapped with GORM and double as the JSON wire shapes of the
// public API.
package domain

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// QuestionID identifies a question. Values are assigned by the store.
type QuestionID int32

// AnswerID identifies an answer. Values are assigned by the store.
type AnswerID int32

// Tags is an unordered set of labels attached to a question. A nil Tags is
// stored as NULL and serialized as JSON null.
type Tags []string

// Value encodes t as a Postgres text array literal.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return pq.StringArray(t).Value()
}

// Scan decodes a text array literal (or NULL) into t.
func (t *Tags) Scan(src any) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	if a == nil {
		*t = nil
		return nil
	}
	*t = Tags(a)
	return nil
}

// GormDataType is the generic type GORM needs to parse the field.
func (Tags) GormDataType() string { return "text" }

// GormDBDataType picks a native array column on Postgres and falls back to
// TEXT elsewhere (SQLite stores the array literal verbatim).
func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Question is a user-submitted question.
//
// Fields:
//   - ID: store-assigned identity; fixed for the lifetime of the row.
//   - Title: non-empty headline.
//   - Content: question body; checked by the moderation service on create.
//   - Tags: optional labels, order irrelevant.
type Question struct {
	ID      QuestionID `json:"id"      gorm:"primaryKey;autoIncrement"`
	Title   string     `json:"title"   gorm:"type:text;not null"`
	Content string     `json:"content" gorm:"type:text;not null"`
	Tags    Tags       `json:"tags"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// NewQuestion carries the fields of a question that does not exist yet.
type NewQuestion struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    Tags   `json:"tags"`
}

// Answer is a reply to exactly one question. The referenced question is
// shared, never owned: deleting an answer leaves the question untouched and
// deleting a question does not cascade here.
type Answer struct {
	ID         AnswerID   `json:"id"          gorm:"primaryKey;autoIncrement"`
	Content    string     `json:"content"     gorm:"type:text;not null"`
	QuestionID QuestionID `json:"question_id" gorm:"not null;index:idx_answers_question"`

	// Question exists only to declare the foreign key for migrations.
	Question *Question `json:"-" gorm:"foreignKey:QuestionID;references:ID"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// NewAnswer carries the fields of an answer that does not exist yet.
type NewAnswer struct {
	Content    string     `json:"content"`
	QuestionID QuestionID `json:"question_id"`
}

// Pagination bounds a list query. A nil Limit means unbounded.
type Pagination struct {
	Limit  *int32
	Offset int32
}
