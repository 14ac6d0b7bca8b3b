// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by every endpoint. Success
// and failure alike produce exactly one Envelope:
//
//	HTTP/1.1 200 OK
//	{ "error": false, "message": "got question", "data": { "Question": { "id": 1, ... } } }
//
//	HTTP/1.1 416 Requested Range Not Satisfiable
//	{ "error": true, "message": "item not found: question 9", "data": null }
//
// Handlers write successes through ok(); failures are recorded on the Gin
// context with fail() and rendered once by RenderErrors.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	// Error is true exactly when the status is not 2xx.
	Error bool `json:"error" example:"false"`
	// Message is a human-readable summary, safe to show to users.
	Message *string `json:"message" example:"got question"`
	// Data carries the tagged payload, or null.
	Data *Payload `json:"data" swaggertype:"object"`
}

// PayloadKind discriminates the variants of Payload.
type PayloadKind int

const (
	PayloadQuestions PayloadKind = iota + 1
	PayloadQuestion
	PayloadAnswers
	PayloadAnswer
)

var payloadTags = map[PayloadKind]string{
	PayloadQuestions: "Questions",
	PayloadQuestion:  "Question",
	PayloadAnswers:   "Answers",
	PayloadAnswer:    "Answer",
}

// Payload is an externally tagged union. On the wire it is an object with a
// single key naming the variant, e.g. {"Answers":[...]}. Only the field
// matching Kind is meaningful.
type Payload struct {
	Kind      PayloadKind
	Questions []domain.Question
	Question  *domain.Question
	Answers   []domain.Answer
	Answer    *domain.Answer
}

// MarshalJSON encodes p under its variant tag. Empty lists encode as [].
func (p Payload) MarshalJSON() ([]byte, error) {
	var v any
	switch p.Kind {
	case PayloadQuestions:
		qs := p.Questions
		if qs == nil {
			qs = []domain.Question{}
		}
		v = qs
	case PayloadQuestion:
		v = p.Question
	case PayloadAnswers:
		as := p.Answers
		if as == nil {
			as = []domain.Answer{}
		}
		v = as
	case PayloadAnswer:
		v = p.Answer
	default:
		return nil, fmt.Errorf("payload: unknown kind %d", p.Kind)
	}
	return json.Marshal(map[string]any{payloadTags[p.Kind]: v})
}

// UnmarshalJSON decodes a single-key tagged object.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("payload: want exactly one variant, got %d", len(raw))
	}
	for tag, body := range raw {
		switch tag {
		case "Questions":
			*p = Payload{Kind: PayloadQuestions}
			return json.Unmarshal(body, &p.Questions)
		case "Question":
			*p = Payload{Kind: PayloadQuestion}
			return json.Unmarshal(body, &p.Question)
		case "Answers":
			*p = Payload{Kind: PayloadAnswers}
			return json.Unmarshal(body, &p.Answers)
		case "Answer":
			*p = Payload{Kind: PayloadAnswer}
			return json.Unmarshal(body, &p.Answer)
		default:
			return fmt.Errorf("payload: unknown variant %q", tag)
		}
	}
	return nil
}

func questionsData(qs []domain.Question) *Payload {
	return &Payload{Kind: PayloadQuestions, Questions: qs}
}

func questionData(q *domain.Question) *Payload {
	return &Payload{Kind: PayloadQuestion, Question: q}
}

func answersData(as []domain.Answer) *Payload {
	return &Payload{Kind: PayloadAnswers, Answers: as}
}

func answerData(a *domain.Answer) *Payload {
	return &Payload{Kind: PayloadAnswer, Answer: a}
}

// ok writes a 200 success envelope. data may be nil.
func ok(c *gin.Context, msg string, data *Payload) {
	c.JSON(http.StatusOK, Envelope{Error: false, Message: &msg, Data: data})
}

// OK is the exported variant of ok() for routes wired outside this package.
func OK(c *gin.Context, msg string) { ok(c, msg, nil) }

// fail records err on the context and stops the chain. RenderErrors writes
// the response.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Fail is the exported variant of fail().
func Fail(c *gin.Context, err error) { fail(c, err) }
