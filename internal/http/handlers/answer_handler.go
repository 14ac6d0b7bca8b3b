// Answer HTTP handlers.
//
// Endpoints:
//   - GET    /answers
//   - POST   /answers                 (question must exist)
//   - GET    /answers/{id}
//   - PUT    /answer/{id}             (content replace)
//   - DELETE /answer/{id}
//   - GET    /questions/{id}/answers
//
// Update and delete live under the singular /answer path. Existing clients
// depend on it.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// NewAnswerRequest is the JSON payload for creating an answer.
type NewAnswerRequest struct {
	Content    *string            `json:"content"     binding:"required" example:"Only the sender should close."`
	QuestionID *domain.QuestionID `json:"question_id" binding:"required" example:"1"`
}

// AnswerRequest is the JSON payload for replacing an answer. Only content is
// applied; id and question_id are required for shape but ignored.
type AnswerRequest struct {
	ID         *domain.AnswerID   `json:"id"          binding:"required" example:"3"`
	Content    *string            `json:"content"     binding:"required" example:"Close from the sender."`
	QuestionID *domain.QuestionID `json:"question_id" binding:"required" example:"1"`
}

// ListAnswers godoc
// @ID          listAnswers
// @Summary     List answers
// @Tags        Answers
// @Produce     json
// @Success     200  {object}  handlers.Envelope  "got answers"
// @Failure     416  {object}  handlers.Envelope  "Storage failure"
// @Router      /answers [get]
func (h *Handlers) ListAnswers(c *gin.Context) {
	as, err := h.aSvc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "got answers", answersData(as))
}

// AddAnswer godoc
// @ID          addAnswer
// @Summary     Answer a question
// @Description The referenced question must exist at request time.
// @Tags        Answers
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                     false  "Replay-safe retry key"
// @Param       body             body    handlers.NewAnswerRequest  true   "New answer"
// @Success     200  {object}  handlers.Envelope  "added answer to question"
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored result"
// @Failure     400  {object}  handlers.Envelope  "Invalid Idempotency-Key"
// @Failure     416  {object}  handlers.Envelope  "No question with provided id"
// @Failure     422  {object}  handlers.Envelope  "Malformed body"
// @Router      /answers [post]
func (h *Handlers) AddAnswer(c *gin.Context) {
	var req NewAnswerRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	a, replayed, err := h.aSvc.Create(c.Request.Context(), domain.NewAnswer{
		Content:    *req.Content,
		QuestionID: *req.QuestionID,
	}, idemKey(c))
	if err != nil {
		fail(c, err)
		return
	}
	markReplay(c, replayed)
	ok(c, "added answer to question", answerData(a))
}

// GetAnswer godoc
// @ID          getAnswer
// @Summary     Get an answer
// @Tags        Answers
// @Produce     json
// @Param       id   path  int  true  "Answer ID"
// @Success     200  {object}  handlers.Envelope  "got answer"
// @Failure     416  {object}  handlers.Envelope  "Not found"
// @Failure     422  {object}  handlers.Envelope  "Invalid id"
// @Router      /answers/{id} [get]
func (h *Handlers) GetAnswer(c *gin.Context) {
	a, err := h.aSvc.Get(c.Request.Context(), domain.AnswerID(pathID(c)))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "got answer", answerData(a))
}

// UpdateAnswer godoc
// @ID          updateAnswer
// @Summary     Replace an answer's content
// @Tags        Answers
// @Accept      json
// @Produce     json
// @Param       id    path  int                     true  "Answer ID"
// @Param       body  body  handlers.AnswerRequest  true  "Answer"
// @Success     200  {object}  handlers.Envelope  "answer updated"
// @Failure     416  {object}  handlers.Envelope  "Not found or storage failure"
// @Failure     422  {object}  handlers.Envelope  "Invalid id or malformed body"
// @Router      /answer/{id} [put]
func (h *Handlers) UpdateAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	a, err := h.aSvc.Replace(c.Request.Context(), domain.AnswerID(pathID(c)), *req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "answer updated", answerData(a))
}

// DeleteAnswer godoc
// @ID          deleteAnswer
// @Summary     Delete an answer
// @Tags        Answers
// @Produce     json
// @Param       id   path  int  true  "Answer ID"
// @Success     200  {object}  handlers.Envelope  "deleted answer"
// @Failure     416  {object}  handlers.Envelope  "Not found"
// @Failure     422  {object}  handlers.Envelope  "Invalid id"
// @Router      /answer/{id} [delete]
func (h *Handlers) DeleteAnswer(c *gin.Context) {
	if err := h.aSvc.Delete(c.Request.Context(), domain.AnswerID(pathID(c))); err != nil {
		fail(c, err)
		return
	}
	ok(c, "deleted answer", nil)
}

// ListAnswersForQuestion godoc
// @ID          listAnswersForQuestion
// @Summary     List the answers to a question
// @Description An unknown question yields an empty list.
// @Tags        Answers
// @Produce     json
// @Param       id   path  int  true  "Question ID"
// @Success     200  {object}  handlers.Envelope  "found answers to question"
// @Failure     416  {object}  handlers.Envelope  "Storage failure"
// @Failure     422  {object}  handlers.Envelope  "Invalid id"
// @Router      /questions/{id}/answers [get]
func (h *Handlers) ListAnswersForQuestion(c *gin.Context) {
	as, err := h.aSvc.ListFor(c.Request.Context(), domain.QuestionID(pathID(c)))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "found answers to question", answersData(as))
}
