// Question HTTP handlers.
//
// Endpoints:
//   - GET    /questions        (list, optional start/end/limit/offset window)
//   - POST   /questions        (create, moderated, Idempotency-Key aware)
//   - GET    /questions/{id}
//   - PUT    /questions/{id}   (full replace)
//   - DELETE /questions/{id}
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

//
// DTOs
//

// NewQuestionRequest is the JSON payload for creating a question.
type NewQuestionRequest struct {
	Title   *string     `json:"title"   binding:"required,notblank" example:"How do I close a channel?"`
	Content *string     `json:"content" binding:"required"          example:"Is it safe to close from the receiver side?"`
	Tags    domain.Tags `json:"tags"                                 example:"go,channels"`
}

func (r NewQuestionRequest) toDomain() domain.NewQuestion {
	return domain.NewQuestion{Title: *r.Title, Content: *r.Content, Tags: r.Tags}
}

// QuestionRequest is the JSON payload for replacing a question. The id in
// the body is required but ignored; the path id wins.
type QuestionRequest struct {
	ID      *domain.QuestionID `json:"id"      binding:"required" example:"1"`
	Title   *string            `json:"title"   binding:"required,notblank"`
	Content *string            `json:"content" binding:"required"`
	Tags    domain.Tags        `json:"tags"`
}

//
// Handlers
//

// ListQuestions godoc
// @ID          listQuestions
// @Summary     List questions
// @Description Without query parameters every question is returned. With parameters, start and end must both be present and limit/offset must parse as int32.
// @Tags        Questions
// @Produce     json
// @Param       start   query  string  false  "Window start (presence required with end)"
// @Param       end     query  string  false  "Window end (presence required with start)"
// @Param       limit   query  int     false  "Max rows"
// @Param       offset  query  int     false  "Rows to skip"
// @Success     200  {object}  handlers.Envelope  "found questions"
// @Failure     416  {object}  handlers.Envelope  "Missing or unparsable parameters, or storage failure"
// @Router      /questions [get]
func (h *Handlers) ListQuestions(c *gin.Context) {
	p, err := utils.ExtractPagination(queryMap(c))
	if err != nil {
		fail(c, err)
		return
	}
	qs, err := h.qSvc.List(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "found questions", questionsData(qs))
}

// AddQuestion godoc
// @ID          addQuestion
// @Summary     Create a question
// @Description Screens the content with the moderation service, then stores the question.
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                       false  "Replay-safe retry key"
// @Param       body             body    handlers.NewQuestionRequest  true   "New question"
// @Success     200  {object}  handlers.Envelope  "question added"
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored result"
// @Failure     400  {object}  handlers.Envelope  "Invalid Idempotency-Key"
// @Failure     416  {object}  handlers.Envelope  "Storage failure"
// @Failure     422  {object}  handlers.Envelope  "Malformed body"
// @Failure     500  {object}  handlers.Envelope  "Moderation service failure"
// @Router      /questions [post]
func (h *Handlers) AddQuestion(c *gin.Context) {
	var req NewQuestionRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	q, replayed, err := h.qSvc.Create(c.Request.Context(), req.toDomain(), idemKey(c))
	if err != nil {
		fail(c, err)
		return
	}
	markReplay(c, replayed)
	ok(c, "question added", questionData(q))
}

// GetQuestion godoc
// @ID          getQuestion
// @Summary     Get a question
// @Tags        Questions
// @Produce     json
// @Param       id   path  int  true  "Question ID"
// @Success     200  {object}  handlers.Envelope  "got question"
// @Failure     416  {object}  handlers.Envelope  "Not found"
// @Failure     422  {object}  handlers.Envelope  "Invalid id"
// @Router      /questions/{id} [get]
func (h *Handlers) GetQuestion(c *gin.Context) {
	q, err := h.qSvc.Get(c.Request.Context(), domain.QuestionID(pathID(c)))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "got question", questionData(q))
}

// UpdateQuestion godoc
// @ID          updateQuestion
// @Summary     Replace a question
// @Description Overwrites title, content and tags. The id is fixed by the path.
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Param       id    path  int                       true  "Question ID"
// @Param       body  body  handlers.QuestionRequest  true  "Question"
// @Success     200  {object}  handlers.Envelope  "updated question"
// @Failure     416  {object}  handlers.Envelope  "Not found or storage failure"
// @Failure     422  {object}  handlers.Envelope  "Invalid id or malformed body"
// @Router      /questions/{id} [put]
func (h *Handlers) UpdateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	id := domain.QuestionID(pathID(c))
	q, err := h.qSvc.Replace(c.Request.Context(), id, domain.Question{
		ID:      id,
		Title:   *req.Title,
		Content: *req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "updated question", questionData(q))
}

// DeleteQuestion godoc
// @ID          deleteQuestion
// @Summary     Delete a question
// @Description Fails while answers still reference the question.
// @Tags        Questions
// @Produce     json
// @Param       id   path  int  true  "Question ID"
// @Success     200  {object}  handlers.Envelope  "deleted question"
// @Failure     416  {object}  handlers.Envelope  "Not found or still referenced"
// @Failure     422  {object}  handlers.Envelope  "Invalid id"
// @Router      /questions/{id} [delete]
func (h *Handlers) DeleteQuestion(c *gin.Context) {
	if err := h.qSvc.Delete(c.Request.Context(), domain.QuestionID(pathID(c))); err != nil {
		fail(c, err)
		return
	}
	ok(c, "deleted question", nil)
}
