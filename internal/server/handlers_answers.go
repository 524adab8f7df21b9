package server

import (
	"net/http"

	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
)

type submitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required,min=1"`
	ImageData  string `json:"image_data" binding:"required"`
	Final      bool   `json:"final"`
}

// handleSubmitAnswer saves a drawing through the autosave throttle. A
// throttled draft is answered with 202 and written when the window closes.
// Eligibility is checked before throttling so rejections always reach the caller.
func (s *Server) handleSubmitAnswer(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if !bindJSON(c, &req, bindMessages{
		"QuestionID": {"required": "question_id is required"},
		"ImageData":  {"required": "image_data is required"},
	}, "invalid answer") {
		return
	}
	if len(req.ImageData) > maxImageBytes*2 {
		writeError(c, http.StatusRequestEntityTooLarge, errImageTooLarge.Error())
		return
	}
	if _, _, err := decodeImageData(req.ImageData); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	identity := currentUser(c)
	if _, err := s.store.CheckAnswer(c.Request.Context(), roomID, identity.UID, req.QuestionID); err != nil {
		writeStoreError(c, err)
		return
	}
	d := draft{identity: identity, questionID: req.QuestionID, image: req.ImageData}
	answer, saved, err := s.autosave.Submit(c.Request.Context(), roomID, d, req.Final)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if !saved {
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		return
	}
	c.JSON(http.StatusOK, answer)
}

type listAnswersQuery struct {
	QuestionID uint `form:"question_id"`
}

// handleListAnswers returns every answer to the host and only the caller's
// own answer to anyone else.
func (s *Server) handleListAnswers(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var query listAnswersQuery
	if !bindQuery(c, &query) {
		return
	}
	ctx := c.Request.Context()
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	questionID := query.QuestionID
	if questionID == 0 {
		if room.CurrentQuestionID == nil {
			c.JSON(http.StatusOK, gin.H{"answers": []store.Answer{}})
			return
		}
		questionID = *room.CurrentQuestionID
	}
	answers, err := s.store.ListAnswers(ctx, roomID, questionID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	uid := currentUser(c).UID
	if room.HostUID != uid {
		own := make([]store.Answer, 0, 1)
		for _, answer := range answers {
			if answer.UID == uid {
				own = append(own, answer)
			}
		}
		answers = own
	}
	c.JSON(http.StatusOK, gin.H{"question_id": questionID, "answers": answers})
}

type flagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

func (s *Server) bindFlag(c *gin.Context) (uint, bool, bool) {
	answerID, ok := bindAnswer(c)
	if !ok {
		return 0, false, false
	}
	var req flagRequest
	if !bindJSON(c, &req, bindMessages{"Value": {"required": "value is required"}}, "invalid flag") {
		return 0, false, false
	}
	return answerID, *req.Value, true
}

func (s *Server) handleMarkAnswer(c *gin.Context) {
	answerID, value, ok := s.bindFlag(c)
	if !ok {
		return
	}
	answer, err := s.store.SetAnswerCorrect(c.Request.Context(), answerID, currentUser(c).UID, value)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleRevealAnswer(c *gin.Context) {
	answerID, value, ok := s.bindFlag(c)
	if !ok {
		return
	}
	answer, err := s.store.SetAnswerRevealed(c.Request.Context(), answerID, currentUser(c).UID, value)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

type revealAllRequest struct {
	QuestionID uint `json:"question_id"`
}

func (s *Server) handleRevealAll(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var req revealAllRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, nil, "invalid reveal request") {
		return
	}
	room, err := s.hostRoom(c, roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if req.QuestionID == 0 {
		if room.CurrentQuestionID == nil {
			writeStoreError(c, store.ErrNoCurrentQuestion)
			return
		}
		req.QuestionID = *room.CurrentQuestionID
	}
	changed, err := s.store.RevealAll(c.Request.Context(), roomID, room.HostUID, req.QuestionID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revealed": changed})
}
