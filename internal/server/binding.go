package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

type roomURI struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type answerURI struct {
	AnswerID uint `uri:"aid" binding:"required,min=1"`
}

type questionURI struct {
	ID         uint `uri:"id" binding:"required,min=1"`
	QuestionID uint `uri:"qid" binding:"required,min=1"`
}

type banURI struct {
	ID  uint   `uri:"id" binding:"required,min=1"`
	UID string `uri:"uid" binding:"required"`
}

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, resolveBindError(err, messages, fallback))
		return false
	}
	return true
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		writeError(c, http.StatusNotFound, "not found")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid query")
		return false
	}
	return true
}

func bindRoom(c *gin.Context) (uint, bool) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return 0, false
	}
	return uri.ID, true
}

func bindAnswer(c *gin.Context) (uint, bool) {
	var uri answerURI
	if !bindURI(c, &uri) {
		return 0, false
	}
	return uri.AnswerID, true
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
