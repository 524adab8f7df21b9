package server

import (
	"net/http"
	"strings"

	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
)

type createQuestionRequest struct {
	Text      string `json:"text" form:"text" binding:"question"`
	ImageData string `json:"image_data" form:"-"`
	Post      bool   `json:"post" form:"post"`
}

// handleCreateQuestion queues a question, or asks it right away when post is
// set. The image may arrive as a multipart file or as a data URL.
func (s *Server) handleCreateQuestion(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var req createQuestionRequest
	var image *store.QuestionImage
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			writeError(c, http.StatusBadRequest, resolveBindError(err, questionMessages, "invalid question"))
			return
		}
		if _, err := c.FormFile("image"); err == nil {
			data, contentType, err := readUploadedImage(c, "image")
			if err != nil {
				writeError(c, http.StatusBadRequest, err.Error())
				return
			}
			image = &store.QuestionImage{ContentType: contentType, Data: data}
		}
	} else {
		if !bindJSON(c, &req, questionMessages, "invalid question") {
			return
		}
		if strings.TrimSpace(req.ImageData) != "" {
			data, contentType, err := decodeImageData(req.ImageData)
			if err != nil {
				writeError(c, http.StatusBadRequest, err.Error())
				return
			}
			image = &store.QuestionImage{ContentType: contentType, Data: data}
		}
	}

	ctx := c.Request.Context()
	hostUID := currentUser(c).UID
	text := normalizeText(req.Text)
	var (
		question store.Question
		err      error
	)
	if req.Post {
		question, err = s.store.AskQuestion(ctx, roomID, hostUID, text, image)
	} else {
		question, err = s.store.AddQuestion(ctx, roomID, hostUID, text, image)
	}
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

var questionMessages = bindMessages{
	"Text": {"question": "question must be 280 printable characters or fewer"},
}

func (s *Server) handleListQuestions(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	questions, err := s.store.ListQuestions(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handlePostQuestion(c *gin.Context) {
	var uri questionURI
	if !bindURI(c, &uri) {
		return
	}
	question, err := s.store.PostQuestion(c.Request.Context(), uri.ID, currentUser(c).UID, uri.QuestionID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// handleCloseQuestion flushes pending drafts before the snapshot is taken.
func (s *Server) handleCloseQuestion(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	if _, err := s.hostRoom(c, roomID); err != nil {
		writeStoreError(c, err)
		return
	}
	s.autosave.FlushRoom(roomID)
	result, err := s.store.CloseQuestion(c.Request.Context(), roomID, currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleNextQuestion(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.NextQuestion(c.Request.Context(), roomID, currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
