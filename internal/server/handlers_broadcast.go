package server

import (
	"errors"
	"net/http"

	"flipquiz/internal/recolor"
	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type broadcastCard struct {
	AnswerID    uint   `json:"answer_id"`
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	IsCorrect   bool   `json:"is_correct"`
	Image       string `json:"image"`
}

type broadcastSizeQuery struct {
	Width  int `form:"w" binding:"omitempty,min=16,max=2048"`
	Height int `form:"h" binding:"omitempty,min=16,max=2048"`
}

func (s *Server) broadcastSize(c *gin.Context) (int, int, bool) {
	var query broadcastSizeQuery
	if !bindQuery(c, &query) {
		return 0, 0, false
	}
	width, height := s.cfg.BroadcastWidth, s.cfg.BroadcastHeight
	if query.Width > 0 {
		width = query.Width
	}
	if query.Height > 0 {
		height = query.Height
	}
	return width, height, true
}

// handleBroadcast renders every revealed answer of the current question as a
// recolored card for the shared screen.
func (s *Server) handleBroadcast(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	width, height, ok := s.broadcastSize(c)
	if !ok {
		return
	}
	question, answers, err := s.store.RevealedAnswers(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrNoCurrentQuestion) {
		c.JSON(http.StatusOK, gin.H{"question": nil, "cards": []broadcastCard{}})
		return
	}
	if err != nil {
		writeStoreError(c, err)
		return
	}
	cards := s.renderCards(answers, width, height)
	c.JSON(http.StatusOK, gin.H{"question": question, "cards": cards})
}

func (s *Server) renderCards(answers []store.Answer, width, height int) []broadcastCard {
	opts := s.recolorOptions()
	cards := make([]broadcastCard, 0, len(answers))
	for _, answer := range answers {
		image, err := recolor.RenderDataURL(answer.ImageData, answer.IsCorrect, width, height, opts)
		if err != nil {
			log.Warn().Err(err).Uint("answer_id", answer.ID).Msg("skipping unreadable drawing")
			continue
		}
		cards = append(cards, broadcastCard{
			AnswerID:    answer.ID,
			UID:         answer.UID,
			DisplayName: answer.DisplayName,
			IsCorrect:   answer.IsCorrect,
			Image:       image,
		})
	}
	return cards
}

func (s *Server) handleAnswerCard(c *gin.Context) {
	answerID, ok := bindAnswer(c)
	if !ok {
		return
	}
	width, height, ok := s.broadcastSize(c)
	if !ok {
		return
	}
	answer, err := s.store.GetAnswer(c.Request.Context(), answerID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if !answer.IsRevealed {
		writeError(c, http.StatusNotFound, "answer has not been revealed")
		return
	}
	png, err := recolor.RenderPNG(answer.ImageData, answer.IsCorrect, width, height, s.recolorOptions())
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, "drawing could not be rendered")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
