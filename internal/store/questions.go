package store

import (
	"context"
	"fmt"
	"strings"

	"flipquiz/internal/blob"
	"flipquiz/internal/dataurl"

	"github.com/rs/zerolog/log"
)

// QuestionImage is an optional picture attached to a question.
type QuestionImage struct {
	ContentType string
	Data        []byte
}

// AddQuestion queues a question at the end of the room's list.
func (s *Store) AddQuestion(ctx context.Context, roomID uint, hostUID, text string, image *QuestionImage) (Question, error) {
	room, err := s.hostRoom(ctx, roomID, hostUID)
	if err != nil {
		return Question{}, err
	}
	if room.Status == StatusEnded {
		return Question{}, ErrRoomEnded
	}
	text = strings.TrimSpace(text)
	hasImage := image != nil && len(image.Data) > 0
	if text == "" && !hasImage {
		return Question{}, fmt.Errorf("%w: question needs text or an image", ErrInvalidInput)
	}
	question := Question{RoomID: roomID, Text: text}
	if hasImage {
		contentType := image.ContentType
		if contentType == "" {
			contentType = "image/png"
		}
		url, err := s.blobs.Upload(ctx, blob.QuestionImagePath(roomID, dataurl.Extension(contentType)), contentType, image.Data)
		if err != nil {
			return Question{}, fmt.Errorf("upload question image: %w", err)
		}
		question.ImageURL = url
	}
	existing, err := s.repo.ListQuestions(ctx, roomID)
	if err != nil {
		return Question{}, err
	}
	question.Position = len(existing) + 1
	if err := s.repo.CreateQuestion(ctx, &question); err != nil {
		return Question{}, fmt.Errorf("create question: %w", err)
	}
	s.publish(ctx, questionsTopic(roomID))
	return question, nil
}

// PostQuestion makes a queued question current and opens answering.
func (s *Store) PostQuestion(ctx context.Context, roomID uint, hostUID string, questionID uint) (Question, error) {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return Question{}, err
	}
	var posted Question
	err := s.repo.InTx(ctx, func(repo Repository) error {
		question, err := repo.UpdateQuestion(ctx, questionID, func(q *Question) error {
			if q.RoomID != roomID {
				return ErrNotFound
			}
			if q.ClosedAt != nil {
				return ErrQuestionClosed
			}
			now := s.now()
			q.PostedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
		posted = question
		_, err = s.transition(ctx, repo, roomID, StatusQuestioning, func(room *Room) error {
			id := question.ID
			room.CurrentQuestionID = &id
			return nil
		})
		return err
	})
	if err != nil {
		return Question{}, err
	}
	log.Info().Uint("room_id", roomID).Uint("question_id", questionID).Msg("question posted")
	s.publish(ctx, roomTopic(roomID), questionsTopic(roomID), answersTopic(roomID))
	return posted, nil
}

// AskQuestion queues a question and posts it immediately.
func (s *Store) AskQuestion(ctx context.Context, roomID uint, hostUID, text string, image *QuestionImage) (Question, error) {
	room, err := s.hostRoom(ctx, roomID, hostUID)
	if err != nil {
		return Question{}, err
	}
	if !CanTransition(room.Status, StatusQuestioning) {
		return Question{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, room.Status, StatusQuestioning)
	}
	question, err := s.AddQuestion(ctx, roomID, hostUID, text, image)
	if err != nil {
		return Question{}, err
	}
	return s.PostQuestion(ctx, roomID, hostUID, question.ID)
}

func (s *Store) ListQuestions(ctx context.Context, roomID uint) ([]Question, error) {
	return s.repo.ListQuestions(ctx, roomID)
}

func (s *Store) GetCurrentQuestion(ctx context.Context, roomID uint) (Question, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return Question{}, err
	}
	if room.CurrentQuestionID == nil {
		return Question{}, ErrNoCurrentQuestion
	}
	return s.repo.GetQuestion(ctx, *room.CurrentQuestionID)
}

// CloseQuestion stops answering on the current question. Every drawing is
// uploaded into the history store first; if any upload fails nothing changes.
func (s *Store) CloseQuestion(ctx context.Context, roomID uint, hostUID string) (GameResult, error) {
	room, err := s.hostRoom(ctx, roomID, hostUID)
	if err != nil {
		return GameResult{}, err
	}
	if room.Status != StatusQuestioning {
		return GameResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, room.Status, StatusOpen)
	}
	if room.CurrentQuestionID == nil {
		return GameResult{}, ErrNoCurrentQuestion
	}
	question, err := s.repo.GetQuestion(ctx, *room.CurrentQuestionID)
	if err != nil {
		return GameResult{}, err
	}
	answers, err := s.repo.ListAnswers(ctx, roomID, question.ID)
	if err != nil {
		return GameResult{}, err
	}

	snapshot := make([]ResultAnswer, 0, len(answers))
	for _, answer := range answers {
		entry := ResultAnswer{
			UID:         answer.UID,
			DisplayName: answer.DisplayName,
			IsCorrect:   answer.IsCorrect,
		}
		if answer.ImageData != "" {
			data, contentType, err := dataurl.Decode(answer.ImageData)
			if err != nil {
				return GameResult{}, fmt.Errorf("decode answer %d: %w", answer.ID, err)
			}
			url, err := s.blobs.Upload(ctx, blob.HistoryImagePath(roomID, question.ID, answer.UID), contentType, data)
			if err != nil {
				log.Error().Err(err).Uint("room_id", roomID).Str("uid", answer.UID).Msg("history upload failed")
				return GameResult{}, fmt.Errorf("upload history image: %w", err)
			}
			entry.ImageURL = url
		}
		snapshot = append(snapshot, entry)
	}

	result := GameResult{
		RoomID:           roomID,
		RoomCode:         room.Code,
		HostUID:          room.HostUID,
		QuestionID:       question.ID,
		QuestionText:     question.Text,
		QuestionImageURL: question.ImageURL,
		Answers:          snapshot,
		ClosedAt:         s.now(),
	}
	err = s.repo.InTx(ctx, func(repo Repository) error {
		if err := repo.CreateGameResult(ctx, &result); err != nil {
			return err
		}
		closedAt := result.ClosedAt
		if _, err := repo.UpdateQuestion(ctx, question.ID, func(q *Question) error {
			q.ClosedAt = &closedAt
			return nil
		}); err != nil {
			return err
		}
		_, err := s.transition(ctx, repo, roomID, StatusOpen, nil)
		return err
	})
	if err != nil {
		return GameResult{}, err
	}
	log.Info().Uint("room_id", roomID).Uint("question_id", question.ID).Int("answers", len(snapshot)).Msg("history snapshot saved")
	s.publish(ctx, roomTopic(roomID), questionsTopic(roomID), historyTopic(roomID))
	return result, nil
}

// NextQuestion returns an open room to waiting so another question can be
// posted.
func (s *Store) NextQuestion(ctx context.Context, roomID uint, hostUID string) (Room, error) {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return Room{}, err
	}
	room, err := s.transition(ctx, s.repo, roomID, StatusWaiting, func(room *Room) error {
		room.CurrentQuestionID = nil
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.publish(ctx, roomTopic(roomID))
	return room, nil
}
