package store

import (
	"context"
	"errors"
	"fmt"

	"flipquiz/internal/dataurl"

	"github.com/rs/zerolog/log"
)

// SubmitAnswer saves the participant's drawing for the current question.
// Resubmitting replaces the drawing and keeps the host's flags.
func (s *Store) SubmitAnswer(ctx context.Context, roomID uint, identity Identity, questionID uint, imageData string) (Answer, error) {
	if _, _, err := dataurl.Decode(imageData); err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	participant, err := s.CheckAnswer(ctx, roomID, identity.UID, questionID)
	if err != nil {
		return Answer{}, err
	}
	answer := Answer{
		RoomID:      roomID,
		QuestionID:  questionID,
		UID:         identity.UID,
		DisplayName: participant.DisplayName,
		ImageData:   imageData,
	}
	if err := s.repo.UpsertAnswer(ctx, &answer); err != nil {
		return Answer{}, fmt.Errorf("save answer: %w", err)
	}
	log.Debug().Uint("room_id", roomID).Uint("question_id", questionID).Str("uid", identity.UID).Msg("answer saved")
	s.publish(ctx, answersTopic(roomID))
	return answer, nil
}

// CheckAnswer reports whether uid may answer questionID right now and
// returns the participant record the answer is filed under.
func (s *Store) CheckAnswer(ctx context.Context, roomID uint, uid string, questionID uint) (Participant, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return Participant{}, err
	}
	if room.Status == StatusEnded {
		return Participant{}, ErrRoomEnded
	}
	if room.Status != StatusQuestioning || room.CurrentQuestionID == nil || *room.CurrentQuestionID != questionID {
		return Participant{}, ErrQuestionClosed
	}
	banned, err := s.IsUserBanned(ctx, roomID, uid)
	if err != nil {
		return Participant{}, err
	}
	if banned {
		return Participant{}, ErrBanned
	}
	participant, err := s.repo.GetParticipant(ctx, roomID, uid)
	if errors.Is(err, ErrNotFound) {
		return Participant{}, ErrNotParticipant
	}
	if err != nil {
		return Participant{}, err
	}
	return participant, nil
}

func (s *Store) GetAnswer(ctx context.Context, answerID uint) (Answer, error) {
	return s.repo.GetAnswer(ctx, answerID)
}

func (s *Store) ListAnswers(ctx context.Context, roomID, questionID uint) ([]Answer, error) {
	return s.repo.ListAnswers(ctx, roomID, questionID)
}

func (s *Store) hostAnswer(ctx context.Context, answerID uint, hostUID string, update func(answer *Answer)) (Answer, error) {
	answer, err := s.repo.GetAnswer(ctx, answerID)
	if err != nil {
		return Answer{}, err
	}
	if _, err := s.hostRoom(ctx, answer.RoomID, hostUID); err != nil {
		return Answer{}, err
	}
	answer, err = s.repo.UpdateAnswer(ctx, answerID, func(a *Answer) error {
		update(a)
		return nil
	})
	if err != nil {
		return Answer{}, err
	}
	s.publish(ctx, answersTopic(answer.RoomID))
	return answer, nil
}

// SetAnswerCorrect marks an answer right or wrong in any room status.
func (s *Store) SetAnswerCorrect(ctx context.Context, answerID uint, hostUID string, correct bool) (Answer, error) {
	return s.hostAnswer(ctx, answerID, hostUID, func(a *Answer) { a.IsCorrect = correct })
}

func (s *Store) SetAnswerRevealed(ctx context.Context, answerID uint, hostUID string, revealed bool) (Answer, error) {
	return s.hostAnswer(ctx, answerID, hostUID, func(a *Answer) { a.IsRevealed = revealed })
}

// RevealAll reveals every answer to the question and returns how many changed.
func (s *Store) RevealAll(ctx context.Context, roomID uint, hostUID string, questionID uint) (int, error) {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return 0, err
	}
	changed := 0
	err := s.repo.InTx(ctx, func(repo Repository) error {
		answers, err := repo.ListAnswers(ctx, roomID, questionID)
		if err != nil {
			return err
		}
		for _, answer := range answers {
			if answer.IsRevealed {
				continue
			}
			if _, err := repo.UpdateAnswer(ctx, answer.ID, func(a *Answer) error {
				a.IsRevealed = true
				return nil
			}); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.publish(ctx, answersTopic(roomID))
	}
	return changed, nil
}

// RevealedAnswers lists the revealed answers of the room's current question,
// falling back to the latest posted question once answering has closed.
func (s *Store) RevealedAnswers(ctx context.Context, roomID uint) (Question, []Answer, error) {
	question, err := s.GetCurrentQuestion(ctx, roomID)
	if errors.Is(err, ErrNoCurrentQuestion) {
		question, err = s.latestPostedQuestion(ctx, roomID)
	}
	if err != nil {
		return Question{}, nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, roomID, question.ID)
	if err != nil {
		return Question{}, nil, err
	}
	revealed := make([]Answer, 0, len(answers))
	for _, answer := range answers {
		if answer.IsRevealed {
			revealed = append(revealed, answer)
		}
	}
	return question, revealed, nil
}

func (s *Store) latestPostedQuestion(ctx context.Context, roomID uint) (Question, error) {
	questions, err := s.repo.ListQuestions(ctx, roomID)
	if err != nil {
		return Question{}, err
	}
	var latest *Question
	for i := range questions {
		q := questions[i]
		if q.PostedAt == nil {
			continue
		}
		if latest == nil || q.PostedAt.After(*latest.PostedAt) {
			latest = &q
		}
	}
	if latest == nil {
		return Question{}, ErrNoCurrentQuestion
	}
	return *latest, nil
}
