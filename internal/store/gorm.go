package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"flipquiz/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository persists every collection in Postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{db: conn}
}

func (r *GormRepository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *GormRepository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *GormRepository) CreateRoom(ctx context.Context, room *Room) error {
	record := roomRecord(*room)
	if err := r.conn(ctx).Create(&record).Error; err != nil {
		return translate(err)
	}
	*room = roomFromRecord(record)
	return nil
}

func (r *GormRepository) GetRoom(ctx context.Context, id uint) (Room, error) {
	var record db.Room
	if err := r.conn(ctx).First(&record, id).Error; err != nil {
		return Room{}, translate(err)
	}
	return roomFromRecord(record), nil
}

func (r *GormRepository) FindActiveRoomByCode(ctx context.Context, code string) (Room, error) {
	var record db.Room
	err := r.conn(ctx).
		Where("UPPER(code) = ? AND status <> ?", strings.ToUpper(code), string(StatusEnded)).
		Order("id desc").
		First(&record).Error
	if err != nil {
		return Room{}, translate(err)
	}
	return roomFromRecord(record), nil
}

func (r *GormRepository) ListRoomsByHost(ctx context.Context, hostUID string) ([]Room, error) {
	var records []db.Room
	if err := r.conn(ctx).Where("host_uid = ?", hostUID).Order("id desc").Find(&records).Error; err != nil {
		return nil, err
	}
	rooms := make([]Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromRecord(record))
	}
	return rooms, nil
}

// UpdateRoom locks the row for the duration of update so concurrent status
// changes serialize.
func (r *GormRepository) UpdateRoom(ctx context.Context, id uint, update func(room *Room) error) (Room, error) {
	var updated Room
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			return err
		}
		room := roomFromRecord(record)
		if err := update(&room); err != nil {
			return err
		}
		var current any
		if room.CurrentQuestionID != nil {
			current = *room.CurrentQuestionID
		}
		if err := tx.Model(&record).Updates(map[string]any{
			"title":               room.Title,
			"status":              string(room.Status),
			"current_question_id": current,
			"max_participants":    room.MaxParticipants,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&record, id).Error; err != nil {
			return err
		}
		updated = roomFromRecord(record)
		return nil
	})
	if err != nil {
		return Room{}, translate(err)
	}
	return updated, nil
}

func (r *GormRepository) DeleteRoom(ctx context.Context, id uint) error {
	result := r.conn(ctx).Delete(&db.Room{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) CreateParticipant(ctx context.Context, participant *Participant) error {
	record := db.Participant{
		RoomID:      participant.RoomID,
		UID:         participant.UID,
		DisplayName: participant.DisplayName,
		PhotoURL:    participant.PhotoURL,
		Status:      string(participant.Status),
		JoinedAt:    participant.JoinedAt,
	}
	if err := r.conn(ctx).Create(&record).Error; err != nil {
		return translate(err)
	}
	*participant = participantFromRecord(record)
	return nil
}

func (r *GormRepository) GetParticipant(ctx context.Context, roomID uint, uid string) (Participant, error) {
	var record db.Participant
	if err := r.conn(ctx).Where("room_id = ? AND uid = ?", roomID, uid).First(&record).Error; err != nil {
		return Participant{}, translate(err)
	}
	return participantFromRecord(record), nil
}

func (r *GormRepository) ListParticipants(ctx context.Context, roomID uint) ([]Participant, error) {
	var records []db.Participant
	if err := r.conn(ctx).Where("room_id = ?", roomID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]Participant, 0, len(records))
	for _, record := range records {
		list = append(list, participantFromRecord(record))
	}
	return list, nil
}

func (r *GormRepository) CountActiveParticipants(ctx context.Context, roomID uint) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&db.Participant{}).
		Where("room_id = ? AND status <> ?", roomID, string(ParticipantLeft)).
		Count(&count).Error
	return int(count), err
}

func (r *GormRepository) UpdateParticipantStatus(ctx context.Context, roomID uint, uid string, status ParticipantStatus) (Participant, error) {
	result := r.conn(ctx).Model(&db.Participant{}).
		Where("room_id = ? AND uid = ?", roomID, uid).
		Update("status", string(status))
	if result.Error != nil {
		return Participant{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Participant{}, ErrNotFound
	}
	return r.GetParticipant(ctx, roomID, uid)
}

func (r *GormRepository) DeleteParticipant(ctx context.Context, roomID uint, uid string) error {
	result := r.conn(ctx).Where("room_id = ? AND uid = ?", roomID, uid).Delete(&db.Participant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) CreateBan(ctx context.Context, ban *BannedUser) error {
	record := db.BannedUser{
		RoomID:   ban.RoomID,
		UID:      ban.UID,
		BannedBy: ban.BannedBy,
		Reason:   ban.Reason,
	}
	if err := r.conn(ctx).Create(&record).Error; err != nil {
		return translate(err)
	}
	*ban = banFromRecord(record)
	return nil
}

func (r *GormRepository) CountBans(ctx context.Context, roomID uint, uid string) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&db.BannedUser{}).
		Where("room_id = ? AND uid = ?", roomID, uid).
		Count(&count).Error
	return int(count), err
}

func (r *GormRepository) ListBans(ctx context.Context, roomID uint) ([]BannedUser, error) {
	var records []db.BannedUser
	if err := r.conn(ctx).Where("room_id = ?", roomID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]BannedUser, 0, len(records))
	for _, record := range records {
		list = append(list, banFromRecord(record))
	}
	return list, nil
}

func (r *GormRepository) DeleteBans(ctx context.Context, roomID uint, uid string) (int, error) {
	result := r.conn(ctx).Where("room_id = ? AND uid = ?", roomID, uid).Delete(&db.BannedUser{})
	return int(result.RowsAffected), result.Error
}

func (r *GormRepository) CreateQuestion(ctx context.Context, question *Question) error {
	record := db.Question{
		RoomID:   question.RoomID,
		Text:     question.Text,
		ImageURL: question.ImageURL,
		Position: question.Position,
		PostedAt: question.PostedAt,
		ClosedAt: question.ClosedAt,
	}
	if err := r.conn(ctx).Create(&record).Error; err != nil {
		return translate(err)
	}
	*question = questionFromRecord(record)
	return nil
}

func (r *GormRepository) GetQuestion(ctx context.Context, id uint) (Question, error) {
	var record db.Question
	if err := r.conn(ctx).First(&record, id).Error; err != nil {
		return Question{}, translate(err)
	}
	return questionFromRecord(record), nil
}

func (r *GormRepository) ListQuestions(ctx context.Context, roomID uint) ([]Question, error) {
	var records []db.Question
	if err := r.conn(ctx).Where("room_id = ?", roomID).Order("position asc, id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]Question, 0, len(records))
	for _, record := range records {
		list = append(list, questionFromRecord(record))
	}
	return list, nil
}

func (r *GormRepository) UpdateQuestion(ctx context.Context, id uint, update func(question *Question) error) (Question, error) {
	var updated Question
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Question
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			return err
		}
		question := questionFromRecord(record)
		if err := update(&question); err != nil {
			return err
		}
		if err := tx.Model(&record).Updates(map[string]any{
			"text":      question.Text,
			"image_url": question.ImageURL,
			"position":  question.Position,
			"posted_at": question.PostedAt,
			"closed_at": question.ClosedAt,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&record, id).Error; err != nil {
			return err
		}
		updated = questionFromRecord(record)
		return nil
	})
	if err != nil {
		return Question{}, translate(err)
	}
	return updated, nil
}

func (r *GormRepository) UpsertAnswer(ctx context.Context, answer *Answer) error {
	record := db.Answer{
		RoomID:      answer.RoomID,
		QuestionID:  answer.QuestionID,
		UID:         answer.UID,
		DisplayName: answer.DisplayName,
		ImageData:   answer.ImageData,
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"image_data", "display_name", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return translate(err)
	}
	var stored db.Answer
	if err := r.conn(ctx).Where("question_id = ? AND uid = ?", answer.QuestionID, answer.UID).First(&stored).Error; err != nil {
		return translate(err)
	}
	*answer = answerFromRecord(stored)
	return nil
}

func (r *GormRepository) GetAnswer(ctx context.Context, id uint) (Answer, error) {
	var record db.Answer
	if err := r.conn(ctx).First(&record, id).Error; err != nil {
		return Answer{}, translate(err)
	}
	return answerFromRecord(record), nil
}

func (r *GormRepository) ListAnswers(ctx context.Context, roomID, questionID uint) ([]Answer, error) {
	var records []db.Answer
	err := r.conn(ctx).
		Where("room_id = ? AND question_id = ?", roomID, questionID).
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	list := make([]Answer, 0, len(records))
	for _, record := range records {
		list = append(list, answerFromRecord(record))
	}
	return list, nil
}

func (r *GormRepository) UpdateAnswer(ctx context.Context, id uint, update func(answer *Answer) error) (Answer, error) {
	var updated Answer
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Answer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			return err
		}
		answer := answerFromRecord(record)
		if err := update(&answer); err != nil {
			return err
		}
		if err := tx.Model(&record).Updates(map[string]any{
			"display_name": answer.DisplayName,
			"image_data":   answer.ImageData,
			"is_correct":   answer.IsCorrect,
			"is_revealed":  answer.IsRevealed,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&record, id).Error; err != nil {
			return err
		}
		updated = answerFromRecord(record)
		return nil
	})
	if err != nil {
		return Answer{}, translate(err)
	}
	return updated, nil
}

func (r *GormRepository) CreateGameResult(ctx context.Context, result *GameResult) error {
	answers := result.Answers
	if answers == nil {
		answers = []ResultAnswer{}
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	record := db.GameResult{
		RoomID:           result.RoomID,
		RoomCode:         result.RoomCode,
		HostUID:          result.HostUID,
		QuestionID:       result.QuestionID,
		QuestionText:     result.QuestionText,
		QuestionImageURL: result.QuestionImageURL,
		Answers:          datatypes.JSON(payload),
		ClosedAt:         result.ClosedAt,
	}
	if err := r.conn(ctx).Create(&record).Error; err != nil {
		return translate(err)
	}
	result.ID = record.ID
	return nil
}

func (r *GormRepository) GetGameResult(ctx context.Context, id uint) (GameResult, error) {
	var record db.GameResult
	if err := r.conn(ctx).First(&record, id).Error; err != nil {
		return GameResult{}, translate(err)
	}
	return gameResultFromRecord(record)
}

func (r *GormRepository) ListGameResults(ctx context.Context, roomID uint) ([]GameResult, error) {
	return r.listGameResults(ctx, "room_id = ?", roomID)
}

func (r *GormRepository) ListGameResultsByHost(ctx context.Context, hostUID string) ([]GameResult, error) {
	return r.listGameResults(ctx, "host_uid = ?", hostUID)
}

func (r *GormRepository) listGameResults(ctx context.Context, query string, arg any) ([]GameResult, error) {
	var records []db.GameResult
	if err := r.conn(ctx).Where(query, arg).Order("closed_at asc, id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]GameResult, 0, len(records))
	for _, record := range records {
		result, err := gameResultFromRecord(record)
		if err != nil {
			return nil, err
		}
		list = append(list, result)
	}
	return list, nil
}

func (r *GormRepository) GetProfile(ctx context.Context, uid string) (Profile, error) {
	var record db.Profile
	if err := r.conn(ctx).Where("uid = ?", uid).First(&record).Error; err != nil {
		return Profile{}, translate(err)
	}
	return profileFromRecord(record), nil
}

func (r *GormRepository) SaveProfile(ctx context.Context, profile *Profile) error {
	record := db.Profile{
		UID:         profile.UID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		AvatarURL:   profile.AvatarURL,
		CreatedAt:   profile.CreatedAt,
		LastLoginAt: profile.LastLoginAt,
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "photo_url", "avatar_url", "updated_at", "last_login_at"}),
	}).Create(&record).Error
	if err != nil {
		return translate(err)
	}
	*profile = profileFromRecord(record)
	return nil
}

func roomRecord(room Room) db.Room {
	return db.Room{
		ID:                room.ID,
		HostUID:           room.HostUID,
		Code:              room.Code,
		Title:             room.Title,
		Status:            string(room.Status),
		CurrentQuestionID: room.CurrentQuestionID,
		MaxParticipants:   room.MaxParticipants,
	}
}

func roomFromRecord(record db.Room) Room {
	return Room{
		ID:                record.ID,
		HostUID:           record.HostUID,
		Code:              record.Code,
		Title:             record.Title,
		Status:            RoomStatus(record.Status),
		CurrentQuestionID: record.CurrentQuestionID,
		MaxParticipants:   record.MaxParticipants,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func participantFromRecord(record db.Participant) Participant {
	return Participant{
		ID:          record.ID,
		RoomID:      record.RoomID,
		UID:         record.UID,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
		Status:      ParticipantStatus(record.Status),
		JoinedAt:    record.JoinedAt,
	}
}

func banFromRecord(record db.BannedUser) BannedUser {
	return BannedUser{
		ID:        record.ID,
		RoomID:    record.RoomID,
		UID:       record.UID,
		BannedBy:  record.BannedBy,
		Reason:    record.Reason,
		CreatedAt: record.CreatedAt,
	}
}

func questionFromRecord(record db.Question) Question {
	return Question{
		ID:        record.ID,
		RoomID:    record.RoomID,
		Text:      record.Text,
		ImageURL:  record.ImageURL,
		Position:  record.Position,
		PostedAt:  record.PostedAt,
		ClosedAt:  record.ClosedAt,
		CreatedAt: record.CreatedAt,
	}
}

func answerFromRecord(record db.Answer) Answer {
	return Answer{
		ID:          record.ID,
		RoomID:      record.RoomID,
		QuestionID:  record.QuestionID,
		UID:         record.UID,
		DisplayName: record.DisplayName,
		ImageData:   record.ImageData,
		IsCorrect:   record.IsCorrect,
		IsRevealed:  record.IsRevealed,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func gameResultFromRecord(record db.GameResult) (GameResult, error) {
	answers := make([]ResultAnswer, 0)
	if len(record.Answers) > 0 {
		if err := json.Unmarshal(record.Answers, &answers); err != nil {
			return GameResult{}, fmt.Errorf("decode game result %d: %w", record.ID, err)
		}
	}
	return GameResult{
		ID:               record.ID,
		RoomID:           record.RoomID,
		RoomCode:         record.RoomCode,
		HostUID:          record.HostUID,
		QuestionID:       record.QuestionID,
		QuestionText:     record.QuestionText,
		QuestionImageURL: record.QuestionImageURL,
		Answers:          answers,
		ClosedAt:         record.ClosedAt,
	}, nil
}

func profileFromRecord(record db.Profile) Profile {
	return Profile{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
		AvatarURL:   record.AvatarURL,
		CreatedAt:   record.CreatedAt,
		LastLoginAt: record.LastLoginAt,
	}
}
