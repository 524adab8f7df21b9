package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"flipquiz/internal/blob"
	"flipquiz/internal/config"
	"flipquiz/internal/db"
	"flipquiz/internal/logger"
	"flipquiz/internal/realtime"
	"flipquiz/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type questionRecord struct {
	Text      string
	ImagePath string
}

// load-questions queues every row of a CSV file as a question in an open
// room. Columns are text and an optional image path relative to the file.
func main() {
	filePath := flag.String("file", "questions.csv", "path to questions csv")
	roomCode := flag.String("room", "", "join code of the room to fill")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if strings.TrimSpace(*roomCode) == "" {
		log.Fatal().Msg("--room is required")
	}
	records, err := readQuestions(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to read questions")
	}

	if err := checkBlobDriver(cfg.BlobDriver, records); err != nil {
		log.Fatal().Err(err).Msg("cannot upload question images")
	}

	ctx := context.Background()
	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store setup failed")
	}
	hub := realtime.NewHub()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		hub.AttachBridge(ctx, realtime.NewRedisBridge(client, cfg.RedisChannel))
	}
	st := store.New(store.NewGormRepository(conn), blobs, hub, store.Options{
		DefaultMaxParticipants: cfg.DefaultMaxParticipants,
		MaxParticipantsLimit:   cfg.MaxParticipantsLimit,
	})

	room, err := st.FindRoomByCode(ctx, *roomCode)
	if err != nil {
		log.Fatal().Err(err).Str("code", *roomCode).Msg("room not found")
	}

	inserted := 0
	for _, record := range records {
		image, err := loadImage(filepath.Dir(*filePath), record.ImagePath)
		if err != nil {
			log.Fatal().Err(err).Str("image", record.ImagePath).Msg("failed to read question image")
		}
		if _, err := st.AddQuestion(ctx, room.ID, room.HostUID, record.Text, image); err != nil {
			log.Fatal().Err(err).Str("text", record.Text).Msg("failed to add question")
		}
		inserted++
	}
	log.Info().Int("count", inserted).Uint("room_id", room.ID).Msg("questions loaded")
}

// checkBlobDriver rejects the memory driver when rows carry images, since
// blobs held by this process would vanish when it exits.
func checkBlobDriver(driver string, records []questionRecord) error {
	if !strings.EqualFold(strings.TrimSpace(driver), "memory") {
		return nil
	}
	for _, record := range records {
		if record.ImagePath != "" {
			return fmt.Errorf("BLOB_DRIVER=memory cannot keep %s; use minio or supabase", record.ImagePath)
		}
	}
	return nil
}

func readQuestions(path string) ([]questionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseQuestions(file)
}

// parseQuestions skips the header row and rows with neither text nor image.
func parseQuestions(r io.Reader) ([]questionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	var records []questionRecord
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		record := questionRecord{Text: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			record.ImagePath = strings.TrimSpace(row[1])
		}
		if record.Text == "" && record.ImagePath == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func loadImage(baseDir, path string) (*store.QuestionImage, error) {
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New("not an image")
	}
	return &store.QuestionImage{ContentType: contentType, Data: data}, nil
}
