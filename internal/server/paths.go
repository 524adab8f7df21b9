package server

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

func playPath(code string) string {
	return "/play/" + url.PathEscape(code)
}

func hostPath(roomID uint) string {
	return "/host/" + strconv.FormatUint(uint64(roomID), 10)
}

func broadcastPath(roomID uint) string {
	return "/broadcast/" + strconv.FormatUint(uint64(roomID), 10)
}

func roomHistoryPath(roomID uint) string {
	return "/api/rooms/" + strconv.FormatUint(uint64(roomID), 10) + "/history"
}

// parseWatchList splits the ?watch= query of the room socket. An empty list
// watches every topic.
func parseWatchList(raw string) (map[string]bool, bool) {
	watch := make(map[string]bool)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		for _, topic := range watchTopics {
			watch[topic] = true
		}
		return watch, true
	}
	for _, part := range strings.Split(raw, ",") {
		topic := strings.ToLower(strings.TrimSpace(part))
		if topic == "" {
			continue
		}
		if !slices.Contains(watchTopics, topic) {
			return nil, false
		}
		watch[topic] = true
	}
	return watch, len(watch) > 0
}
