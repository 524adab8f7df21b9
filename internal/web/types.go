package web

import "time"

type Viewer struct {
	UID         string
	DisplayName string
	PhotoURL    string
}

type RoomLink struct {
	Title     string
	Code      string
	Status    string
	HostURL   string
	CreatedAt time.Time
}

type HomePage struct {
	Flash        string
	Viewer       *Viewer
	SignInReady  bool
	Rooms        []RoomLink
	MaxPlayers   int
	DefaultLimit int
}

type HostPage struct {
	RoomID    uint
	Code      string
	Title     string
	Status    string
	PlayURL   string
	Broadcast string
	Viewer    *Viewer
	CanvasW   int
	CanvasH   int
}

type PlayPage struct {
	RoomID  uint
	Code    string
	Title   string
	Viewer  *Viewer
	CanvasW int
	CanvasH int
}

type BroadcastPage struct {
	RoomID uint
	Code   string
	Title  string
}

type PaginationData struct {
	BasePath   string `json:"-"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevPage   int    `json:"prev_page,omitempty"`
	NextPage   int    `json:"next_page,omitempty"`
	PrevURL    string `json:"prev_url,omitempty"`
	NextURL    string `json:"next_url,omitempty"`
}
