package server

import (
	"context"
	"sync"
	"time"

	"flipquiz/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type draftKey struct {
	roomID uint
	uid    string
}

type draft struct {
	identity   store.Identity
	questionID uint
	image      string
	seq        uint64
}

type draftSaver func(ctx context.Context, roomID uint, d draft) (store.Answer, error)

// autosaveSlot throttles one participant's drawing in one room. saveMu
// orders writes so an older draft never lands after a newer one.
type autosaveSlot struct {
	limiter  *rate.Limiter
	pending  *draft
	timer    *time.Timer
	seq      uint64
	saveMu   sync.Mutex
	savedSeq uint64
}

// autosaver writes at most one submission per interval for each participant.
// Drafts arriving inside the window replace each other and the last one is
// written when the window closes.
type autosaver struct {
	mu       sync.Mutex
	interval time.Duration
	save     draftSaver
	slots    map[draftKey]*autosaveSlot
}

func newAutosaver(interval time.Duration, save draftSaver) *autosaver {
	if interval <= 0 {
		interval = time.Second
	}
	return &autosaver{
		interval: interval,
		save:     save,
		slots:    make(map[draftKey]*autosaveSlot),
	}
}

func (a *autosaver) slot(key draftKey) *autosaveSlot {
	slot, ok := a.slots[key]
	if !ok {
		slot = &autosaveSlot{limiter: rate.NewLimiter(rate.Every(a.interval), 1)}
		a.slots[key] = slot
	}
	return slot
}

// Submit saves d now when the participant's window is open or when final is
// set. Otherwise d becomes the pending draft and saved is false.
func (a *autosaver) Submit(ctx context.Context, roomID uint, d draft, final bool) (answer store.Answer, saved bool, err error) {
	key := draftKey{roomID: roomID, uid: d.identity.UID}
	a.mu.Lock()
	slot := a.slot(key)
	slot.seq++
	d.seq = slot.seq
	if !final && (slot.timer != nil || !slot.limiter.Allow()) {
		slot.pending = &d
		if slot.timer == nil {
			delay := slot.limiter.Reserve().Delay()
			slot.timer = time.AfterFunc(delay, func() {
				a.flushKey(key)
			})
		}
		a.mu.Unlock()
		return store.Answer{}, false, nil
	}
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
	slot.pending = nil
	a.mu.Unlock()

	answer, err = a.write(ctx, roomID, slot, d)
	return answer, err == nil, err
}

func (a *autosaver) write(ctx context.Context, roomID uint, slot *autosaveSlot, d draft) (store.Answer, error) {
	slot.saveMu.Lock()
	defer slot.saveMu.Unlock()
	if d.seq <= slot.savedSeq {
		return store.Answer{}, nil
	}
	answer, err := a.save(ctx, roomID, d)
	if err != nil {
		return store.Answer{}, err
	}
	slot.savedSeq = d.seq
	return answer, nil
}

func (a *autosaver) take(key draftKey) (*autosaveSlot, *draft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.slots[key]
	if !ok {
		return nil, nil
	}
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
	pending := slot.pending
	slot.pending = nil
	return slot, pending
}

func (a *autosaver) flushKey(key draftKey) {
	slot, pending := a.take(key)
	if pending == nil {
		return
	}
	if _, err := a.write(context.Background(), key.roomID, slot, *pending); err != nil {
		log.Warn().Err(err).Uint("room_id", key.roomID).Str("uid", key.uid).Msg("autosave failed")
	}
}

// Flush writes the participant's pending draft, if any, right away.
func (a *autosaver) Flush(roomID uint, uid string) {
	a.flushKey(draftKey{roomID: roomID, uid: uid})
}

func (a *autosaver) FlushRoom(roomID uint) {
	a.mu.Lock()
	keys := make([]draftKey, 0)
	for key := range a.slots {
		if key.roomID == roomID {
			keys = append(keys, key)
		}
	}
	a.mu.Unlock()
	for _, key := range keys {
		a.flushKey(key)
	}
}

// Drop discards the participant's pending draft without saving it.
func (a *autosaver) Drop(roomID uint, uid string) {
	key := draftKey{roomID: roomID, uid: uid}
	a.mu.Lock()
	defer a.mu.Unlock()
	if slot, ok := a.slots[key]; ok {
		if slot.timer != nil {
			slot.timer.Stop()
		}
		delete(a.slots, key)
	}
}

func (a *autosaver) Pending(roomID uint, uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.slots[draftKey{roomID: roomID, uid: uid}]
	return ok && slot.pending != nil
}

func (s *Server) saveDraft(ctx context.Context, roomID uint, d draft) (store.Answer, error) {
	return s.store.SubmitAnswer(ctx, roomID, d.identity, d.questionID, d.image)
}
