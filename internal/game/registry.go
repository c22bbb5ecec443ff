package game

import (
	"fmt"
	"sort"
)

// Registry maps room identifiers to rooms and holds the matchmaking queue.
// The queue has a single slot: at most one participant waits at a time.
// Private rooms wait for a named guest instead of the queue.
//
// Registry is not safe for concurrent use; the Coordinator serializes access.
type Registry struct {
	rooms   map[RoomID]*Room
	members map[ParticipantID]RoomID

	open    map[RoomID]ParticipantID
	hosting map[ParticipantID]RoomID

	waiting    ParticipantID
	hasWaiting bool
}

// RegistryStats is a point-in-time summary of the registry.
type RegistryStats struct {
	Rooms     int      `json:"rooms"`
	OpenRooms int      `json:"openRooms"`
	Waiting   bool     `json:"waiting"`
	RoomIDs   []RoomID `json:"roomIds,omitempty"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[RoomID]*Room),
		members: make(map[ParticipantID]RoomID),
		open:    make(map[RoomID]ParticipantID),
		hosting: make(map[ParticipantID]RoomID),
	}
}

// Busy reports whether p is waiting in the queue, hosting a private room or seated.
func (r *Registry) Busy(p ParticipantID) bool {
	if r.hasWaiting && r.waiting == p {
		return true
	}
	if _, ok := r.hosting[p]; ok {
		return true
	}
	_, ok := r.members[p]
	return ok
}

// Enqueue puts p in the matchmaking queue. When someone is already waiting,
// the slot is cleared and that participant is returned as p's opponent.
func (r *Registry) Enqueue(p ParticipantID) (ParticipantID, bool, error) {
	if r.Busy(p) {
		return "", false, ErrAlreadySeated
	}

	if !r.hasWaiting {
		r.waiting = p
		r.hasWaiting = true
		return "", false, nil
	}

	opponent := r.waiting
	r.waiting = ""
	r.hasWaiting = false
	return opponent, true, nil
}

// Waiting returns the queued participant, if any.
func (r *Registry) Waiting() (ParticipantID, bool) {
	return r.waiting, r.hasWaiting
}

// Taken reports whether id names a seated room or an open private room.
func (r *Registry) Taken(id RoomID) bool {
	if _, ok := r.rooms[id]; ok {
		return true
	}
	_, ok := r.open[id]
	return ok
}

// Open registers a private room hosted by p that waits for a guest.
func (r *Registry) Open(p ParticipantID, id RoomID) error {
	if r.Busy(p) {
		return ErrAlreadySeated
	}
	if r.Taken(id) {
		return fmt.Errorf("open room %s: %w", id, ErrRoomFull)
	}

	r.open[id] = p
	r.hosting[p] = id
	return nil
}

// Claim takes the host out of open private room id so that guest can be
// seated with them. Unknown ids are ErrRoomNotFound; ids of rooms that
// already seat two participants are ErrRoomFull.
func (r *Registry) Claim(guest ParticipantID, id RoomID) (ParticipantID, error) {
	if _, full := r.rooms[id]; full {
		return "", fmt.Errorf("join %s: %w", id, ErrRoomFull)
	}
	host, ok := r.open[id]
	if !ok {
		return "", fmt.Errorf("join %s: %w", id, ErrRoomNotFound)
	}
	if host == guest {
		return "", fmt.Errorf("join %s: cannot join own room: %w", id, ErrIllegalAction)
	}
	if r.Busy(guest) {
		return "", ErrAlreadySeated
	}

	delete(r.open, id)
	delete(r.hosting, host)
	return host, nil
}

// Withdraw takes p out of the open private room id, or out of the waiting
// slot when id is empty. Seated rooms are untouched. It reports whether p
// was removed from anything.
func (r *Registry) Withdraw(p ParticipantID, id RoomID) bool {
	if hosted, ok := r.hosting[p]; ok && (id == "" || hosted == id) {
		delete(r.hosting, p)
		delete(r.open, hosted)
		return true
	}
	if id == "" && r.hasWaiting && r.waiting == p {
		r.waiting = ""
		r.hasWaiting = false
		return true
	}
	return false
}

// Insert adds a room seating two participants.
func (r *Registry) Insert(room *Room) error {
	if _, exists := r.rooms[room.id]; exists {
		return fmt.Errorf("insert %s: %w", room.id, ErrRoomFull)
	}
	for _, p := range room.participants {
		if _, seated := r.members[p]; seated {
			return fmt.Errorf("insert %s: %s: %w", room.id, p, ErrAlreadySeated)
		}
	}

	r.rooms[room.id] = room
	for _, p := range room.participants {
		r.members[p] = room.id
	}
	return nil
}

// Room looks up a room by id.
func (r *Registry) Room(id RoomID) (*Room, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

// RoomOf returns the room p is seated in.
func (r *Registry) RoomOf(p ParticipantID) (*Room, bool) {
	id, ok := r.members[p]
	if !ok {
		return nil, false
	}
	return r.Room(id)
}

// Remove deletes room id and frees both participants' seats.
func (r *Registry) Remove(id RoomID) (*Room, bool) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}

	delete(r.rooms, id)
	for _, p := range room.participants {
		if r.members[p] == id {
			delete(r.members, p)
		}
	}
	return room, true
}

// Depart forgets p everywhere: the waiting slot (only if p holds it), any
// private room p is hosting, and the room p is seated in. The removed room,
// if any, is returned so the caller can tear it down.
func (r *Registry) Depart(p ParticipantID) (*Room, bool) {
	if r.hasWaiting && r.waiting == p {
		r.waiting = ""
		r.hasWaiting = false
	}

	if id, ok := r.hosting[p]; ok {
		delete(r.hosting, p)
		delete(r.open, id)
	}

	id, ok := r.members[p]
	if !ok {
		return nil, false
	}
	return r.Remove(id)
}

// Stats summarizes the registry contents.
func (r *Registry) Stats() RegistryStats {
	ids := make([]RoomID, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return RegistryStats{
		Rooms:     len(r.rooms),
		OpenRooms: len(r.open),
		Waiting:   r.hasWaiting,
		RoomIDs:   ids,
	}
}
