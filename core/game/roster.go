package game

// PlayerRecord is the roster's view of one player. The connection id is
// ephemeral and re-keyed on reconnect; the display name is the stable join
// key. Records are never deleted, only flagged.
type PlayerRecord struct {
	ConnID   string
	Name     string
	Score    int
	Banned   bool
	Offline  bool
	StoreKey int64 // persistence player key, assigned asynchronously
}

// PlayerView is the public snapshot of a player sent on roster broadcasts.
// It deliberately omits the persistence key.
type PlayerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Banned  bool   `json:"banned"`
	Offline bool   `json:"offline"`
}

// Roster maps connection identities to player records. Offline players stay
// on the scoreboard; a rejoin under the same name reclaims the old record.
type Roster struct {
	byConn map[string]*PlayerRecord
	order  []*PlayerRecord // insertion order, the stable tie-break for scoreboards
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{byConn: make(map[string]*PlayerRecord)}
}

// Join registers a connection under a display name. If a record with the
// same name exists it is re-keyed to the new connection and marked online,
// preserving score and ban state. Returns the record and whether it was
// reclaimed.
func (r *Roster) Join(connID, name string) (*PlayerRecord, bool) {
	for _, p := range r.order {
		if p.Name == name {
			delete(r.byConn, p.ConnID)
			p.ConnID = connID
			p.Offline = false
			r.byConn[connID] = p
			return p, true
		}
	}

	rec := &PlayerRecord{ConnID: connID, Name: name}
	r.byConn[connID] = rec
	r.order = append(r.order, rec)
	return rec, false
}

// Get returns the record for a connection, or nil.
func (r *Roster) Get(connID string) *PlayerRecord {
	return r.byConn[connID]
}

// MarkOffline flags a connection's player as offline. The record is kept so
// the final standing survives disconnects.
func (r *Roster) MarkOffline(connID string) bool {
	rec := r.byConn[connID]
	if rec == nil {
		return false
	}
	rec.Offline = true
	return true
}

// Ban flags a connection's player as banned. Subsequent answers from this
// identity are rejected; the record stays visible.
func (r *Roster) Ban(connID string) bool {
	rec := r.byConn[connID]
	if rec == nil {
		return false
	}
	rec.Banned = true
	return true
}

// ResetScores zeroes every score. Membership and ban state are untouched.
func (r *Roster) ResetScores() {
	for _, p := range r.order {
		p.Score = 0
	}
}

// Snapshot returns the public roster view in insertion order. Sorting is the
// consumer's job.
func (r *Roster) Snapshot() []PlayerView {
	out := make([]PlayerView, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, PlayerView{
			ID:      p.ConnID,
			Name:    p.Name,
			Score:   p.Score,
			Banned:  p.Banned,
			Offline: p.Offline,
		})
	}
	return out
}

// Len returns the number of rostered players, online or not.
func (r *Roster) Len() int {
	return len(r.order)
}
