package match

// Challenge opens a pending match with challenger in seat A.
func (r *Registry) Challenge(challenger, opponent PlayerID) (Snapshot, error) {
	if challenger == opponent {
		return Snapshot{}, ErrSelfChallenge
	}

	r.mu.Lock()
	if r.lookupLocked(challenger) != nil || r.lookupLocked(opponent) != nil {
		r.mu.Unlock()
		return Snapshot{}, ErrAlreadyInMatch
	}
	m := newMatch(r.newID(), challenger, opponent, r.now())
	r.matches[m.id] = m
	r.byPlayer[challenger] = m
	r.byPlayer[opponent] = m
	snap := m.snapshot()
	r.mu.Unlock()

	r.log.Info("challenge created", "match", snap.ID, "challenger", challenger, "opponent", opponent)
	return snap, nil
}

// Accept starts the pending match in which player is the challenged side.
func (r *Registry) Accept(player PlayerID) (Snapshot, error) {
	r.mu.Lock()
	m := r.lookupLocked(player)
	if m == nil || m.status != StatusPending || m.players[SeatB] != player {
		r.mu.Unlock()
		return Snapshot{}, ErrNoPendingChallenge
	}
	m.status = StatusActive
	m.acceptedAt = r.now()
	snap := m.snapshot()
	r.mu.Unlock()

	r.log.Info("challenge accepted", "match", snap.ID, "opponent", player)
	return snap, nil
}

// Forfeit hands the match to the other player regardless of score. It is
// legal before and after acceptance.
func (r *Registry) Forfeit(player PlayerID) (Snapshot, error) {
	r.mu.Lock()
	m := r.lookupLocked(player)
	if m == nil {
		r.mu.Unlock()
		return Snapshot{}, ErrNotInMatch
	}
	seat := m.seatOf(player)
	m.forfeitedBy = seat
	m.complete(seat.other(), r.now())
	r.unindexLocked(m)
	snap := m.snapshot()
	r.mu.Unlock()

	r.log.Info("match forfeited", "match", snap.ID, "forfeited_by", player, "winner", snap.Winner)
	return snap, nil
}

// Status returns the player's pending or active match.
func (r *Registry) Status(player PlayerID) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.lookupLocked(player)
	if m == nil {
		return Snapshot{}, ErrNotInMatch
	}
	return m.snapshot(), nil
}
