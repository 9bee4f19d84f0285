package server

// Player pairs a Dog with the GameSession it plays in, identified by an
// opaque token (§3). Session and Dog are held by stable numeric id lookup
// rather than pointer, per the "back references" design note (§9), which
// keeps the checkpoint format independent of pointer identity.
type Player struct {
	ID        uint64
	Token     string
	SessionID uint64
	DogID     uint64
}

// JoinGame spawns a Dog on mapID, mints a token, and registers a Player for
// it (§4.4). Returns ErrMapNotFound if mapID is unknown.
func (g *Game) JoinGame(userName, mapID string, nowMs int64) (*Player, *Dog, error) {
	m := g.FindMap(mapID)
	if m == nil {
		return nil, nil, NewAPIError(ErrMapNotFound, "map not found: "+mapID)
	}

	spawn := g.spawnPoint(m)
	dog := NewDog(g.Counters.NextDogID(), userName, spawn, nowMs)
	sess := g.AddDogToSession(dog, mapID)

	token, err := MintToken()
	if err != nil {
		return nil, nil, WrapAPIError(ErrInternal, "mint token", err)
	}

	player := &Player{
		ID:        g.Counters.NextPlayerID(),
		Token:     token,
		SessionID: sess.ID,
		DogID:     dog.ID,
	}
	g.players = append(g.players, player)

	return player, dog, nil
}

// FindPlayerByToken linearly scans the process-wide player list. The
// expected cardinality is small; a token index is an acceptable
// optimization but not required for correctness (§4.4).
func (g *Game) FindPlayerByToken(token string) *Player {
	for _, p := range g.players {
		if p.Token == token {
			return p
		}
	}
	return nil
}

// FindPlayersInSession returns every player sharing the session of the
// player identified by token (§4.4).
func (g *Game) FindPlayersInSession(token string) []*Player {
	requester := g.FindPlayerByToken(token)
	if requester == nil {
		return nil
	}
	var out []*Player
	for _, p := range g.players {
		if p.SessionID == requester.SessionID {
			out = append(out, p)
		}
	}
	return out
}

// DogForPlayer resolves a player's live Dog within its session, or nil if
// either lookup fails.
func (g *Game) DogForPlayer(p *Player) *Dog {
	sess := g.sessionByID(p.SessionID)
	if sess == nil {
		return nil
	}
	for _, d := range sess.Dogs {
		if d.ID == p.DogID {
			return d
		}
	}
	return nil
}

// SessionForPlayer resolves a player's session by id.
func (g *Game) SessionForPlayer(p *Player) *GameSession {
	return g.sessionByID(p.SessionID)
}

func (g *Game) sessionByID(id uint64) *GameSession {
	for _, s := range g.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// RemovePlayerByDogID removes the player owning dogID and its dog from its
// session (§4.4). Used both by explicit player removal and by retirement
// (§4.5 step 5).
func (g *Game) RemovePlayerByDogID(dogID uint64) {
	for i, p := range g.players {
		if p.DogID == dogID {
			if sess := g.sessionByID(p.SessionID); sess != nil {
				sess.RemoveDogByID(dogID)
			}
			g.players = append(g.players[:i], g.players[i+1:]...)
			return
		}
	}
}

// Players returns every registered player.
func (g *Game) Players() []*Player {
	return g.players
}
