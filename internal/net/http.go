// Package net wires the HTTP transport: routing, request/response JSON
// framing, auth, and the error envelope, around a *server.Hub. It is
// deliberately outside package server (§1: "HTTP wire framing... are
// specified only at the interface level").
package net

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dogwalk/internal/records"
	"dogwalk/internal/telemetry"
	"dogwalk/logging"
	"dogwalk/logging/access"
	"dogwalk/server"
)

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHandler builds the full HTTP handler: API routes under /api/v1, and a
// static file fallback for everything else.
func NewHandler(hub *server.Hub, repo *records.Repository, staticRoot string, logger telemetry.Logger) (http.Handler, error) {
	static, err := NewStaticHandler(staticRoot)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	pub := hub.Game.Publisher

	mux.HandleFunc("/api/v1/maps", withCommon(pub, handleListMaps(hub)))
	mux.HandleFunc("/api/v1/maps/", withCommon(pub, handleGetMap(hub)))
	mux.HandleFunc("/api/v1/game/join", withCommon(pub, handleJoin(hub)))
	mux.HandleFunc("/api/v1/game/players", withCommon(pub, requireAuth(hub, handlePlayers(hub))))
	mux.HandleFunc("/api/v1/game/state", withCommon(pub, requireAuth(hub, handleState(hub))))
	mux.HandleFunc("/api/v1/game/player/action", withCommon(pub, requireAuth(hub, handleAction(hub))))
	mux.HandleFunc("/api/v1/game/tick", withCommon(pub, handleTick(hub)))
	mux.HandleFunc("/api/v1/game/records", withCommon(pub, handleRecords(repo)))

	mux.Handle("/", static)

	return recoverPanics(logger, mux), nil
}

// withCommon sets the response envelope headers common to every API
// response and logs the request outcome to the access log (§6).
func withCommon(pub logging.Publisher, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "application/json")

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		access.RequestHandled(r.Context(), pub, access.RequestHandledPayload{
			Method:         r.Method,
			Target:         r.URL.Path,
			Status:         rec.status,
			DurationMicros: time.Since(start).Microseconds(),
		}, nil)
	}
}

// recoverPanics keeps one handler's panic from taking down the server,
// logging it through the configured Logger instead.
func recoverPanics(logger telemetry.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if logger != nil {
					logger.Printf("panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				}
				writeError(w, server.NewAPIError(server.ErrInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// writeError renders an APIError through the §7 error envelope.
func writeError(w http.ResponseWriter, err *server.APIError) {
	w.WriteHeader(err.Kind.Status())
	_ = json.NewEncoder(w).Encode(errorEnvelope{Code: string(err.Kind), Message: err.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requireAuth extracts and validates a bearer token before delegating to
// next; the request's live *server.Player is stashed in the request
// context under playerContextKey.
//
// The presence check happens before the format check: the design notes
// flag the original code for testing token format first, which meant a
// missing header reported the wrong error kind (§9).
func requireAuth(hub *server.Hub, next func(w http.ResponseWriter, r *http.Request, p *server.Player)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := tryExtractToken(r)
		if !ok {
			writeError(w, server.NewAPIError(server.ErrInvalidToken, "missing or malformed Authorization header"))
			return
		}
		if !server.IsValidTokenShape(token) {
			writeError(w, server.NewAPIError(server.ErrInvalidToken, "malformed token"))
			return
		}

		var player *server.Player
		err := hub.Snapshot(r.Context(), func() {
			player = hub.Game.FindPlayerByToken(token)
		})
		if err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}
		if player == nil {
			writeError(w, server.NewAPIError(server.ErrUnknownToken, "token is not a live player"))
			return
		}

		next(w, r, player)
	}
}

// tryExtractToken reads the "Authorization: Bearer <token>" header. It
// checks header presence FIRST (the design notes call out the original
// code for reading the scheme/token before checking the header even
// exists, §9).
func tryExtractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, prefix)
	if token == "" {
		return "", false
	}
	return token, true
}

func handleListMaps(hub *server.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "GET only"))
			return
		}
		type mapSummary struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		var out []mapSummary
		for _, m := range hub.Game.Catalog.Maps() {
			out = append(out, mapSummary{ID: m.ID, Name: m.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetMap(hub *server.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "GET only"))
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/maps/")
		m := hub.Game.FindMap(id)
		if m == nil {
			writeError(w, server.NewAPIError(server.ErrMapNotFound, "map not found: "+id))
			return
		}
		writeJSON(w, http.StatusOK, describeMap(m))
	}
}

func describeMap(m *server.Map) any {
	type road struct {
		X0 float64 `json:"x0"`
		Y0 float64 `json:"y0"`
		X1 *float64 `json:"x1,omitempty"`
		Y1 *float64 `json:"y1,omitempty"`
	}
	type office struct {
		ID      string  `json:"id"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		OffsetX float64 `json:"offsetX"`
		OffsetY float64 `json:"offsetY"`
	}
	roads := make([]road, 0, len(m.Roads))
	for _, r := range m.Roads {
		if r.IsHorizontal() {
			x1 := r.End.X
			roads = append(roads, road{X0: r.Start.X, Y0: r.Start.Y, X1: &x1})
		} else {
			y1 := r.End.Y
			roads = append(roads, road{X0: r.Start.X, Y0: r.Start.Y, Y1: &y1})
		}
	}
	offices := make([]office, 0, len(m.Offices))
	for _, o := range m.Offices {
		offices = append(offices, office{ID: o.ID, X: o.X, Y: o.Y, OffsetX: o.OffsetX, OffsetY: o.OffsetY})
	}
	return struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Roads     []road          `json:"roads"`
		Offices   []office        `json:"offices"`
		LootTypes []server.LootType `json:"lootTypes"`
	}{ID: m.ID, Name: m.Name, Roads: roads, Offices: offices, LootTypes: m.LootTypes}
}

func handleJoin(hub *server.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "POST only"))
			return
		}
		var body struct {
			UserName string `json:"userName"`
			MapID    string `json:"mapId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "malformed JSON body"))
			return
		}
		if body.UserName == "" || body.MapID == "" {
			writeError(w, server.NewAPIError(server.ErrInvalidArgument, "userName and mapId are required"))
			return
		}

		player, _, err := hub.Join(r.Context(), body.UserName, body.MapID)
		if err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, struct {
			AuthToken string `json:"authToken"`
			PlayerID  uint64 `json:"playerId"`
		}{AuthToken: player.Token, PlayerID: player.ID})
	}
}

func handlePlayers(hub *server.Hub) func(http.ResponseWriter, *http.Request, *server.Player) {
	return func(w http.ResponseWriter, r *http.Request, player *server.Player) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "GET only"))
			return
		}
		type playerView struct {
			PlayerID uint64 `json:"playerId"`
			DogID    uint64 `json:"dogId"`
			Name     string `json:"name"`
		}
		var out []playerView
		err := hub.Snapshot(r.Context(), func() {
			for _, p := range hub.Game.FindPlayersInSession(player.Token) {
				dog := hub.Game.DogForPlayer(p)
				name := ""
				if dog != nil {
					name = dog.Name
				}
				out = append(out, playerView{PlayerID: p.ID, DogID: p.DogID, Name: name})
			}
		})
		if err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleState(hub *server.Hub) func(http.ResponseWriter, *http.Request, *server.Player) {
	return func(w http.ResponseWriter, r *http.Request, player *server.Player) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "GET only"))
			return
		}

		type dogView struct {
			ID        uint64  `json:"id"`
			Name      string  `json:"name"`
			X         float64 `json:"x"`
			Y         float64 `json:"y"`
			Direction string  `json:"direction"`
			Score     int     `json:"score"`
			BagSize   int     `json:"bagSize"`
		}
		type lootView struct {
			ID     uint64  `json:"id"`
			TypeID int     `json:"typeId"`
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
		}

		var dogs []dogView
		var loot []lootView
		err := hub.Snapshot(r.Context(), func() {
			sess := hub.Game.SessionForPlayer(player)
			if sess == nil {
				return
			}
			for _, d := range sess.Dogs {
				dogs = append(dogs, dogView{
					ID: d.ID, Name: d.Name, X: d.Position.X, Y: d.Position.Y,
					Direction: d.Direction.String(), Score: d.Score, BagSize: len(d.Bag),
				})
			}
			for _, l := range sess.Loot {
				loot = append(loot, lootView{ID: l.ID, TypeID: l.TypeID, X: l.Position.X, Y: l.Position.Y})
			}
		})
		if err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Dogs []dogView  `json:"dogs"`
			Loot []lootView `json:"loot"`
		}{Dogs: dogs, Loot: loot})
	}
}

func handleAction(hub *server.Hub) func(http.ResponseWriter, *http.Request, *server.Player) {
	return func(w http.ResponseWriter, r *http.Request, player *server.Player) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "POST only"))
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "Content-Type must be application/json"))
			return
		}
		var body struct {
			Move string `json:"move"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "malformed JSON body"))
			return
		}
		dir, ok := server.DirectionFromMove(body.Move)
		if !ok {
			writeError(w, server.NewAPIError(server.ErrInvalidArgument, "move must be one of U, D, L, R, \"\""))
			return
		}
		if err := hub.Action(r.Context(), player.Token, dir); err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func handleTick(hub *server.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "POST only"))
			return
		}
		var body struct {
			TimeDelta int64 `json:"timeDelta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "malformed JSON body"))
			return
		}
		if err := hub.Tick(r.Context(), body.TimeDelta); err != nil {
			writeError(w, server.AsAPIError(err))
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

func handleRecords(repo *records.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, server.NewAPIError(server.ErrInvalidMethod, "GET only"))
			return
		}
		if repo == nil {
			writeError(w, server.NewAPIError(server.ErrInternal, "records store unavailable"))
			return
		}

		// url.ParseQuery percent-decodes the query string (§9: the
		// original implementation matched "start"/"maxItems" against the
		// still-encoded target, so a client that escaped the query at all
		// got its parameters silently ignored).
		values, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "malformed query string"))
			return
		}

		start, err := parseBoundedInt(values.Get("start"), 0, 0, 1<<31)
		if err != nil {
			writeError(w, server.NewAPIError(server.ErrInvalidArgument, "start must be a non-negative integer"))
			return
		}
		maxItems, err := parseBoundedInt(values.Get("maxItems"), 100, 0, 100)
		if err != nil {
			writeError(w, server.NewAPIError(server.ErrInvalidArgument, "maxItems must be an integer in [0,100]"))
			return
		}

		recs, err := repo.GetRecords(r.Context(), start, maxItems)
		if err != nil {
			writeError(w, server.WrapAPIError(server.ErrInternal, "read records", err))
			return
		}

		type recordView struct {
			Name       string `json:"name"`
			Score      int    `json:"score"`
			PlayTimeMs int64  `json:"playTimeMs"`
		}
		out := make([]recordView, 0, len(recs))
		for _, rec := range recs {
			out = append(out, recordView{Name: rec.Name, Score: rec.Score, PlayTimeMs: rec.PlayTimeMs})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseBoundedInt(raw string, def, min, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, strconv.ErrRange
	}
	return v, nil
}
