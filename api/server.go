package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wannabeanything/dogwalker/internal/apierr"
	"github.com/wannabeanything/dogwalker/internal/engine"
	"github.com/wannabeanything/dogwalker/internal/model"
	"github.com/wannabeanything/dogwalker/internal/players"
	"github.com/wannabeanything/dogwalker/internal/records"
)

// Recorder is the narrow read surface the leaderboard endpoint needs
// from the record repository.
type Recorder interface {
	GetRecords(start, maxItems int) ([]records.Record, error)
}

// Options configures a new Server.
type Options struct {
	Game      *model.Game
	World     *engine.World
	Records   Recorder
	Registry  prometheus.Gatherer
	Logger    *zap.Logger
	DebugMode bool // enables POST /api/v1/game/tick, per spec.md §4.6
}

// Server is the C7 HTTP control surface: a gorilla/mux router dispatching
// to engine.World, model.Game and the record repository, grounded on
// teacher's api/server.go router/handler shape.
type Server struct {
	game      *model.Game
	world     *engine.World
	records   Recorder
	logger    *zap.Logger
	router    *mux.Router
	debugMode bool
}

// NewServer builds a Server with every route registered.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		game:      opts.Game,
		world:     opts.World,
		records:   opts.Records,
		logger:    logger,
		router:    mux.NewRouter(),
		debugMode: opts.DebugMode,
	}
	s.setupRoutes(opts.Registry)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(reg prometheus.Gatherer) {
	s.router.HandleFunc("/api/v1/maps", methodOnly(http.MethodGet, s.handleMapList))
	s.router.HandleFunc("/api/v1/maps/{id}", methodOnly(http.MethodGet, s.handleMapDetail))
	s.router.HandleFunc("/api/v1/game/join", methodOnly(http.MethodPost, s.handleJoin))
	s.router.HandleFunc("/api/v1/game/players", methodOnly(http.MethodGet, s.handlePlayers))
	s.router.HandleFunc("/api/v1/game/state", methodOnly(http.MethodGet, s.handleState))
	s.router.HandleFunc("/api/v1/game/player/action", methodOnly(http.MethodPost, s.handleAction))
	s.router.HandleFunc("/api/v1/game/records", methodOnly(http.MethodGet, s.handleRecords))
	if s.debugMode {
		s.router.HandleFunc("/api/v1/game/tick", methodOnly(http.MethodPost, s.handleTick))
	}
	if reg != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, apierr.New(apierr.BadRequest, "unknown route: "+r.URL.Path))
	})
}

// methodOnly rejects any request whose method isn't want with 405 and
// an Allow header, matching spec.md §4.7's strict-validation rule;
// routes are registered without mux's own .Methods() so this wrapper
// is the single source of truth for the 405 response.
func methodOnly(want string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != want {
			w.Header().Set("Allow", want)
			writeErr(w, apierr.New(apierr.InvalidMethod, "method not allowed, expected "+want))
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	ae, ok := err.(*apierr.Error)
	if !ok {
		ae = translateErr(err)
	}
	writeJSON(w, ae.Status, map[string]string{"code": string(ae.Kind), "message": ae.Message})
}

// translateErr maps the sentinel errors internal/players surfaces (and
// any other unexpected error) onto a wire apierr.Error.
func translateErr(err error) *apierr.Error {
	switch err {
	case players.ErrEmptyName:
		return apierr.New(apierr.InvalidArgument, err.Error())
	case players.ErrMapNotFound:
		return apierr.New(apierr.MapNotFound, err.Error())
	case players.ErrInvalidToken:
		return apierr.New(apierr.InvalidToken, err.Error())
	case players.ErrUnknownToken:
		return apierr.New(apierr.UnknownToken, err.Error())
	default:
		return apierr.New(apierr.Internal, "internal error")
	}
}

// requireJSONContentType enforces spec.md §4.7's Content-Type check for
// every body-carrying request.
func requireJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "application/json" || strings.HasPrefix(ct, "application/json;")
}

// bearerToken extracts the raw token from an Authorization: Bearer
// header; ok is false when the header is missing or malformed, which
// the caller surfaces as invalidToken.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

func (s *Server) handleMapList(w http.ResponseWriter, r *http.Request) {
	maps := s.game.Maps()
	out := make([]mapSummaryDTO, 0, len(maps))
	for _, m := range maps {
		out = append(out, mapSummaryDTO{ID: string(m.ID), Name: m.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMapDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, ok := s.game.FindMap(model.MapID(id))
	if !ok {
		writeErr(w, apierr.New(apierr.MapNotFound, "unknown map id: "+id))
		return
	}

	roads := make([]roadDTO, 0, len(m.Roads))
	for _, rd := range m.Roads {
		dto := roadDTO{X0: rd.Start.X, Y0: rd.Start.Y}
		if rd.Orientation == model.Horizontal {
			x1 := rd.End.X
			dto.X1 = &x1
		} else {
			y1 := rd.End.Y
			dto.Y1 = &y1
		}
		roads = append(roads, dto)
	}

	buildings := make([]buildingDTO, 0, len(m.Buildings))
	for _, b := range m.Buildings {
		buildings = append(buildings, buildingDTO{X: b.Position.X, Y: b.Position.Y, W: b.Size.Width, H: b.Size.Height})
	}

	offices := make([]officeDTO, 0, len(m.Offices))
	for _, o := range m.Offices {
		offices = append(offices, officeDTO{ID: string(o.ID), X: o.Position.X, Y: o.Position.Y, OffsetX: o.Offset.X, OffsetY: o.Offset.Y})
	}

	lootTypes := make([]lootTypeDTO, 0, len(m.LootTypes))
	for _, lt := range m.LootTypes {
		lootTypes = append(lootTypes, lootTypeDTO{Name: lt.Name, Value: lt.Value})
	}

	writeJSON(w, http.StatusOK, mapDetailDTO{
		ID: string(m.ID), Name: m.Name,
		Roads: roads, Buildings: buildings, Offices: offices, LootTypes: lootTypes,
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !requireJSONContentType(r) {
		writeErr(w, apierr.New(apierr.InvalidArgument, "expected Content-Type: application/json"))
		return
	}
	var req joinRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apierr.New(apierr.InvalidArgument, "malformed request body"))
		return
	}

	token, dogID, err := s.world.Join(model.MapID(req.MapID), req.UserName)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponseDTO{AuthToken: string(token), PlayerID: int(dogID)})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeErr(w, apierr.New(apierr.InvalidToken, "missing or malformed Authorization header"))
		return
	}
	ps, err := s.world.Players(token)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make(map[string]playerNameDTO, len(ps))
	for _, p := range ps {
		out[strconv.Itoa(int(p.DogID))] = playerNameDTO{Name: p.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeErr(w, apierr.New(apierr.InvalidToken, "missing or malformed Authorization header"))
		return
	}
	view, err := s.world.State(token)
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := stateResponseDTO{
		Players:     make(map[string]dogStateDTO, len(view.Players)),
		LostObjects: make(map[string]lostObjectDTO, len(view.LostObjects)),
	}
	for _, p := range view.Players {
		bag := make([]bagItemDTO, 0, len(p.Bag))
		for _, item := range p.Bag {
			bag = append(bag, bagItemDTO{ID: int(item.ID), Type: item.Type})
		}
		resp.Players[strconv.Itoa(int(p.DogID))] = dogStateDTO{
			Pos:   [2]Fixed1{Fixed1(p.X), Fixed1(p.Y)},
			Speed: [2]Fixed1{Fixed1(p.VX), Fixed1(p.VY)},
			Dir:   dirToWire(p.Direction),
			Bag:   bag,
			Score: p.Score,
		}
	}
	for _, lo := range view.LostObjects {
		resp.LostObjects[strconv.Itoa(int(lo.ID))] = lostObjectDTO{
			Type: lo.Type,
			Pos:  [2]Fixed1{Fixed1(lo.X), Fixed1(lo.Y)},
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeErr(w, apierr.New(apierr.InvalidToken, "missing or malformed Authorization header"))
		return
	}
	if !requireJSONContentType(r) {
		writeErr(w, apierr.New(apierr.InvalidArgument, "expected Content-Type: application/json"))
		return
	}
	var req actionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apierr.New(apierr.InvalidArgument, "malformed request body"))
		return
	}
	if err := s.world.Action(token, req.Move); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if !requireJSONContentType(r) {
		writeErr(w, apierr.New(apierr.InvalidArgument, "expected Content-Type: application/json"))
		return
	}
	var req tickRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apierr.New(apierr.InvalidArgument, "malformed request body"))
		return
	}
	if req.TimeDelta < 0 {
		writeErr(w, apierr.New(apierr.InvalidArgument, "timeDelta must not be negative"))
		return
	}
	s.world.Tick(time.Duration(req.TimeDelta) * time.Millisecond)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	start, maxItems := 0, 100
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErr(w, apierr.New(apierr.InvalidArgument, "start must be a non-negative integer"))
			return
		}
		start = n
	}
	if v := q.Get("maxItems"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErr(w, apierr.New(apierr.InvalidArgument, "maxItems must be a non-negative integer"))
			return
		}
		if n > 100 {
			writeErr(w, apierr.New(apierr.InvalidArgument, "maxItems must not exceed 100"))
			return
		}
		maxItems = n
	}

	recs, err := s.records.GetRecords(start, maxItems)
	if err != nil {
		s.logger.Error("records query failed", zap.Error(err))
		writeErr(w, apierr.New(apierr.Internal, "records query failed"))
		return
	}
	out := make([]recordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordDTO{Name: rec.Name, Score: rec.Score, PlayTime: rec.PlayTimeSeconds})
	}
	writeJSON(w, http.StatusOK, out)
}
