package api

import "github.com/wannabeanything/dogwalker/internal/gamesession"

// mapSummaryDTO is one entry of GET /api/v1/maps.
type mapSummaryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roadDTO struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type buildingDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeDTO struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type lootTypeDTO struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// mapDetailDTO is the GET /api/v1/maps/{id} response.
type mapDetailDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Roads     []roadDTO     `json:"roads"`
	Buildings []buildingDTO `json:"buildings"`
	Offices   []officeDTO   `json:"offices"`
	LootTypes []lootTypeDTO `json:"lootTypes"`
}

// joinRequestDTO is the POST /api/v1/game/join body.
type joinRequestDTO struct {
	UserName string `json:"userName"`
	MapID    string `json:"mapId"`
}

// joinResponseDTO is the POST /api/v1/game/join response.
type joinResponseDTO struct {
	AuthToken string `json:"authToken"`
	PlayerID  int    `json:"playerId"`
}

// playerNameDTO is one entry of GET /api/v1/game/players.
type playerNameDTO struct {
	Name string `json:"name"`
}

// bagItemDTO is one item in a dog's bag as reported by GET /game/state.
type bagItemDTO struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

// dogStateDTO is one dog's entry in GET /api/v1/game/state.
type dogStateDTO struct {
	Pos   [2]Fixed1    `json:"pos"`
	Speed [2]Fixed1    `json:"speed"`
	Dir   string       `json:"dir"`
	Bag   []bagItemDTO `json:"bag"`
	Score int          `json:"score"`
}

// lostObjectDTO is one ground item's entry in GET /api/v1/game/state.
type lostObjectDTO struct {
	Type int       `json:"type"`
	Pos  [2]Fixed1 `json:"pos"`
}

// stateResponseDTO is the GET /api/v1/game/state response.
type stateResponseDTO struct {
	Players     map[string]dogStateDTO   `json:"players"`
	LostObjects map[string]lostObjectDTO `json:"lostObjects"`
}

// actionRequestDTO is the POST /api/v1/game/player/action body.
type actionRequestDTO struct {
	Move string `json:"move"`
}

// tickRequestDTO is the POST /api/v1/game/tick body (debug mode only).
type tickRequestDTO struct {
	TimeDelta int `json:"timeDelta"`
}

// recordDTO is one leaderboard row.
type recordDTO struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"`
}

// dirToWire renders a Direction using the same letters action commands
// use: spec.md §6 requires state to "report them as the same letters".
func dirToWire(d gamesession.Direction) string {
	switch d {
	case gamesession.North:
		return "U"
	case gamesession.South:
		return "D"
	case gamesession.West:
		return "L"
	case gamesession.East:
		return "R"
	}
	return ""
}
