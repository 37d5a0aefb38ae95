package model

import (
	"encoding/json"
	"fmt"
)

// defaultRetirementTime is used when the config omits dogRetirementTime,
// matching original_source's json_loader.cpp default of 60 seconds.
const defaultRetirementTime = 60.0

// rawRoad mirrors one element of a map's "roads" array: either
// {x0,y0,x1} (horizontal) or {x0,y0,y1} (vertical).
type rawRoad struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type rawBuilding struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type rawOffice struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type rawLootGeneratorConfig struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type rawMap struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	DogSpeed    *float64               `json:"dogSpeed,omitempty"`
	BagCapacity *int                   `json:"bagCapacity,omitempty"`
	Roads       []rawRoad              `json:"roads"`
	Buildings   []rawBuilding          `json:"buildings"`
	Offices     []rawOffice            `json:"offices"`
	LootTypes   []map[string]any       `json:"lootTypes"`
}

type rawConfig struct {
	DefaultDogSpeed    *float64               `json:"defaultDogSpeed,omitempty"`
	DefaultBagCapacity *int                   `json:"defaultBagCapacity,omitempty"`
	DogRetirementTime  *float64               `json:"dogRetirementTime,omitempty"`
	LootGeneratorConfig rawLootGeneratorConfig `json:"lootGeneratorConfig"`
	Maps               []rawMap               `json:"maps"`
}

// LootGeneratorConfig is the {period, probability} pair applied to
// every session's loot generator; loaded once for the whole game.
type LootGeneratorConfig struct {
	PeriodSeconds float64
	Probability   float64
}

// LoadGame parses a config JSON document per spec.md §6's schema into a
// Game plus the shared loot generator config.
func LoadGame(data []byte) (*Game, LootGeneratorConfig, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LootGeneratorConfig{}, fmt.Errorf("model: parse config: %w", err)
	}

	defaultSpeed := 1.0
	if raw.DefaultDogSpeed != nil {
		defaultSpeed = *raw.DefaultDogSpeed
	}
	defaultBag := 3
	if raw.DefaultBagCapacity != nil {
		defaultBag = *raw.DefaultBagCapacity
	}
	retirement := defaultRetirementTime
	if raw.DogRetirementTime != nil {
		retirement = *raw.DogRetirementTime
	}

	game := NewGame()
	for _, rm := range raw.Maps {
		m, err := buildMap(rm, defaultSpeed, defaultBag, retirement)
		if err != nil {
			return nil, LootGeneratorConfig{}, err
		}
		if err := game.AddMap(m); err != nil {
			return nil, LootGeneratorConfig{}, err
		}
	}

	lootCfg := LootGeneratorConfig{
		PeriodSeconds: raw.LootGeneratorConfig.Period,
		Probability:   raw.LootGeneratorConfig.Probability,
	}
	return game, lootCfg, nil
}

func buildMap(rm rawMap, defaultSpeed float64, defaultBag int, retirement float64) (*Map, error) {
	if rm.ID == "" {
		return nil, fmt.Errorf("model: map with empty id")
	}

	roads := make([]Road, 0, len(rm.Roads))
	for _, rr := range rm.Roads {
		switch {
		case rr.X1 != nil:
			roads = append(roads, NewHorizontalRoad(Point{X: rr.X0, Y: rr.Y0}, *rr.X1))
		case rr.Y1 != nil:
			roads = append(roads, NewVerticalRoad(Point{X: rr.X0, Y: rr.Y0}, *rr.Y1))
		default:
			return nil, fmt.Errorf("model: map %q: road missing x1/y1", rm.ID)
		}
	}

	buildings := make([]Building, 0, len(rm.Buildings))
	for _, rb := range rm.Buildings {
		buildings = append(buildings, Building{
			Position: Point{X: rb.X, Y: rb.Y},
			Size:     Size{Width: rb.W, Height: rb.H},
		})
	}

	offices := make([]Office, 0, len(rm.Offices))
	for _, ro := range rm.Offices {
		offices = append(offices, Office{
			ID:       OfficeID(ro.ID),
			Position: Point{X: ro.X, Y: ro.Y},
			Offset:   Point{X: ro.OffsetX, Y: ro.OffsetY},
		})
	}

	lootTypes := make([]LootType, 0, len(rm.LootTypes))
	for _, raw := range rm.LootTypes {
		lt := LootType{Extra: raw}
		if name, ok := raw["name"].(string); ok {
			lt.Name = name
		}
		if value, ok := raw["value"].(float64); ok {
			lt.Value = int(value)
		}
		lootTypes = append(lootTypes, lt)
	}

	speed := defaultSpeed
	if rm.DogSpeed != nil {
		speed = *rm.DogSpeed
	}
	bag := defaultBag
	if rm.BagCapacity != nil {
		bag = *rm.BagCapacity
	}

	return NewMap(MapID(rm.ID), rm.Name, roads, buildings, offices, lootTypes, speed, bag, retirement)
}
