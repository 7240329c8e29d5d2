package sanitize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/DoyleJ11/party-sync/pkg/types"
)

type bounds struct{ min, max float64 }

var (
	positionBounds = bounds{-5000, 5000}
	velocityBounds = bounds{-4000, 4000}
	hpBounds       = bounds{-10, 250}
	staminaBounds  = bounds{0, 120}
	latencyBounds  = bounds{0, 10000}
)

const (
	teamColorMax = 32
	weaponMax    = 24
	modeMax      = 16
)

// PlayerState keeps every recognised field of raw that passes its check.
// ok is false when raw is not an object or nothing survived; ID, Name and
// UpdatedAt are left for the caller to stamp.
func PlayerState(raw json.RawMessage) (st types.PlayerState, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return types.PlayerState{}, false
	}

	n := 0
	num := func(key string, b bounds) *float64 {
		v, found := number(fields[key])
		if !found {
			return nil
		}
		n++
		v = math.Max(b.min, math.Min(b.max, v))
		return &v
	}
	flag := func(key string) *bool {
		v, found := fields[key]
		if !found {
			return nil
		}
		n++
		t := Truthy(v)
		return &t
	}
	text := func(key string, max int) *string {
		s, found := jsonString(fields[key])
		if !found {
			return nil
		}
		n++
		s = truncate(s, max)
		return &s
	}

	st.X = num("x", positionBounds)
	st.Y = num("y", positionBounds)
	st.VX = num("vx", velocityBounds)
	st.VY = num("vy", velocityBounds)
	st.HP = num("hp", hpBounds)
	st.Stamina = num("stamina", staminaBounds)
	st.Alive = flag("alive")
	st.Downed = flag("downed")
	st.Spectator = flag("spectator")
	if id, found := teamID(fields["teamId"]); found {
		n++
		st.TeamID = &id
	}
	st.TeamColor = text("teamColor", teamColorMax)
	st.Weapon = text("weapon", weaponMax)
	st.Mode = text("mode", modeMax)
	st.Diff = text("diff", modeMax)
	st.Latency = num("latency", latencyBounds)

	return st, n > 0
}

// number accepts finite JSON numbers and numeric strings.
func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var text string
	switch raw[0] {
	case '"':
		s, ok := jsonString(raw)
		if !ok {
			return 0, false
		}
		text = strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, false
	}
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// teamID only accepts a real JSON number, rounded half up.
func teamID(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}
	v, ok := number(raw)
	if !ok {
		return 0, false
	}
	v = math.Floor(v + 0.5)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
