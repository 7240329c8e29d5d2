package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `"Ace"`, want: "Ace"},
		{name: "collapses whitespace", raw: `"  Big \t  Bob  "`, want: "Big Bob"},
		{name: "strips non ascii", raw: `"Zoë☃"`, want: "Zo"},
		{name: "truncates", raw: `"abcdefghijklmnopqrstuvwxyz"`, want: "abcdefghijklmnopqrst"},
		{name: "only junk", raw: `"☃☃"`, want: ""},
		{name: "number is rejected", raw: `42`, want: ""},
		{name: "null", raw: `null`, want: ""},
		{name: "absent", raw: ``, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Name(json.RawMessage(tc.raw)))
		})
	}
}

func TestPartyCode(t *testing.T) {
	assert.Equal(t, "AB3K", PartyCode(json.RawMessage(`" ab-3k "`), 4))
	assert.Equal(t, "ABCD", PartyCode(json.RawMessage(`"abcdefg"`), 4))
	assert.Equal(t, "1234", PartyCode(json.RawMessage(`1234`), 4))
	assert.Equal(t, "", PartyCode(json.RawMessage(`"--"`), 4))
	assert.Equal(t, "", PartyCode(nil, 4))
	assert.Equal(t, "", PartyCode(json.RawMessage(`{"code":"ABCD"}`), 4))
}

func TestTruthy(t *testing.T) {
	for raw, want := range map[string]bool{
		``:      false,
		`null`:  false,
		`false`: false,
		`0`:     false,
		`""`:    false,
		`true`:  true,
		`1`:     true,
		`"no"`:  true,
		`{}`:    true,
		`[]`:    true,
	} {
		assert.Equal(t, want, Truthy(json.RawMessage(raw)), "raw=%q", raw)
	}
}

func TestChat(t *testing.T) {
	assert.Equal(t, "hi", Chat(json.RawMessage(`"hi"`)))
	assert.Equal(t, "12.5", Chat(json.RawMessage(`12.5`)))
	assert.Equal(t, "", Chat(json.RawMessage(`null`)))

	long := make([]byte, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	raw, _ := json.Marshal(string(long))
	assert.Len(t, Chat(raw), ChatMaxLength)
}

func TestPlayerState_ClampsAndTypes(t *testing.T) {
	st, ok := PlayerState(json.RawMessage(`{
		"x": 9999, "y": "-12.5", "vx": -5000, "vy": "fast",
		"hp": 300, "stamina": -1, "latency": 20000,
		"alive": 1, "downed": null, "spectator": false,
		"teamId": 2.5, "teamColor": "#ff00ffff00ff00ff00ff00ff00ff00ff00ff",
		"weapon": 7, "mode": "squads-and-more-text", "diff": "hard",
		"bogus": true
	}`))
	require.True(t, ok)

	require.NotNil(t, st.X)
	assert.Equal(t, 5000.0, *st.X)
	require.NotNil(t, st.Y)
	assert.Equal(t, -12.5, *st.Y)
	require.NotNil(t, st.VX)
	assert.Equal(t, -4000.0, *st.VX)
	assert.Nil(t, st.VY)
	assert.Equal(t, 250.0, *st.HP)
	assert.Equal(t, 0.0, *st.Stamina)
	assert.Equal(t, 10000.0, *st.Latency)

	assert.True(t, *st.Alive)
	assert.False(t, *st.Downed)
	assert.False(t, *st.Spectator)

	require.NotNil(t, st.TeamID)
	assert.Equal(t, 3, *st.TeamID)
	assert.Len(t, *st.TeamColor, teamColorMax)
	assert.Nil(t, st.Weapon)
	assert.Equal(t, "squads-and-more-", *st.Mode)
	assert.Equal(t, "hard", *st.Diff)
}

func TestPlayerState_NegativeRoundingAndOverkill(t *testing.T) {
	st, ok := PlayerState(json.RawMessage(`{"teamId": -2.5, "hp": -50}`))
	require.True(t, ok)
	assert.Equal(t, -2, *st.TeamID)
	assert.Equal(t, -10.0, *st.HP)
}

func TestPlayerState_RejectsEmpty(t *testing.T) {
	for _, raw := range []string{`{}`, `{"unknown": 1}`, `{"x": "abc"}`, `"x"`, `null`, `[1,2]`, `{"teamId": "3"}`} {
		_, ok := PlayerState(json.RawMessage(raw))
		assert.False(t, ok, "raw=%s", raw)
	}
}
