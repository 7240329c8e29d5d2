package types

// PlayerState is one player's transient state as relayed between party
// members. Every gameplay field is optional; ID, Name and UpdatedAt are
// stamped by the server on receipt.
type PlayerState struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	VX        *float64 `json:"vx,omitempty"`
	VY        *float64 `json:"vy,omitempty"`
	HP        *float64 `json:"hp,omitempty"`
	Stamina   *float64 `json:"stamina,omitempty"`
	Alive     *bool    `json:"alive,omitempty"`
	Downed    *bool    `json:"downed,omitempty"`
	Spectator *bool    `json:"spectator,omitempty"`
	TeamID    *int     `json:"teamId,omitempty"`
	TeamColor *string  `json:"teamColor,omitempty"`
	Weapon    *string  `json:"weapon,omitempty"`
	Mode      *string  `json:"mode,omitempty"`
	Diff      *string  `json:"diff,omitempty"`
	Latency   *float64 `json:"latency,omitempty"`
	UpdatedAt int64    `json:"updatedAt"`
}
