package presence

// Service names registered in the presence module's service container.
const (
	ServiceGetRoster      = "get-roster"
	ServiceRandomNickname = "random-nickname"
)

// GetRosterRequest asks for the current roster.
type GetRosterRequest struct{}

// GetRosterResponse carries the roster in join order.
type GetRosterResponse struct {
	Nicknames []string `json:"nicknames"`
	Count     int      `json:"count"`
}

// RandomNicknameRequest asks for an anonymous nickname.
type RandomNicknameRequest struct{}

// RandomNicknameResponse carries a generated nickname.
type RandomNicknameResponse struct {
	Nickname string `json:"nickname"`
}
