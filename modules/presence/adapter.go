package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/magbay/LAN-Chat/domain/chat"
)

// PresencePort is what other modules may ask of the presence module.
type PresencePort interface {
	Roster(ctx context.Context) (chat.RosterSnapshot, error)
	RandomNickname(ctx context.Context) (string, error)
}

// PresenceAdapter implements PresencePort over the service container.
type PresenceAdapter struct {
	container mono.ServiceContainer
}

// NewPresenceAdapter creates a new PresenceAdapter.
func NewPresenceAdapter(container mono.ServiceContainer) PresencePort {
	if container == nil {
		panic("presence: ServiceContainer is nil")
	}
	return &PresenceAdapter{container: container}
}

// Roster returns the current roster.
func (a *PresenceAdapter) Roster(ctx context.Context) (chat.RosterSnapshot, error) {
	req := GetRosterRequest{}
	var resp GetRosterResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoster,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return chat.RosterSnapshot{}, fmt.Errorf("failed to get roster: %w", err)
	}
	return chat.NewRosterSnapshot(resp.Nicknames), nil
}

// RandomNickname returns a generated nickname.
func (a *PresenceAdapter) RandomNickname(ctx context.Context) (string, error) {
	req := RandomNicknameRequest{}
	var resp RandomNicknameResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRandomNickname,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to get nickname: %w", err)
	}
	return resp.Nickname, nil
}
