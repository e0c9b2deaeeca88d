//go:generate go run go.uber.org/mock/mockgen -source=commands.go -destination=../../mocks/mock_commands.go -package=mocks
package console

import (
	"context"
	"time"
)

// Commands is what a console line can ask of the local session.
type Commands interface {
	Connect(ctx context.Context, name string)
	Disconnect(ctx context.Context)
	SendText(ctx context.Context, target, text string)
	SendFile(ctx context.Context, target, path string)
	CreateGroup(ctx context.Context, group string)
	LeaveGroup(ctx context.Context, group string)
	SendGroupText(ctx context.Context, group, text string)
	SendGroupFile(ctx context.Context, group, path string)
	Invite(ctx context.Context, group, target string)
	RemoveMember(ctx context.Context, group, target string)
	Mute(ctx context.Context, group, target string, d time.Duration)
	Unmute(ctx context.Context, group, target string)
	SetCoAdmin(ctx context.Context, group, target string, promote bool)
	AnswerInvite(ctx context.Context, accept bool)
}
