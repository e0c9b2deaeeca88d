// Package protocol defines the messages exchanged between sessions and the coordinator.
//
// Every message is one Message value discriminated by Kind. Requests carry a fresh
// correlation ID; replies (success, failure, confirm, decline) reuse the ID of the
// message they answer and are sent to its From endpoint.
package protocol

import (
	"math"
	"strconv"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/google/uuid"
)

type Kind string

// Requests handled by the coordinator.
const (
	KindConnect      Kind = "connect"
	KindDisconnect   Kind = "disconnect"
	KindResolve      Kind = "resolve"
	KindCreateGroup  Kind = "create_group"
	KindLeaveGroup   Kind = "leave_group"
	KindGroupData    Kind = "group_data"
	KindInviteCheck  Kind = "invite_check"
	KindCommitInvite Kind = "commit_invite"
	KindRemoveMember Kind = "remove_member"
	KindSetCoAdmin   Kind = "set_coadmin"
	KindMute         Kind = "mute"
	KindUnmute       Kind = "unmute"
)

// Replies.
const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Peer to peer.
const (
	KindText    Kind = "text"
	KindFile    Kind = "file"
	KindInvited Kind = "invited"
	KindConfirm Kind = "confirm"
	KindDecline Kind = "decline"
)

// IsReply reports whether m answers an earlier message with the same ID.
func (k Kind) IsReply() bool {
	switch k {
	case KindSuccess, KindFailure, KindConfirm, KindDecline:
		return true
	}
	return false
}

type Message struct {
	Kind Kind            `json:"kind"`
	ID   string          `json:"id"`
	From domain.Endpoint `json:"from"`

	Group  string `json:"group,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`

	Text     string `json:"text,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Content  []byte `json:"content,omitempty"`

	DurationMs int64 `json:"duration_ms,omitempty"`
	Promote    bool  `json:"promote,omitempty"`

	// Success payload.
	Address domain.Endpoint `json:"address,omitempty"`
	// Failure payload.
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func newRequest(kind Kind) Message {
	return Message{Kind: kind, ID: uuid.NewString()}
}

func Connect(name string) Message {
	m := newRequest(KindConnect)
	m.Source = name
	return m
}

func Disconnect(name string) Message {
	m := newRequest(KindDisconnect)
	m.Source = name
	return m
}

func Resolve(source, target string) Message {
	m := newRequest(KindResolve)
	m.Source, m.Target = source, target
	return m
}

func CreateGroup(group, creator string) Message {
	m := newRequest(KindCreateGroup)
	m.Group, m.Source = group, creator
	return m
}

func LeaveGroup(group, name string) Message {
	m := newRequest(KindLeaveGroup)
	m.Group, m.Source = group, name
	return m
}

// GroupText and GroupFile build SendGroupData requests.
func GroupText(group, source, text string) Message {
	m := newRequest(KindGroupData)
	m.Group, m.Source, m.Text = group, source, text
	return m
}

func GroupFile(group, source, fileName string, content []byte) Message {
	m := newRequest(KindGroupData)
	m.Group, m.Source, m.FileName, m.Content = group, source, fileName, content
	return m
}

func InviteCheck(group, source, target string) Message {
	return groupTargetRequest(KindInviteCheck, group, source, target)
}

func CommitInvite(group, source, target string) Message {
	return groupTargetRequest(KindCommitInvite, group, source, target)
}

func RemoveMember(group, source, target string) Message {
	return groupTargetRequest(KindRemoveMember, group, source, target)
}

func SetCoAdmin(group, source, target string, promote bool) Message {
	m := groupTargetRequest(KindSetCoAdmin, group, source, target)
	m.Promote = promote
	return m
}

// MaxMuteMs is the longest mute that still fits a time.Duration.
const MaxMuteMs = math.MaxInt64 / int64(time.Millisecond)

func Mute(group, source, target string, durationMs int64) Message {
	m := groupTargetRequest(KindMute, group, source, target)
	m.DurationMs = durationMs
	return m
}

func Unmute(group, source, target string) Message {
	return groupTargetRequest(KindUnmute, group, source, target)
}

func Invited(group, inviter, target string) Message {
	return groupTargetRequest(KindInvited, group, inviter, target)
}

func groupTargetRequest(kind Kind, group, source, target string) Message {
	m := newRequest(kind)
	m.Group, m.Source, m.Target = group, source, target
	return m
}

// Text is a direct data message. Target names the chat it belongs to:
// the recipient for one-to-one text, the group for group traffic and notices.
func Text(source, target, text string) Message {
	m := newRequest(KindText)
	m.Source, m.Target, m.Text = source, target, text
	return m
}

func File(source, target, fileName string, content []byte) Message {
	m := newRequest(KindFile)
	m.Source, m.Target, m.FileName, m.Content = source, target, fileName, content
	return m
}

// IsFile reports whether a data-carrying message holds file content.
func (m Message) IsFile() bool { return m.FileName != "" }

// AsDelivery turns a group_data request into the data message fanned out to members.
func (m Message) AsDelivery() Message {
	if m.IsFile() {
		return File(m.Source, m.Group, m.FileName, m.Content)
	}
	return Text(m.Source, m.Group, m.Text)
}

func (m Message) Success(address domain.Endpoint) Message {
	return Message{Kind: KindSuccess, ID: m.ID, Address: address}
}

func (m Message) Failure(reason Reason, detail string) Message {
	return Message{Kind: KindFailure, ID: m.ID, Reason: reason, Detail: detail}
}

func (m Message) Confirm() Message { return Message{Kind: KindConfirm, ID: m.ID} }

func (m Message) Decline() Message { return Message{Kind: KindDecline, ID: m.ID} }

// MutedFor is the failure returned to a muted sender.
func (m Message) MutedFor(remainingMs int64) Message {
	return m.Failure(ReasonMuted, strconv.FormatInt(remainingMs, 10))
}
