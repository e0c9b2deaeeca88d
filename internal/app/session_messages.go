package app

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/protocol"
)

const (
	msgOfflineConnect = "server is offline!"
	msgOffline        = "server is offline! try again later!"
)

// describe turns a failure reply into the line shown to the user.
func describe(f protocol.Message, group, target string) string {
	switch f.Reason {
	case protocol.ReasonGroupNotFound:
		return group + " does not exist!"
	case protocol.ReasonGroupExists:
		return group + " already exists!"
	case protocol.ReasonTargetNotFound:
		return target + " does not exist!"
	case protocol.ReasonNotPrivileged:
		return fmt.Sprintf("You are neither an admin nor a co-admin of %s!", group)
	case protocol.ReasonAlreadyMember:
		return fmt.Sprintf("%s is already in %s!", target, group)
	case protocol.ReasonNotMember:
		return fmt.Sprintf("%s is not a member of %s!", target, group)
	case protocol.ReasonNotMuted:
		return target + " is not muted!"
	case protocol.ReasonTargetIsAdmin:
		return target + " is the admin of the group!"
	case protocol.ReasonMuted:
		return fmt.Sprintf("You are muted for %s milliseconds in %s!", f.Detail, group)
	case protocol.ReasonNameInUse:
		return target + " is in use!"
	case protocol.ReasonInvalidName:
		return fmt.Sprintf("%s is not a valid name: %s", target, f.Detail)
	case protocol.ReasonBadDuration:
		return f.Detail + " is not a valid mute duration!"
	case protocol.ReasonNotConnected:
		return "You are not connected!"
	default:
		return fmt.Sprintf("request failed: %s %s", f.Reason, f.Detail)
	}
}
