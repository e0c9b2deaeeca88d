package app

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose endpoint refused a broadcast.
type Policy interface {
	OnUndeliverable(group *core.Group, member string) BackpressureAction
}

// KeepPolicy leaves unreachable members in place; a later Disconnect cleans them up.
type KeepPolicy struct{}

func (KeepPolicy) OnUndeliverable(*core.Group, string) BackpressureAction { return NoAction }

// KickPolicy removes unreachable members other than the admin.
type KickPolicy struct{}

func (KickPolicy) OnUndeliverable(g *core.Group, member string) BackpressureAction {
	if g.Admin() == member {
		return NoAction
	}
	return KickMember
}

// PolicyByName maps the configured policy name to its implementation.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "keep", "":
		return KeepPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown undeliverable policy %q", name)
	}
}
