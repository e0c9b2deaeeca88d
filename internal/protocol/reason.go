package protocol

// Reason classifies a failure reply.
type Reason string

const (
	ReasonNameInUse      Reason = "name_in_use"
	ReasonTargetNotFound Reason = "target_not_found"
	ReasonGroupNotFound  Reason = "group_not_found"
	ReasonGroupExists    Reason = "group_exists"
	ReasonNotMember      Reason = "not_member"
	ReasonAlreadyMember  Reason = "already_member"
	ReasonMuted          Reason = "muted"
	ReasonNotPrivileged  Reason = "forbidden_not_admin"
	ReasonTargetIsAdmin  Reason = "forbidden_target_is_admin"
	ReasonNotMuted       Reason = "not_muted"
	ReasonNotConnected   Reason = "not_connected"
	ReasonInvalidName    Reason = "invalid_name"
	ReasonBadDuration    Reason = "invalid_duration"
)

// Forbidden reports whether r is an authorization failure.
func (r Reason) Forbidden() bool {
	return r == ReasonNotPrivileged || r == ReasonTargetIsAdmin
}
