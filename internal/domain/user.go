// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxNameLen = 36

var (
	ErrNameTooLong   = errors.New("name too long")
	ErrNameEmpty     = errors.New("name empty")
	ErrNameSpaces    = errors.New("name contains spaces")
	ErrEndpointEmpty = errors.New("endpoint empty")
)

// Endpoint is the opaque reachable address of a session.
// Tables are keyed by name; the endpoint is only a send target.
type Endpoint string

func (e Endpoint) String() string { return string(e) }

// Identity is an online user as the coordinator knows it.
type Identity struct {
	Name    string   `json:"name"`
	Address Endpoint `json:"address"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in handlers.
func NewIdentity(name string, address Endpoint) (*Identity, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if address == "" {
		return nil, ErrEndpointEmpty
	}
	return &Identity{Name: name, Address: address}, nil
}

// ValidateName applies the same rules to user and group names.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return ErrNameSpaces
	}
	return nil
}
