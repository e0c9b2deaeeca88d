package app

import (
	"slices"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Registry is the online-identity table. Only the coordinator goroutine touches it.
type Registry struct {
	online map[string]domain.Endpoint
}

func NewRegistry() *Registry {
	return &Registry{online: make(map[string]domain.Endpoint)}
}

// Register reports false if the name is already online.
func (r *Registry) Register(id *domain.Identity) bool {
	if _, ok := r.online[id.Name]; ok {
		return false
	}
	r.online[id.Name] = id.Address
	log.Info().Str("module", "app.registry").Str("user", id.Name).Str("address", string(id.Address)).Msg("identity registered")
	return true
}

func (r *Registry) Unregister(name string) {
	if _, ok := r.online[name]; !ok {
		return
	}
	delete(r.online, name)
	log.Info().Str("module", "app.registry").Str("user", name).Msg("identity removed")
}

func (r *Registry) Lookup(name string) (domain.Endpoint, bool) {
	ep, ok := r.online[name]
	return ep, ok
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.online)
	slices.Sort(names)
	return names
}
