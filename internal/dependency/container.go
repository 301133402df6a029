// Package dependency wires core personaforge services using go.uber.org/dig.
package dependency

import (
	"go.uber.org/dig"

	"github.com/personaforge/personaforge/internal/agent"
	"github.com/personaforge/personaforge/internal/config"
	"github.com/personaforge/personaforge/internal/events"
	"github.com/personaforge/personaforge/internal/providers"
	"github.com/personaforge/personaforge/internal/schema"
	"github.com/personaforge/personaforge/internal/server"
	"github.com/personaforge/personaforge/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	service *agent.Service
	broker  *events.Broker
	server  *server.Server
}

func (c *Container) Service() *agent.Service { return c.service }
func (c *Container) Broker() *events.Broker  { return c.broker }
func (c *Container) Server() *server.Server  { return c.server }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		newProvider,
		newRegistry,
		newSeeder,
		events.NewBroker,
		agent.NewService,
		server.NewServer,
	}
	for _, ctor := range constructors {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(service *agent.Service, broker *events.Broker, srv *server.Server) {
		result = &Container{service: service, broker: broker, server: srv}
	})
	return result, err
}

func newProvider(cfg *config.Config) schema.LLMProvider {
	return providers.NewOpenAIProvider(cfg.LLM)
}

func newRegistry(cfg *config.Config) *tools.Registry {
	return tools.NewRegistry(cfg)
}

func newSeeder(cfg *config.Config) *agent.Seeder {
	return agent.NewSeeder(
		tools.NewXSearchTool(cfg.X.BearerToken),
		tools.NewWebSearchTool(cfg.Search.APIKey),
		cfg.Agent,
	)
}
