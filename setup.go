package acquiring

import (
	"fmt"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
	sqlstore "github.com/goliatone/go-acquiring/store/sql"
)

// Setup assembles a fully wired service: stores from the persistence client,
// the timeout guard around the given invoker, and every built-in processor
// integration registered. Hosts that need custom wiring can assemble the
// pieces themselves through core.NewService.
func Setup(cfg Config, invoker core.Invoker, persistenceClient any, opts ...Option) (*Service, *sqlstore.RepositoryFactory, error) {
	if invoker == nil {
		return nil, nil, fmt.Errorf("acquiring: invoker is required")
	}

	factory := sqlstore.NewRepositoryFactory()
	if err := factory.BuildStores(persistenceClient); err != nil {
		return nil, nil, err
	}

	registry := core.NewProviderRegistry()
	options := append([]Option{
		core.WithRegistry(registry),
		core.WithTransactionStore(factory.TransactionStore()),
	}, opts...)

	service, err := core.NewService(cfg, options...)
	if err != nil {
		return nil, nil, err
	}

	resolved := service.Config()
	guard := core.NewTimeoutGuard(
		invoker,
		resolved.Timeouts,
		factory.TimeoutStore(),
		service.Logger(),
		nil,
	)

	deps := providers.Dependencies{
		Guard:     guard,
		Logger:    service.Logger(),
		Config:    resolved,
		Merchants: factory.MerchantInfoStore(),
	}
	if err := RegisterBuiltinProviders(registry, deps); err != nil {
		return nil, nil, err
	}

	return service, factory, nil
}
