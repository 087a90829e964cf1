package acquiring

import (
	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
	"github.com/goliatone/go-acquiring/providers/credomatic"
	"github.com/goliatone/go-acquiring/providers/fis"
	"github.com/goliatone/go-acquiring/providers/kushki"
	"github.com/goliatone/go-acquiring/providers/niubiz"
	"github.com/goliatone/go-acquiring/providers/redeban"
	"github.com/goliatone/go-acquiring/providers/sandbox"
	"github.com/goliatone/go-acquiring/providers/transbank"
)

func KushkiProvider(deps providers.Dependencies) core.Provider {
	return kushki.New(deps)
}

func FISProvider(deps providers.Dependencies) core.Provider {
	return fis.New(deps)
}

func TransbankProvider(deps providers.Dependencies) core.Provider {
	return transbank.New(deps)
}

func CredomaticProvider(deps providers.Dependencies) core.Provider {
	return credomatic.New(deps)
}

func RedebanProvider(deps providers.Dependencies) core.Provider {
	return redeban.New(deps)
}

func NiubizProvider(deps providers.Dependencies) core.Provider {
	return niubiz.New(deps)
}

func SandboxProvider(deps providers.Dependencies) core.Provider {
	return sandbox.New(deps)
}

// RegisterBuiltinProviders wires every built-in processor integration into
// the registry with a shared dependency set.
func RegisterBuiltinProviders(registry *core.ProviderRegistry, deps providers.Dependencies) error {
	builtins := []core.Provider{
		KushkiProvider(deps),
		FISProvider(deps),
		TransbankProvider(deps),
		CredomaticProvider(deps),
		RedebanProvider(deps),
		NiubizProvider(deps),
		SandboxProvider(deps),
	}
	for _, provider := range builtins {
		if err := registry.Register(provider); err != nil {
			return err
		}
	}
	return nil
}
