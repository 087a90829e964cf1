package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Service is the processor-agnostic entry point of the authorization core.
// It resolves the provider named by the routing decision, runs the
// card-on-file resolver on the direct-acquirer charge path, dispatches the
// operation and guarantees the canonical error envelope on every failure.
type Service struct {
	config       Config
	registry     *ProviderRegistry
	resolver     *ChargeResolver
	normalizer   *ResponseNormalizer
	logger       Logger
	metrics      MetricsRecorder
	transactions TransactionStore
	clock        Clock
}

func (s *Service) now() time.Time {
	if s != nil && s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

// Config returns the resolved service configuration.
func (s *Service) Config() Config {
	return s.config
}

// Registry exposes the provider registry for wiring.
func (s *Service) Registry() *ProviderRegistry {
	return s.registry
}

// Normalizer exposes the response normalizer used at the boundary.
func (s *Service) Normalizer() *ResponseNormalizer {
	return s.normalizer
}

// Logger exposes the resolved service logger so wiring can share it.
func (s *Service) Logger() Logger {
	return s.logger
}

// Tokenize dispatches a card tokenization.
func (s *Service) Tokenize(ctx context.Context, in TokenizeInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "tokenize", in.Routing.ProcessorID, map[string]any{
		"merchant_id": in.Merchant.PublicID,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}
	result, err = provider.Tokenize(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

// Charge dispatches a charge. On the direct-acquirer path the card-on-file
// resolver decides the transaction subtype before the request is built.
func (s *Service) Charge(ctx context.Context, in ChargeInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "charge", in.Routing.ProcessorID, map[string]any{
		"merchant_id":           in.Merchant.PublicID,
		"transaction_reference": in.Token.TransactionReference,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}

	if s.isDirectAcquirer(in.Routing) && s.resolver != nil {
		in, err = s.resolver.Resolve(ctx, in)
		if err != nil {
			return nil, s.ensureCanonical(err, in.Routing.ProcessorID)
		}
	} else if in.TransactionType == "" {
		in.TransactionType = TransactionTypeCharge
		if in.Event.IsCardValidation {
			in.TransactionType = TransactionTypeCardValidation
		}
	}

	result, err = provider.Charge(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

// PreAuthorize dispatches a preauthorization.
func (s *Service) PreAuthorize(ctx context.Context, in PreAuthInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "preauthorization", in.Routing.ProcessorID, map[string]any{
		"merchant_id":           in.Merchant.PublicID,
		"transaction_reference": in.Token.TransactionReference,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}
	result, err = provider.PreAuthorize(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

// ReAuthorize dispatches a reauthorization against a prior preauthorization.
func (s *Service) ReAuthorize(ctx context.Context, in ReAuthInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "reauthorization", in.Routing.ProcessorID, map[string]any{
		"merchant_id": in.Merchant.PublicID,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}
	result, err = provider.ReAuthorize(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

// Capture dispatches a capture of a prior preauthorization.
func (s *Service) Capture(ctx context.Context, in CaptureInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "capture", in.Routing.ProcessorID, map[string]any{
		"merchant_id": in.Merchant.PublicID,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}
	result, err = provider.Capture(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

// ValidateAccount dispatches a zero-amount account validation.
func (s *Service) ValidateAccount(ctx context.Context, in AccountValidationInput) (result *CanonicalAuthorizationResult, err error) {
	defer s.observe(ctx, "account_validation", in.Routing.ProcessorID, map[string]any{
		"merchant_id": in.Merchant.PublicID,
	})(&err)

	provider, perr := s.provider(in.Routing)
	if perr != nil {
		return nil, perr
	}
	result, err = provider.ValidateAccount(ctx, in)
	return result, s.ensureCanonical(err, in.Routing.ProcessorID)
}

func (s *Service) provider(routing RoutingDecision) (Provider, error) {
	provider, ok := s.registry.Get(routing.ProcessorID)
	if !ok {
		return nil, ProcessorConfigError(
			"routing decision names an unregistered processor",
			map[string]any{"processor_id": routing.ProcessorID},
		)
	}
	return provider, nil
}

func (s *Service) isDirectAcquirer(routing RoutingDecision) bool {
	return strings.TrimSpace(routing.ProcessorID) == strings.TrimSpace(s.config.DirectAcquirerID)
}

// ensureCanonical guarantees that no unclassified failure leaves the
// service.
func (s *Service) ensureCanonical(err error, processorID string) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		if _, known := errorCatalog[rich.TextCode]; known {
			return rich
		}
	}
	return InternalError(err, processorID)
}

func (s *Service) observe(ctx context.Context, operation, processorID string, fields map[string]any) func(*error) {
	startedAt := s.now()
	return func(err *error) {
		var failure error
		if err != nil {
			failure = *err
		}
		s.observeOperation(ctx, startedAt, operation, processorID, failure, fields)
	}
}
