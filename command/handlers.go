package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-acquiring/core"
)

// AuthorizingService is the surface the command handlers drive. The core
// service satisfies it.
type AuthorizingService interface {
	Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error)
	Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error)
	PreAuthorize(ctx context.Context, in core.PreAuthInput) (*core.CanonicalAuthorizationResult, error)
	ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error)
	Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error)
	ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error)
}

type TokenizeCommand struct {
	service AuthorizingService
}

func NewTokenizeCommand(service AuthorizingService) *TokenizeCommand {
	return &TokenizeCommand{service: service}
}

func (c *TokenizeCommand) Execute(ctx context.Context, msg TokenizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: tokenize service is required")
	}
	out, err := c.service.Tokenize(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ChargeCommand struct {
	service AuthorizingService
}

func NewChargeCommand(service AuthorizingService) *ChargeCommand {
	return &ChargeCommand{service: service}
}

func (c *ChargeCommand) Execute(ctx context.Context, msg ChargeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: charge service is required")
	}
	out, err := c.service.Charge(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PreAuthorizeCommand struct {
	service AuthorizingService
}

func NewPreAuthorizeCommand(service AuthorizingService) *PreAuthorizeCommand {
	return &PreAuthorizeCommand{service: service}
}

func (c *PreAuthorizeCommand) Execute(ctx context.Context, msg PreAuthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: preauthorize service is required")
	}
	out, err := c.service.PreAuthorize(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReAuthorizeCommand struct {
	service AuthorizingService
}

func NewReAuthorizeCommand(service AuthorizingService) *ReAuthorizeCommand {
	return &ReAuthorizeCommand{service: service}
}

func (c *ReAuthorizeCommand) Execute(ctx context.Context, msg ReAuthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reauthorize service is required")
	}
	out, err := c.service.ReAuthorize(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CaptureCommand struct {
	service AuthorizingService
}

func NewCaptureCommand(service AuthorizingService) *CaptureCommand {
	return &CaptureCommand{service: service}
}

func (c *CaptureCommand) Execute(ctx context.Context, msg CaptureMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: capture service is required")
	}
	out, err := c.service.Capture(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ValidateAccountCommand struct {
	service AuthorizingService
}

func NewValidateAccountCommand(service AuthorizingService) *ValidateAccountCommand {
	return &ValidateAccountCommand{service: service}
}

func (c *ValidateAccountCommand) Execute(ctx context.Context, msg ValidateAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account validation service is required")
	}
	out, err := c.service.ValidateAccount(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
