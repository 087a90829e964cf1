package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-acquiring/core"
)

const (
	TypeTokenize        = "acquiring.command.tokenize"
	TypeCharge          = "acquiring.command.charge"
	TypePreAuthorize    = "acquiring.command.preauthorize"
	TypeReAuthorize     = "acquiring.command.reauthorize"
	TypeCapture         = "acquiring.command.capture"
	TypeValidateAccount = "acquiring.command.account.validate"
)

type TokenizeMessage struct {
	Input core.TokenizeInput
}

func (TokenizeMessage) Type() string { return TypeTokenize }

func (m TokenizeMessage) Validate() error {
	if strings.TrimSpace(m.Input.CardNumber) == "" {
		return fmt.Errorf("command: card number is required")
	}
	if strings.TrimSpace(m.Input.Merchant.PublicID) == "" {
		return fmt.Errorf("command: merchant id is required")
	}
	return validateRouting(m.Input.Routing)
}

type ChargeMessage struct {
	Input core.ChargeInput
}

func (ChargeMessage) Type() string { return TypeCharge }

func (m ChargeMessage) Validate() error {
	if strings.TrimSpace(m.Input.Token.ID) == "" {
		return fmt.Errorf("command: token is required")
	}
	if strings.TrimSpace(m.Input.Token.TransactionReference) == "" {
		return fmt.Errorf("command: transaction reference is required")
	}
	if strings.TrimSpace(m.Input.Merchant.PublicID) == "" {
		return fmt.Errorf("command: merchant id is required")
	}
	return validateRouting(m.Input.Routing)
}

type PreAuthorizeMessage struct {
	Input core.PreAuthInput
}

func (PreAuthorizeMessage) Type() string { return TypePreAuthorize }

func (m PreAuthorizeMessage) Validate() error {
	if strings.TrimSpace(m.Input.Token.ID) == "" {
		return fmt.Errorf("command: token is required")
	}
	if strings.TrimSpace(m.Input.Token.TransactionReference) == "" {
		return fmt.Errorf("command: transaction reference is required")
	}
	if strings.TrimSpace(m.Input.Merchant.PublicID) == "" {
		return fmt.Errorf("command: merchant id is required")
	}
	return validateRouting(m.Input.Routing)
}

type ReAuthorizeMessage struct {
	Input core.ReAuthInput
}

func (ReAuthorizeMessage) Type() string { return TypeReAuthorize }

func (m ReAuthorizeMessage) Validate() error {
	if m.Input.Original == nil {
		return fmt.Errorf("command: original preauthorization is required")
	}
	if strings.TrimSpace(m.Input.Original.TransactionReference) == "" {
		return fmt.Errorf("command: original transaction reference is required")
	}
	return validateRouting(m.Input.Routing)
}

type CaptureMessage struct {
	Input core.CaptureInput
}

func (CaptureMessage) Type() string { return TypeCapture }

func (m CaptureMessage) Validate() error {
	if m.Input.Original == nil {
		return fmt.Errorf("command: original preauthorization is required")
	}
	if strings.TrimSpace(m.Input.Original.TransactionReference) == "" {
		return fmt.Errorf("command: original transaction reference is required")
	}
	return validateRouting(m.Input.Routing)
}

type ValidateAccountMessage struct {
	Input core.AccountValidationInput
}

func (ValidateAccountMessage) Type() string { return TypeValidateAccount }

func (m ValidateAccountMessage) Validate() error {
	if strings.TrimSpace(m.Input.Token.ID) == "" {
		return fmt.Errorf("command: token is required")
	}
	if strings.TrimSpace(m.Input.Merchant.PublicID) == "" {
		return fmt.Errorf("command: merchant id is required")
	}
	return validateRouting(m.Input.Routing)
}

func validateRouting(routing core.RoutingDecision) error {
	if strings.TrimSpace(routing.ProcessorID) == "" {
		return fmt.Errorf("command: routing processor id is required")
	}
	return nil
}
