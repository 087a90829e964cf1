package acquiring

import (
	"fmt"

	acqcommand "github.com/goliatone/go-acquiring/command"
	acqquery "github.com/goliatone/go-acquiring/query"
)

type Commands struct {
	Tokenize        *acqcommand.TokenizeCommand
	Charge          *acqcommand.ChargeCommand
	PreAuthorize    *acqcommand.PreAuthorizeCommand
	ReAuthorize     *acqcommand.ReAuthorizeCommand
	Capture         *acqcommand.CaptureCommand
	ValidateAccount *acqcommand.ValidateAccountCommand
}

type Queries struct {
	GetTransaction    *acqquery.GetTransactionQuery
	ListTransactions  *acqquery.ListTransactionsQuery
	ListTimeoutEvents *acqquery.ListTimeoutEventsQuery
	GetMerchantInfo   *acqquery.GetMerchantInfoQuery
}

// Facade bundles the command and query handlers around one service so hosts
// can register them with their dispatcher in a single call.
type Facade struct {
	service  acqcommand.AuthorizingService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	transactionReader  acqquery.TransactionReader
	timeoutEventReader acqquery.TimeoutEventReader
	merchantInfoReader acqquery.MerchantInfoReader
}

func WithTransactionReader(reader acqquery.TransactionReader) FacadeOption {
	return func(options *facadeOptions) {
		options.transactionReader = reader
	}
}

func WithTimeoutEventReader(reader acqquery.TimeoutEventReader) FacadeOption {
	return func(options *facadeOptions) {
		options.timeoutEventReader = reader
	}
}

func WithMerchantInfoReader(reader acqquery.MerchantInfoReader) FacadeOption {
	return func(options *facadeOptions) {
		options.merchantInfoReader = reader
	}
}

func NewFacade(service acqcommand.AuthorizingService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("acquiring: authorizing service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Tokenize:        acqcommand.NewTokenizeCommand(service),
		Charge:          acqcommand.NewChargeCommand(service),
		PreAuthorize:    acqcommand.NewPreAuthorizeCommand(service),
		ReAuthorize:     acqcommand.NewReAuthorizeCommand(service),
		Capture:         acqcommand.NewCaptureCommand(service),
		ValidateAccount: acqcommand.NewValidateAccountCommand(service),
	}
	facade.queries = Queries{
		GetTransaction:    acqquery.NewGetTransactionQuery(cfg.transactionReader),
		ListTransactions:  acqquery.NewListTransactionsQuery(cfg.transactionReader),
		ListTimeoutEvents: acqquery.NewListTimeoutEventsQuery(cfg.timeoutEventReader),
		GetMerchantInfo:   acqquery.NewGetMerchantInfoQuery(cfg.merchantInfoReader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() acqcommand.AuthorizingService {
	if f == nil {
		return nil
	}
	return f.service
}
