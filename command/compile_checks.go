package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[TokenizeMessage]        = (*TokenizeCommand)(nil)
	_ gocmd.Commander[ChargeMessage]          = (*ChargeCommand)(nil)
	_ gocmd.Commander[PreAuthorizeMessage]    = (*PreAuthorizeCommand)(nil)
	_ gocmd.Commander[ReAuthorizeMessage]     = (*ReAuthorizeCommand)(nil)
	_ gocmd.Commander[CaptureMessage]         = (*CaptureCommand)(nil)
	_ gocmd.Commander[ValidateAccountMessage] = (*ValidateAccountCommand)(nil)
)
