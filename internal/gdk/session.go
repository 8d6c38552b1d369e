package gdk

import (
	"context"
	"encoding/json"
)

// AuthHandler is a pending backend action. The action resolver polls Status
// and answers with exactly one of the transition methods per step.
type AuthHandler interface {
	// Status returns the current state.
	Status(ctx context.Context) (Status, error)

	// RequestCode selects the 2FA method for a RequestCode state.
	RequestCode(ctx context.Context, method string) error

	// ResolveCode answers a ResolveCode state with a code or device response.
	ResolveCode(ctx context.Context, data string) error

	// Call lets the backend proceed from a Call state.
	Call(ctx context.Context) error
}

// Session is a connection to the wallet backend for one network.
type Session interface {
	// GenerateMnemonic returns a new phrase from the backend's generator.
	GenerateMnemonic(ctx context.Context) (string, error)

	// Login authenticates with either a phrase or a device descriptor.
	Login(ctx context.Context, hwDevice json.RawMessage, mnemonic, password string) (AuthHandler, error)

	// LoginWithPin authenticates with PIN data. It completes without an auth handler.
	LoginWithPin(ctx context.Context, pin string, pinData json.RawMessage) error

	// RegisterUser registers a wallet with the backend.
	RegisterUser(ctx context.Context, hwDevice json.RawMessage, mnemonic string) (AuthHandler, error)

	// SetPin has the backend encrypt the phrase under pin and returns the PIN data.
	SetPin(ctx context.Context, mnemonic, pin, deviceID string) (json.RawMessage, error)

	// Call invokes a backend method that returns its result directly.
	Call(ctx context.Context, method string, args ...any) (json.RawMessage, error)

	// CallAuth invokes a backend method that returns a pending action.
	CallAuth(ctx context.Context, method string, args ...any) (AuthHandler, error)

	// Notifications streams backend notifications until ctx is done.
	Notifications(ctx context.Context) (<-chan json.RawMessage, error)

	// Close releases the connection.
	Close()
}

// Backend method names exposed by the gdk bridge.
const (
	MethodConnect                 = "gdk_connect"
	MethodGetNetworks             = "gdk_getNetworks"
	MethodGenerateMnemonic        = "gdk_generateMnemonic"
	MethodLogin                   = "gdk_login"
	MethodLoginWithPin            = "gdk_loginWithPin"
	MethodRegisterUser            = "gdk_registerUser"
	MethodSetPin                  = "gdk_setPin"
	MethodAuthHandlerGetStatus    = "gdk_authHandlerGetStatus"
	MethodAuthHandlerRequestCode  = "gdk_authHandlerRequestCode"
	MethodAuthHandlerResolveCode  = "gdk_authHandlerResolveCode"
	MethodAuthHandlerCall         = "gdk_authHandlerCall"
	MethodConvertAmount           = "gdk_convertAmount"
	MethodCreateSubaccount        = "gdk_createSubaccount"
	MethodGetSubaccounts          = "gdk_getSubaccounts"
	MethodGetSubaccount           = "gdk_getSubaccount"
	MethodRenameSubaccount        = "gdk_renameSubaccount"
	MethodSetWatchOnly            = "gdk_setWatchOnly"
	MethodGetWatchOnlyUsername    = "gdk_getWatchOnlyUsername"
	MethodGetSettings             = "gdk_getSettings"
	MethodChangeSettings          = "gdk_changeSettings"
	MethodGetReceiveAddress       = "gdk_getReceiveAddress"
	MethodGetFeeEstimates         = "gdk_getFeeEstimates"
	MethodGetBalance              = "gdk_getBalance"
	MethodGetUnspentOutputs       = "gdk_getUnspentOutputs"
	MethodGetTransactions         = "gdk_getTransactions"
	MethodCreateTransaction       = "gdk_createTransaction"
	MethodSignTransaction         = "gdk_signTransaction"
	MethodSendTransaction         = "gdk_sendTransaction"
	MethodEncrypt                 = "gdk_encrypt"
	MethodDecrypt                 = "gdk_decrypt"
	MethodGetTwofactorConfig      = "gdk_getTwofactorConfig"
	MethodChangeSettingsTwofactor = "gdk_changeSettingsTwofactor"
	MethodTwofactorChangeLimits   = "gdk_twofactorChangeLimits"
	MethodTwofactorReset          = "gdk_twofactorReset"
	MethodTwofactorCancelReset    = "gdk_twofactorCancelReset"
)

// notificationsTopic is the subscription name for backend notifications.
const notificationsTopic = "notifications"
