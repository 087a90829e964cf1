// Package providers holds the builder rules shared by every processor
// integration: deferred-payment encoding, 3DS propagation, subscription and
// card-validation detection. Each processor lives in its own subpackage and
// implements core.Provider.
package providers
