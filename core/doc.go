// Package core defines the canonical authorization-routing contracts:
// the provider interface every processor integration implements, the
// canonical data model and error table, the timeout guard, the card-on-file
// resolver and the response normalizer.
package core
