// Package properties resolves the layered configuration of an API context into an
// immutable Bag and derives the typed Settings the rest of the engine consumes.
//
// Layers, lowest precedence first:
//
//	built-in defaults < api defaults < provider defaults < builder fields < overrides < system
//
// Keys may be bare ("endpoint"), global ("apikit.endpoint") or scoped to the provider
// or api id ("aws-ec2.endpoint"). Within one layer the most specific form wins; across
// layers the higher layer wins. System properties are only accepted when they are
// global or scoped to the provider or api being built.
package properties
