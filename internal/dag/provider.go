// Package dag supplies the DAG-shape and tool-template lookups that
// simcore.Engine consumes through its TemplateProvider and DAGProvider
// interfaces. Nothing here runs a simulation; it only authors and validates
// the static workload description a run is driven from.
package dag

import "github.com/fairsim/fairsim/internal/simcore"

// TemplateProvider is the local alias of simcore.TemplateProvider, kept so
// callers that only import internal/dag don't need to reach into simcore for
// the interface name.
type TemplateProvider = simcore.TemplateProvider

// DAGProvider is the local alias of simcore.DAGProvider.
type DAGProvider = simcore.DAGProvider

// Catalog bundles both lookups a request needs: its tool templates and its
// DAG shapes, keyed by request type. Both StaticProvider and TOMLProvider
// implement Catalog.
type Catalog interface {
	TemplateProvider
	DAGProvider
}
