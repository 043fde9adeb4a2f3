package dag

import (
	"fmt"

	"github.com/fairsim/fairsim/internal/simcore"
)

// StaticProvider is an in-memory Catalog, built up programmatically —
// synthetic workloads in tests, or the experiment runner's generated
// scenarios.
type StaticProvider struct {
	templates map[string]simcore.ToolTemplate
	dags      map[string]simcore.DAGSpec
}

// NewStaticProvider returns an empty provider ready for AddTemplate/AddDAG
// calls.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		templates: make(map[string]simcore.ToolTemplate),
		dags:      make(map[string]simcore.DAGSpec),
	}
}

// AddTemplate registers a tool template under name. Returns an error if the
// template carries a negative load (simcore.ToolTemplate.Validate).
func (p *StaticProvider) AddTemplate(name string, tmpl simcore.ToolTemplate) error {
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("dag: template %q: %w", name, err)
	}
	p.templates[name] = tmpl
	return nil
}

// AddDAG registers a request type's DAG shape. Validation against the
// registered templates happens lazily, when the engine handles an arrival of
// this request type (simcore's own DAGSpec.validate) — StaticProvider does
// not duplicate that check here because templates may still be added after
// the DAG.
func (p *StaticProvider) AddDAG(requestType string, spec simcore.DAGSpec) {
	p.dags[requestType] = spec
}

// Template implements simcore.TemplateProvider.
func (p *StaticProvider) Template(name string) (simcore.ToolTemplate, error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return nil, fmt.Errorf("dag: no such template %q", name)
	}
	return tmpl, nil
}

// DAG implements simcore.DAGProvider.
func (p *StaticProvider) DAG(requestType string) (simcore.DAGSpec, error) {
	spec, ok := p.dags[requestType]
	if !ok {
		return simcore.DAGSpec{}, fmt.Errorf("dag: no such request type %q", requestType)
	}
	return spec, nil
}
