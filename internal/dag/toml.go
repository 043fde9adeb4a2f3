package dag

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fairsim/fairsim/internal/simcore"
)

// tomlDocument is the on-disk shape of a workload catalog: the resource
// capacity table, the named tool templates, and the named request-type DAGs.
// Kept as unexported structs so the public surface is the loader function and
// the resulting Catalog, not the TOML schema itself.
type tomlDocument struct {
	Capacities map[string]float64        `toml:"capacities"`
	Templates  map[string]tomlTemplate   `toml:"templates"`
	Requests   map[string]tomlRequestDAG `toml:"requests"`
}

type tomlTemplate struct {
	Loads map[string]float64 `toml:"loads"`
}

type tomlRequestDAG struct {
	Nodes map[string]tomlNode `toml:"nodes"`
}

type tomlNode struct {
	Template     string   `toml:"template"`
	Predecessors []string `toml:"predecessors"`
}

// TOMLProvider is a Catalog loaded from a TOML workload-catalog document. It
// validates every DAG it holds at load time, failing fast per the
// configuration-fault taxonomy (spec.md §7): non-positive capacity, negative
// load, DAG cycles, missing template references, and unknown predecessor
// node names.
type TOMLProvider struct {
	capacities simcore.ResourceTable
	static     *StaticProvider
}

// LoadTOMLFile reads and parses a workload catalog from path.
func LoadTOMLFile(path string) (*TOMLProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dag: read catalog %s: %w", path, err)
	}
	return LoadTOML(string(data))
}

// LoadTOML parses a workload catalog from a TOML document string.
func LoadTOML(doc string) (*TOMLProvider, error) {
	var parsed tomlDocument
	if _, err := toml.Decode(doc, &parsed); err != nil {
		return nil, fmt.Errorf("dag: parse catalog: %w", err)
	}

	capacities := make(simcore.ResourceTable, len(parsed.Capacities))
	for name, v := range parsed.Capacities {
		kind, ok := simcore.ParseResourceKind(name)
		if !ok {
			return nil, &simcore.InvalidConfigError{Reason: "unknown resource kind " + name + " in [capacities]"}
		}
		capacities[kind] = v
	}
	if err := capacities.Validate(); err != nil {
		return nil, err
	}

	static := NewStaticProvider()
	for name, t := range parsed.Templates {
		tmpl := make(simcore.ToolTemplate, len(t.Loads))
		for resName, v := range t.Loads {
			kind, ok := simcore.ParseResourceKind(resName)
			if !ok {
				return nil, &simcore.InvalidConfigError{Reason: "unknown resource kind " + resName + " in template " + name}
			}
			tmpl[kind] = v
		}
		if err := static.AddTemplate(name, tmpl); err != nil {
			return nil, err
		}
	}

	for reqType, reqDAG := range parsed.Requests {
		spec := simcore.DAGSpec{
			NodeTemplate: make(map[string]string, len(reqDAG.Nodes)),
			Predecessors: make(map[string][]string, len(reqDAG.Nodes)),
		}
		for nodeName, node := range reqDAG.Nodes {
			spec.NodeTemplate[nodeName] = node.Template
			if len(node.Predecessors) > 0 {
				spec.Predecessors[nodeName] = node.Predecessors
			}
		}
		static.AddDAG(reqType, spec)
	}

	// Validate every DAG now, against the templates just loaded, so a bad
	// catalog is rejected at load time rather than mid-run.
	for reqType, spec := range static.dags {
		if err := simcore.ValidateDAG(spec, static); err != nil {
			return nil, fmt.Errorf("dag: request type %q: %w", reqType, err)
		}
	}

	return &TOMLProvider{capacities: capacities, static: static}, nil
}

// Capacities returns the resource capacity table parsed from the catalog's
// [capacities] table.
func (p *TOMLProvider) Capacities() simcore.ResourceTable { return p.capacities }

// Template implements simcore.TemplateProvider.
func (p *TOMLProvider) Template(name string) (simcore.ToolTemplate, error) {
	return p.static.Template(name)
}

// DAG implements simcore.DAGProvider.
func (p *TOMLProvider) DAG(requestType string) (simcore.DAGSpec, error) {
	return p.static.DAG(requestType)
}
