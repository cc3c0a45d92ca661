package adders

import (
	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/dynamic"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

func modelTable(name string, models []string) adder.TableSpec {
	return adder.TableSpec{Name: name, Columns: []adder.ColumnSpec{
		id("static_id"),
		optional("dynamic_model_id", table.String),
		required("parameter_set_id", table.String),
		{Name: adder.ModelNameColumn, Kind: table.String, Required: true, EnumValues: models},
	}}
}

// model returns a build function for one model variant. The model resolves
// when exists finds its static element in the network.
func model(category, lib string, exists func(n *network.Network, id string) bool) adder.BuildFunc[*network.Network, dynamic.Model] {
	return func(r *adder.Row) (adder.Deferred[*network.Network, dynamic.Model], error) {
		m := dynamic.Model{Category: category, StaticID: r.ID, DynamicModelID: r.ID, Lib: lib}
		r.Primary().ApplyString("dynamic_model_id", func(v string) { m.DynamicModelID = v })
		r.Primary().ApplyString("parameter_set_id", func(v string) { m.ParameterSetID = v })
		return func(n *network.Network) (dynamic.Model, bool) {
			if !exists(n, m.StaticID) {
				return dynamic.Model{}, false
			}
			return m, true
		}, nil
	}
}

func generatorExists(n *network.Network, id string) bool {
	_, ok := n.Generator(id)
	return ok
}

func loadExists(n *network.Network, id string) bool {
	_, ok := n.Load(id)
	return ok
}

var generatorModels = adder.Variants[*network.Network, dynamic.Model]{
	Models: map[string]adder.BuildFunc[*network.Network, dynamic.Model]{
		"GeneratorSynchronousFourWindings":  model("generator_models", "GeneratorSynchronousFourWindings", generatorExists),
		"GeneratorSynchronousThreeWindings": model("generator_models", "GeneratorSynchronousThreeWindings", generatorExists),
		"GeneratorFictitious":               model("generator_models", "GeneratorFictitious", generatorExists),
	},
}

var loadModels = adder.Variants[*network.Network, dynamic.Model]{
	Models: map[string]adder.BuildFunc[*network.Network, dynamic.Model]{
		"LoadAlphaBeta":      model("load_models", "LoadAlphaBeta", loadExists),
		"LoadOneTransformer": model("load_models", "LoadOneTransformer", loadExists),
	},
}

// GeneratorModels declares dynamic generator models selected by model_name.
var GeneratorModels = &adder.Definition[*network.Network, dynamic.Model]{
	Category: "generator_models",
	Tables:   []adder.TableSpec{modelTable("generator_models", generatorModels.Names())},
	Build:    generatorModels.Build,
}

// LoadModels declares dynamic load models selected by model_name.
var LoadModels = &adder.Definition[*network.Network, dynamic.Model]{
	Category: "load_models",
	Tables:   []adder.TableSpec{modelTable("load_models", loadModels.Names())},
	Build:    loadModels.Build,
}
