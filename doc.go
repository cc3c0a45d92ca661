// Package gridframe moves power-network data between columnar tables and a
// typed grid model.
//
// Three pieces cooperate:
//   - mappers expose each network element type as a table that can be
//     produced from a network and applied back to it (package mapper);
//   - adders create network elements, extensions and dynamic models from a
//     primary table plus secondary tables joined on an identifier
//     (package adder);
//   - the native layer copies tables and result structs into C-owned arrays
//     and back, for callers on the other side of a foreign call boundary
//     (package native, cmd/libgridframe).
//
// A Registry ties them together. It is built once at startup from an explicit
// Config and is immutable afterwards.
//
// # Quick Start
//
//	reg, err := gridframe.NewRegistry(gridframe.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	net := network.New("demo")
//	n, err := reg.AddElements(net, "buses", []*table.UpdatingTable{busTable})
//
//	err = reg.Produce(net, mappers.Buses, mapper.DefaultAttributes,
//	    func(s *table.Series) error {
//	        fmt.Println(s.Name(), s.Len())
//	        return nil
//	    })
//
// # Memory Management
//
// Arrow uses manual reference counting. Callers MUST call Release() on:
//   - Series returned by ProduceAll
//   - Updating tables built from records or IPC streams
//
// Series handed to a Produce callback are released when the callback
// returns; Retain them to keep them longer.
package gridframe
