package main

/*
#include "gridframe.h"
*/
import "C"

import (
	"log/slog"
	"runtime/cgo"
	"unsafe"

	"github.com/hugr-lab/gridframe"
	"github.com/hugr-lab/gridframe/dynamic"
	"github.com/hugr-lab/gridframe/geometry"
	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/mappers"
	"github.com/hugr-lab/gridframe/native"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

func errOut(e *C.gf_error) *native.ErrorInfo { return (*native.ErrorInfo)(unsafe.Pointer(e)) }

func arrayOf(a *C.gf_array) native.Array {
	if a == nil {
		return native.Array{}
	}
	return *(*native.Array)(unsafe.Pointer(a))
}

func setArray(out *C.gf_array, a native.Array) {
	*(*native.Array)(unsafe.Pointer(out)) = a
}

func guard(logger *slog.Logger, op string, cerr *C.gf_error, fn func() error) bool {
	return native.Guard(heap, logger, op, errOut(cerr), func() error {
		return boundary(fn())
	})
}

// withRegistry runs fn under guard with the registry behind h, logging with
// the registry logger.
func withRegistry(h C.gf_handle, op string, cerr *C.gf_error, fn func(r *gridframe.Registry) error) bool {
	r, err := registryOf(h)
	if err != nil {
		return guard(nil, op, cerr, func() error { return err })
	}
	return guard(r.Logger(), op, cerr, func() error { return fn(r) })
}

func registryOf(h C.gf_handle) (*gridframe.Registry, error) {
	return handleValue[*gridframe.Registry](uintptr(h), "registry")
}

func networkOf(h C.gf_handle) (*network.Network, error) {
	return handleValue[*network.Network](uintptr(h), "network")
}

func filterOf(attributes *C.gf_array, all C.int) mapper.Filter {
	switch {
	case all != 0:
		return mapper.AllAttributes
	case attributes == nil:
		return mapper.DefaultAttributes
	}
	return mapper.Attributes(native.GoStrings(arrayOf(attributes))...)
}

func releaseTables(tables []*table.UpdatingTable) {
	for _, t := range tables {
		t.Release()
	}
}

//export gf_clear_error
func gf_clear_error(cerr *C.gf_error) {
	native.ClearError(heap, errOut(cerr))
}

//export gf_registry_new
func gf_registry_new(provider *C.char, compression, debug C.int, cerr *C.gf_error) C.gf_handle {
	var h C.gf_handle
	guard(nil, "gf_registry_new", cerr, func() error {
		config := gridframe.Config{Compression: compression != 0}
		if provider != nil {
			config.DefaultProvider = C.GoString(provider)
		}
		if debug != 0 {
			level := slog.LevelDebug
			config.LogLevel = &level
		}
		reg, err := gridframe.NewRegistry(config)
		if err != nil {
			return err
		}
		h = C.gf_handle(cgo.NewHandle(reg))
		return nil
	})
	return h
}

//export gf_registry_free
func gf_registry_free(reg C.gf_handle, cerr *C.gf_error) {
	guard(nil, "gf_registry_free", cerr, func() error {
		r, err := registryOf(reg)
		if err != nil {
			return err
		}
		if err := r.Close(); err != nil {
			return err
		}
		return deleteHandle(uintptr(reg), "registry")
	})
}

//export gf_get_default_provider
func gf_get_default_provider(reg C.gf_handle, cerr *C.gf_error) *C.char {
	var out *byte
	withRegistry(reg, "gf_get_default_provider", cerr, func(r *gridframe.Registry) error {
		out = native.AllocString(heap, r.DefaultProvider())
		return nil
	})
	return (*C.char)(unsafe.Pointer(out))
}

//export gf_free_string
func gf_free_string(s *C.char, cerr *C.gf_error) {
	guard(nil, "gf_free_string", cerr, func() error {
		return native.FreeString(heap, (*byte)(unsafe.Pointer(s)))
	})
}

//export gf_network_new
func gf_network_new(id *C.char, cerr *C.gf_error) C.gf_handle {
	var h C.gf_handle
	guard(nil, "gf_network_new", cerr, func() error {
		h = C.gf_handle(cgo.NewHandle(network.New(C.GoString(id))))
		return nil
	})
	return h
}

//export gf_network_free
func gf_network_free(net C.gf_handle, cerr *C.gf_error) {
	guard(nil, "gf_network_free", cerr, func() error {
		if _, err := networkOf(net); err != nil {
			return err
		}
		return deleteHandle(uintptr(net), "network")
	})
}

//export gf_supplier_new
func gf_supplier_new(cerr *C.gf_error) C.gf_handle {
	var h C.gf_handle
	guard(nil, "gf_supplier_new", cerr, func() error {
		h = C.gf_handle(cgo.NewHandle(dynamic.NewSupplier()))
		return nil
	})
	return h
}

//export gf_supplier_free
func gf_supplier_free(supplier C.gf_handle, cerr *C.gf_error) {
	guard(nil, "gf_supplier_free", cerr, func() error {
		if _, err := handleValue[*dynamic.Supplier](uintptr(supplier), "supplier"); err != nil {
			return err
		}
		return deleteHandle(uintptr(supplier), "supplier")
	})
}

// gf_supplier_resolve returns the static ids of the models that resolve
// against net, as a string array.
//
//export gf_supplier_resolve
func gf_supplier_resolve(supplier, net C.gf_handle, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(guard(nil, "gf_supplier_resolve", cerr, func() error {
		if err := requireOut(unsafe.Pointer(out), "ids"); err != nil {
			return err
		}
		s, err := handleValue[*dynamic.Supplier](uintptr(supplier), "supplier")
		if err != nil {
			return err
		}
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		models := s.Get(n)
		ids := make([]string, len(models))
		for i, m := range models {
			ids[i] = m.StaticID
		}
		setArray(out, native.AllocStringArray(heap, ids))
		return nil
	}))
}

//export gf_get_categories
func gf_get_categories(reg C.gf_handle, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_get_categories", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "categories"); err != nil {
			return err
		}
		setArray(out, native.AllocStringArray(heap, r.Categories()))
		return nil
	}))
}

//export gf_get_element_types
func gf_get_element_types(reg C.gf_handle, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_get_element_types", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "element types"); err != nil {
			return err
		}
		types := r.ElementTypes()
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		setArray(out, native.AllocStringArray(heap, names))
		return nil
	}))
}

//export gf_free_string_array
func gf_free_string_array(arr *C.gf_array, cerr *C.gf_error) {
	guard(nil, "gf_free_string_array", cerr, func() error {
		return native.FreeStringArray(heap, arrayOf(arr))
	})
}

// gf_get_category_schemas returns the MessagePack schema document of a
// category. Release it with gf_free_bytes.
//
//export gf_get_category_schemas
func gf_get_category_schemas(reg C.gf_handle, category *C.char, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_get_category_schemas", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "schemas"); err != nil {
			return err
		}
		data, err := r.EncodeSchemas(C.GoString(category))
		if err != nil {
			return err
		}
		setArray(out, native.AllocBytes(heap, data))
		return nil
	}))
}

//export gf_free_bytes
func gf_free_bytes(arr *C.gf_array, cerr *C.gf_error) {
	guard(nil, "gf_free_bytes", cerr, func() error {
		return native.FreeBytes(heap, arrayOf(arr))
	})
}

// gf_add_elements creates elements of category from an array of gf_table,
// primary table first. Returns the number of elements added. Rejected tables
// and id conflicts leave the network unchanged and return -1.
//
//export gf_add_elements
func gf_add_elements(reg, net C.gf_handle, category *C.char, tables *C.gf_array, cerr *C.gf_error) C.int64_t {
	added := -1
	withRegistry(reg, "gf_add_elements", cerr, func(r *gridframe.Registry) error {
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		in, err := native.ImportTables(arrayOf(tables), r.Allocator())
		if err != nil {
			return err
		}
		defer releaseTables(in)
		k, err := r.AddElements(n, C.GoString(category), in)
		added = appliedCount(k, err)
		return err
	})
	return C.int64_t(added)
}

// gf_add_dynamic_models declares the models of category in supplier.
// Returns the number of models declared, -1 on error.
//
//export gf_add_dynamic_models
func gf_add_dynamic_models(reg, supplier C.gf_handle, category *C.char, tables *C.gf_array, cerr *C.gf_error) C.int64_t {
	added := -1
	withRegistry(reg, "gf_add_dynamic_models", cerr, func(r *gridframe.Registry) error {
		s, err := handleValue[*dynamic.Supplier](uintptr(supplier), "supplier")
		if err != nil {
			return err
		}
		in, err := native.ImportTables(arrayOf(tables), r.Allocator())
		if err != nil {
			return err
		}
		defer releaseTables(in)
		k, err := r.AddDynamicModels(s, C.GoString(category), in)
		if err != nil {
			return err
		}
		added = k
		return nil
	})
	return C.int64_t(added)
}

// gf_create_series_array produces the columns of an element type as an array
// of gf_series. attributes is an optional string array; all selects every
// column. Release it with gf_free_series_array.
//
//export gf_create_series_array
func gf_create_series_array(reg, net C.gf_handle, elementType *C.char, attributes *C.gf_array, all C.int, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_create_series_array", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "series"); err != nil {
			return err
		}
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		t, filter := mappers.ElementType(C.GoString(elementType)), filterOf(attributes, all)
		arr, err := native.CollectSeries(heap, func(emit func(*table.Series) error) error {
			return r.Produce(n, t, filter, emit)
		})
		if err != nil {
			return err
		}
		setArray(out, arr)
		return nil
	}))
}

//export gf_free_series_array
func gf_free_series_array(arr *C.gf_array, cerr *C.gf_error) {
	guard(nil, "gf_free_series_array", cerr, func() error {
		return native.FreeSeriesArray(heap, arrayOf(arr))
	})
}

// gf_update_elements applies a gf_table to the elements of a type. Returns
// the number of matched rows. On error it returns -1 when nothing was
// applied, otherwise the number of rows applied before the failing one.
//
//export gf_update_elements
func gf_update_elements(reg, net C.gf_handle, elementType *C.char, tbl *C.gf_table, cerr *C.gf_error) C.int64_t {
	updated := -1
	withRegistry(reg, "gf_update_elements", cerr, func(r *gridframe.Registry) error {
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		in, err := native.ImportTable((*native.Table)(unsafe.Pointer(tbl)), r.Allocator())
		if err != nil {
			return err
		}
		defer in.Release()
		k, err := r.Update(n, mappers.ElementType(C.GoString(elementType)), in)
		updated = appliedCount(k, err)
		return err
	})
	return C.int64_t(updated)
}

// gf_create_ipc produces the columns of an element type as an Arrow IPC
// stream, zstd compressed when the registry was created with compression.
// Release it with gf_free_bytes.
//
//export gf_create_ipc
func gf_create_ipc(reg, net C.gf_handle, elementType *C.char, attributes *C.gf_array, all C.int, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_create_ipc", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "stream"); err != nil {
			return err
		}
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		data, err := r.ProduceIPC(n, mappers.ElementType(C.GoString(elementType)), filterOf(attributes, all))
		if err != nil {
			return err
		}
		setArray(out, native.AllocBytes(heap, data))
		return nil
	}))
}

// gf_update_elements_ipc applies an Arrow IPC stream (byte array) to the
// elements of a type. Returns the number of matched rows, with the same error
// contract as gf_update_elements.
//
//export gf_update_elements_ipc
func gf_update_elements_ipc(reg, net C.gf_handle, elementType *C.char, data *C.gf_array, cerr *C.gf_error) C.int64_t {
	updated := -1
	withRegistry(reg, "gf_update_elements_ipc", cerr, func(r *gridframe.Registry) error {
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		k, err := r.UpdateIPC(n, mappers.ElementType(C.GoString(elementType)), native.View[byte](arrayOf(data)))
		updated = appliedCount(k, err)
		return err
	})
	return C.int64_t(updated)
}

// gf_create_geometry_ipc produces a geometry layer ("substations", "lines")
// as a GeoArrow IPC stream. Release it with gf_free_bytes.
//
//export gf_create_geometry_ipc
func gf_create_geometry_ipc(reg, net C.gf_handle, layer *C.char, out *C.gf_array, cerr *C.gf_error) C.int {
	return boolInt(withRegistry(reg, "gf_create_geometry_ipc", cerr, func(r *gridframe.Registry) error {
		if err := requireOut(unsafe.Pointer(out), "stream"); err != nil {
			return err
		}
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		data, err := r.ProduceGeometry(n, geometry.Layer(C.GoString(layer)))
		if err != nil {
			return err
		}
		setArray(out, native.AllocBytes(heap, data))
		return nil
	}))
}

// gf_update_geometry_ipc applies a GeoArrow IPC stream to a geometry layer.
// Returns the number of elements updated, -1 on error.
//
//export gf_update_geometry_ipc
func gf_update_geometry_ipc(reg, net C.gf_handle, layer *C.char, data *C.gf_array, cerr *C.gf_error) C.int64_t {
	updated := -1
	withRegistry(reg, "gf_update_geometry_ipc", cerr, func(r *gridframe.Registry) error {
		n, err := networkOf(net)
		if err != nil {
			return err
		}
		k, err := r.UpdateGeometry(n, geometry.Layer(C.GoString(layer)), native.View[byte](arrayOf(data)))
		if err != nil {
			return err
		}
		updated = k
		return nil
	})
	return C.int64_t(updated)
}

func boolInt(ok bool) C.int {
	if ok {
		return 1
	}
	return 0
}
