// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/apex/log"
)

// maxSchemaDepth limits the depth of schema walking to prevent infinite
// recursion.
const maxSchemaDepth = 1

// DumpSchema writes a sorted list of attribute paths for the provided type
// to the provided writer. If w is nil, os.Stdout is used. The SDK describe
// types carry no field tags, so paths are built from the exported field names,
// which match the keys of the describe JSON.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Host level attributes that are directly available to the --attrs flag.
For the complete document, including tags and region metadata, use
--output=raw and drill with dotted paths.`)
	fmt.Fprintln(w, "")

	paths := dumpSchemaWalker(prefix, typ, 0)
	if len(paths) == 0 {
		log.Debugf("No fields found for type: %s", typ.Name())
		return
	}

	sort.Strings(paths)

	for _, path := range paths {
		fmt.Fprintln(w, path)
	}

}

// dumpSchemaWalker recursively walks a struct type discovering exported
// fields. Pointers and slices are dereferenced to their element type, and
// time.Time is treated as a leaf.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []string {
	paths := make([]string, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// Skip unexported fields, notably the SDK's noSmithyDocumentSerde.
		if field.PkgPath != "" {
			continue
		}

		log.Debugf("field: %s, type: %s in %s", field.Name, field.Type, typ.Name())

		name := field.Name
		if holder != "" {
			name = fmt.Sprintf("%s.%s", holder, field.Name)
		}

		paths = append(paths, name)

		if depth >= maxSchemaDepth {
			continue
		}

		// Unwrap pointer and slice wrappers down to the element type.
		ft := field.Type
		for ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}

		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) {
			paths = append(paths, dumpSchemaWalker(name, ft, depth+1)...)
		}
	}

	return paths
}
