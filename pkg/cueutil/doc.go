// SPDX-License-Identifier: MPL-2.0

// Package cueutil checks documents against embedded CUE schemas.
//
// A check compiles the schema, compiles the document (JSON is valid CUE),
// unifies the document with one schema definition and reports every
// violation with a JSON-path style location:
//
//	//go:embed manifest_schema.cue
//	var schema []byte
//
//	violations, err := cueutil.Check(schema, data, "#Manifest",
//	    cueutil.WithFilename("skill.spec.json"))
//	if err != nil {
//	    return err // the schema itself is broken
//	}
//	for _, v := range violations {
//	    fmt.Println(v.CUEPath, v.Message)
//	}
package cueutil
