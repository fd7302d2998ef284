// Package declfile reads tag schemas and program elements from a YAML
// declaration file, validates them and serves them as a schema loader and an
// element source.
//
// # File Overview
//
//	version: "1"
//	schemas:
//	  - name: com.acme.Service
//	    inherited: true
//	    attributes:
//	      - name: value
//	        type: string
//	        default: ""
//	      - name: name
//	        type: string
//	        default: ""
//	        aliases:
//	          - schema: com.acme.Component
//	            attribute: value
//	    meta:
//	      - schema: com.acme.Component
//	elements:
//	  - name: com.acme.OrderService
//	    kind: class
//	    superclass: com.acme.BaseService
//	    interfaces: [com.acme.Api]
//	    tags:
//	      - schema: com.acme.Service
//	        values: {name: orders}
//
// # Types
//
// Attribute types use the textual form of schema.ValueType: bool, int,
// float, string, type, enum(Name), tag(Schema) and the array form []T. An
// attribute without a default is required.
//
// # Values
//
// Literal values keep their YAML mapping order. Mappings become nested
// attribute sets, sequences become arrays and scalars keep their YAML type.
//
// # Name lookup
//
// Schemas and elements are found by their full name or by a dot-separated
// suffix of it, so "Service" and "acme.Service" both find
// "com.acme.Service".
package declfile
