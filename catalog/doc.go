// Package catalog holds the declarative operation descriptors of an API and
// validates them into an immutable Table.
//
// A catalog is plain data: it can be written as Go literals or loaded from YAML.
//
//	api: items
//	operations:
//	  - key: GetItem
//	    method: GET
//	    path: /items/{id}
//	    params:
//	      - {name: id, in: path}
//	    parser: json
//	    fallback: null-on-not-found
//
// Strategy references (binder, parser, fallback, filters, paging parser) are names
// resolved against the strategies registered with the engine. Every reference and
// every path placeholder is checked once, when the Table is built.
package catalog
