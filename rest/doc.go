// Package rest turns operation descriptors and call arguments into requests.
//
// Builder.Build places every argument where its parameter declares it (path,
// query, header, form, payload or endpoint), merges static headers and query
// values, runs the payload Binder and finally applies the request Filters in
// order. Filters never modify their input; each returns a new request.
package rest
