// Package engine composes and runs API clients.
//
// A Builder resolves the property bag for an API, optionally hosted by a
// provider, validates the API's operation catalog against the registered
// strategies and wires a Context: request builder, dispatcher, executors and
// credential store. Modules adjust the wiring before anything is created.
//
//	ctx, err := engine.ForProvider(provider).
//		Credentials("bob", "s3cret").
//		Modules(engine.SingleThreadedModule()).
//		Build(context.Background())
//	if err != nil {
//		return err
//	}
//	defer ctx.Close(context.Background())
//
//	item, err := engine.Call[Item](context.Background(), ctx, "getItem", rest.Args{"id": "42"})
//
// Every configuration problem surfaces from Build. A Context must be closed;
// using it afterwards fails with an already-closed error.
package engine
