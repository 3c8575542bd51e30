// Package dispatch provides a goroutine-affine message dispatcher: a single
// owning goroutine runs a loop over a time-ordered queue while any number of
// other goroutines hand it work.
//
// # Ownership
//
// The goroutine that calls Run becomes the dispatcher's owner for the rest of
// its life. Start does the same on a dedicated goroutine. Handlers and posted
// callbacks only ever execute on the owner, which makes the dispatcher the
// hand-off point between background workers and a thread-affine consumer
// such as a UI.
//
// # Failure containment
//
// Handler errors and panics are recovered, wrapped in a *HandlerFailure, and
// delivered to the error sink. They never stop the loop.
//
// # Usage
//
//	d := dispatch.New(dispatch.HandlerFunc(func(ctx context.Context, payload any) error {
//	    fmt.Println("got", payload)
//	    return nil
//	}))
//
//	go func() {
//	    _ = d.Enqueue("done", 0)
//	    _ = d.Post(func() { d.Quit(true) }, 50*time.Millisecond)
//	}()
//
//	if err := d.Run(ctx); err != nil {
//	    // ctx was cancelled or the dispatcher was already used
//	}
package dispatch
