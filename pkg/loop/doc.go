// Package loop provides a single-threaded cooperative task loop.
//
// A [Loop] owns one goroutine that executes tasks one at a time. Two queues
// feed it:
//
//   - the normal queue ([Loop.Post], [Loop.Do]) runs in FIFO order;
//   - the transition queue ([Loop.Defer]) holds keyed, deprioritized tasks
//     that run only when the normal queue is empty. Scheduling a new task
//     under an existing key replaces the pending one; [Loop.Cancel] drops it.
//
// Asynchronous work is started with [Go]: the fetch function runs on its own
// goroutine and its result is delivered back to the loop as a normal task.
//
//	l := loop.New(loop.WithLogger(log))
//	go l.Run(ctx)
//	defer l.Close()
//
//	_ = loop.Go(l, client.Fetch, func(v Result, err error) {
//	    // runs on the loop goroutine
//	})
//
// [Loop.Idle] waits until both queues are drained. [Loop.Settle] additionally
// waits for every operation started with [Go] to deliver its result, which
// makes it the natural barrier for tests.
//
// A panicking task is recovered, logged and reported to the handler set with
// [WithPanicHandler]; the loop keeps running.
package loop
