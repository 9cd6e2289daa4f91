// Package vigil simulates an asynchronous video-translation backend and
// provides adaptive polling strategies for discovering job completion
// without a push mechanism.
//
// Vigil is designed as a library, not a service. The server side is a job
// store that assigns each job a randomized duration and outcome at creation
// and derives its status lazily on every read. The client side is a polling
// loop driven by a pluggable interval strategy: exponential backoff when
// nothing is known about the job, or predictive scheduling that tightens
// the interval as an expected completion time approaches.
//
// # Quick Start
//
//	s := memory.New()
//	j, _ := s.CreateJob(ctx, "video-42", vigil.DefaultConfig())
//
//	loop, _ := poll.New(s.JobStatus, schedule.NewExponential(time.Second, 8*time.Second))
//	res, err := loop.Watch(ctx, j.ID)
//
// # Architecture
//
// Each concern lives in its own package: job (model and store contract),
// store/memory (the simulation backend), schedule (interval strategies),
// poll (the loop), middleware (decoration of the status-check capability),
// client (HTTP client), api (HTTP surface).
package vigil
