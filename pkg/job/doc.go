// Package job runs background tasks on River, a PostgreSQL-backed queue.
//
// Tasks are registered by structural typing: any value with Name and
// Handle(ctx, P) methods becomes a task whose JSON payload decodes into P.
// Scheduled tasks also carry a five-field cron expression.
//
//	m, err := job.NewManager(pool,
//		job.WithLogger(log),
//		job.WithTask[tasks.VerifyDomainPayload](verifyTask),
//		job.WithScheduledTask(recheckTask),
//	)
//	_ = m.Enqueue(ctx, tasks.VerifyDomainName, tasks.VerifyDomainPayload{DomainID: id},
//		job.ScheduledIn(5*time.Minute),
//		job.Unique(id, 10*time.Minute),
//	)
//
// Every task shares one River job kind; the task name travels in the job
// arguments and picks the handler at execution time.
package job
