// Package queue delivers mail asynchronously through River, a Postgres
// backed job queue.
//
// Enqueue stores a draft of the message. The view, if any, is rendered by
// the worker just before delivery, so rendering still happens at send time.
// Render failures cancel the job; transport failures are retried with
// River's backoff. Accepted deliveries are written to the mail_deliveries
// table, which WithRetention prunes on a cron schedule.
//
// # Setup
//
//	pool, err := db.Connect(ctx, dbCfg)
//	if err != nil {
//		return err
//	}
//	if err := queue.Migrate(ctx, pool, dbCfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
//	q, err := queue.New(pool, m,
//		queue.WithLogger(log),
//		queue.WithRetention("0 3 * * *", 30*24*time.Hour),
//	)
//	if err != nil {
//		return err
//	}
//
//	app := mailkit.New(
//		mailkit.WithMail(m, cfg.Auto),
//		mailkit.WithMailQueue(q),
//	)
//
// # Enqueueing
//
//	msg := m.Make().To(user.Email).Subject("Reset your password").
//		View("reset.md", map[string]any{"Token": token})
//
//	_, err := q.Enqueue(ctx, msg,
//		queue.Unique(user.ID, time.Hour),
//		queue.MaxAttempts(5),
//	)
//
// View data is stored as JSON and reaches the renderer as generic JSON
// values (maps, slices, strings, float64).
package queue
