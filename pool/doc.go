// Package pool provides a generic bounded pool of reusable resources.
//
// Resources are created lazily by a caller-supplied factory, up to
// MaxResources live at once. Acquire returns a scoped handle whose Release
// is idempotent and safe to defer; MarkInvalid discards a broken resource
// so the pool replaces it on the next demand.
//
//	p, err := pool.New(pool.Config[*sql.Conn]{
//	    MaxResources:   5,
//	    AcquireTimeout: time.Second,
//	    Factory:        openConn,
//	    Close:          func(c *sql.Conn) error { return c.Close() },
//	})
//
//	res, err := p.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer res.Release()
//	use(res.Value)
package pool
