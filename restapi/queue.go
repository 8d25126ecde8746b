package restapi

// PendingQueue buffers requests made before their application is bound. The nil
// key holds requests made with no application at all.
type PendingQueue struct {
	buckets map[*App][]Request
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{buckets: make(map[*App][]Request)}
}

// Enqueue appends req to app's bucket.
func (q *PendingQueue) Enqueue(app *App, req Request) {
	q.buckets[app] = append(q.buckets[app], req)
}

// Drain removes and returns the requests queued for app followed by those queued
// with no application.
func (q *PendingQueue) Drain(app *App) []Request {
	var out []Request
	if app != nil {
		out = append(out, q.buckets[app]...)
	}
	out = append(out, q.buckets[nil]...)
	delete(q.buckets, app)
	delete(q.buckets, nil)
	return out
}

// Len returns the number of requests queued under app.
func (q *PendingQueue) Len(app *App) int {
	return len(q.buckets[app])
}
