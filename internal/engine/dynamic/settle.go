package dynamic

import (
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

// networkAlmostIdle is Chrome's lifecycle event for "at most two connections
// open for 500ms", the quiescence point the crawler waits for.
const networkAlmostIdle = "networkAlmostIdle"

// settleWatcher follows lifecycle events of the main frame and signals once
// the document loaded by the current navigation reaches networkAlmostIdle.
type settleWatcher struct {
	frameID cdp.FrameID

	mu       sync.Mutex
	loaderID cdp.LoaderID
	idle     chan struct{}
	once     sync.Once
}

func newSettleWatcher(frameID cdp.FrameID) *settleWatcher {
	return &settleWatcher{
		frameID: frameID,
		idle:    make(chan struct{}),
	}
}

// handle is registered with chromedp.ListenTarget and must not block.
func (w *settleWatcher) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.FrameID != w.frameID {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch e.Name {
	case "init":
		// A new document committed; earlier idle events belong to the old one.
		w.loaderID = e.LoaderID
	case networkAlmostIdle:
		if w.loaderID != "" && e.LoaderID == w.loaderID {
			w.once.Do(func() { close(w.idle) })
		}
	}
}

// Idle is closed when the network has settled.
func (w *settleWatcher) Idle() <-chan struct{} {
	return w.idle
}
