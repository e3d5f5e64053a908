package extractor

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/google/uuid"

	"github.com/mihai888nextlab/ecotag/models"
)

// hookScript is installed once per document, before navigation. It wraps the
// history API, listens for pop/hash navigations and observes subtree
// mutations; every signal lands as a typed entry in an in-page queue that
// the Go side drains on a short interval.
const hookScript = `(() => {
	if (window.__ecotagHooked) return
	window.__ecotagHooked = true
	window.__ecotagEvents = []
	const push = (type) => { window.__ecotagEvents.push(type) }
	const origPush = history.pushState
	history.pushState = function () { origPush.apply(this, arguments); push('navigation') }
	const origReplace = history.replaceState
	history.replaceState = function () { origReplace.apply(this, arguments); push('navigation') }
	window.addEventListener('popstate', () => push('navigation'))
	window.addEventListener('hashchange', () => push('navigation'))
	try {
		const observer = new MutationObserver(() => push('mutation'))
		observer.observe(document.documentElement || document.body, { childList: true, subtree: true, attributes: false })
	} catch (e) {}
})()`

const drainScript = `() => {
	const q = window.__ecotagEvents || []
	window.__ecotagEvents = []
	return q
}`

// annotateScript stamps intrinsic image dimensions and zero-rect markers
// onto the DOM so the parsed snapshot can apply rendered-size heuristics.
var annotateScript = `() => {
	for (const img of document.querySelectorAll('img')) {
		if (img.naturalWidth) img.setAttribute('` + attrNaturalWidth + `', String(img.naturalWidth))
		if (img.naturalHeight) img.setAttribute('` + attrNaturalHeight + `', String(img.naturalHeight))
	}
	for (const el of document.querySelectorAll("` + priceHeuristicSelector + `")) {
		try {
			const rect = el.getBoundingClientRect()
			if (rect.width === 0 && rect.height === 0) el.setAttribute('` + attrHidden + `', '1')
			else el.removeAttribute('` + attrHidden + `')
		} catch (e) {}
	}
}`

// PageSession is the per-page engine handle exposed to callers. The live
// implementation drives a browser page; tests substitute a stub.
type PageSession interface {
	ID() string
	URL() string
	ExtractNow() (*models.ProductRecord, error)
	Close()
}

// Session hosts one engine instance on one live browser page: it captures
// snapshots for the assembler and feeds navigation/mutation signals into the
// change detector.
type Session struct {
	id        string
	url       string
	page      *rod.Page
	assembler *Assembler
	detector  *Detector
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession opens the URL in a fresh page, installs the change probes and
// starts the event pump. The initial extraction is emitted through the
// detector once the page has loaded.
func NewSession(browser *rod.Browser, pageURL string, notifier Notifier, debounce, pollEvery time.Duration) (*Session, error) {
	var page *rod.Page
	err := rod.Try(func() {
		page = browser.MustPage("")
		page.MustEvalOnNewDocument(hookScript)
		page.MustNavigate(pageURL)
		page.MustWaitLoad()
	})
	if err != nil {
		if page != nil {
			_ = rod.Try(func() { page.MustClose() })
		}
		return nil, fmt.Errorf("failed to open page %s: %v", pageURL, err)
	}

	s := &Session{
		id:        uuid.NewString(),
		url:       pageURL,
		page:      page,
		assembler: NewAssembler(),
		done:      make(chan struct{}),
	}
	s.detector = NewDetector(s.ExtractNow, notifier, debounce)

	go s.pump(pollEvery)
	s.detector.OnLoad()
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) URL() string {
	return s.url
}

// ExtractNow runs one synchronous extraction pass against the current page
// state. It does not touch the debounce queue.
func (s *Session) ExtractNow() (*models.ProductRecord, error) {
	snap, err := s.capture()
	if err != nil {
		return nil, err
	}
	return s.assembler.Build(snap)
}

// Close stops the event pump and releases the page.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.detector.Stop()
		_ = rod.Try(func() { s.page.MustClose() })
	})
}

// capture annotates the live DOM and parses it into a snapshot. Annotation
// is best-effort; a page mid-navigation simply fails the pass.
func (s *Session) capture() (*Snapshot, error) {
	_ = rod.Try(func() { s.page.MustEval(annotateScript) })

	var html, pageURL string
	err := rod.Try(func() {
		html = s.page.MustHTML()
		pageURL = s.page.MustInfo().URL
	})
	if err != nil {
		return nil, fmt.Errorf("page not readable: %v", err)
	}
	return NewSnapshot(html, pageURL)
}

// pump drains the in-page event queue and forwards each signal to the
// detector. Drain failures are ignored; the next tick retries.
func (s *Session) pump(pollEvery time.Duration) {
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, ev := range s.drainEvents() {
				switch ev {
				case "navigation":
					s.detector.OnNavigation()
				case "mutation":
					s.detector.OnMutation()
				}
			}
		}
	}
}

func (s *Session) drainEvents() []string {
	var events []string
	err := rod.Try(func() {
		res := s.page.MustEval(drainScript)
		for _, v := range res.Arr() {
			events = append(events, v.Str())
		}
	})
	if err != nil {
		return nil
	}
	return events
}
