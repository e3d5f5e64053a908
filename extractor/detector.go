package extractor

import (
	"sync"
	"time"

	"github.com/mihai888nextlab/ecotag/models"
)

// Notifier receives the proactive product-update pushes. Implementations
// must be best-effort: a missing listener is their problem to swallow.
type Notifier interface {
	ProductUpdated(product *models.ProductRecord)
}

type nopNotifier struct{}

func (nopNotifier) ProductUpdated(*models.ProductRecord) {}

// Detector decides when a page change is worth announcing. It wraps an
// extraction pass with a dedupe fingerprint and a single-slot debounce
// timer: navigation events emit immediately (forced) and arm the timer for
// subsequent settling, mutation events only arm/refresh the timer. Arming
// cancels any previously scheduled pass, so bursts coalesce into one
// re-extraction after a quiet period.
type Detector struct {
	extract  func() (*models.ProductRecord, error)
	notifier Notifier
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	lastSent string
	hasSent  bool
}

func NewDetector(extract func() (*models.ProductRecord, error), notifier Notifier, debounce time.Duration) *Detector {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Detector{
		extract:  extract,
		notifier: notifier,
		debounce: debounce,
	}
}

// OnLoad requests the initial emission.
func (d *Detector) OnLoad() {
	d.emit(false)
}

// OnNavigation handles a history mutation or hash/pop navigation: one forced
// emission now, plus a debounced pass for the DOM updates that follow.
func (d *Detector) OnNavigation() {
	d.emit(true)
	d.arm()
}

// OnMutation handles an observed content mutation.
func (d *Detector) OnMutation() {
	d.arm()
}

// Stop cancels any pending debounced pass.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Detector) arm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, func() {
		d.emit(false)
	})
}

// emit re-runs the extraction and forwards the record when its fingerprint
// differs from the last one sent, or unconditionally when forced. Extraction
// errors are swallowed; the detector must never crash the host page.
func (d *Detector) emit(force bool) {
	record, err := d.extract()
	if err != nil || record == nil {
		return
	}
	key := record.Fingerprint()

	d.mu.Lock()
	changed := !d.hasSent || key != d.lastSent
	if changed || force {
		d.lastSent = key
		d.hasSent = true
	} else {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.notifier.ProductUpdated(record)
}
