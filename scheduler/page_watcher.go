package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mihai888nextlab/ecotag/extractor"
	"github.com/mihai888nextlab/ecotag/models"
	"github.com/mihai888nextlab/ecotag/repository"
)

// Extractor runs a one-shot extraction pass against a URL.
type Extractor interface {
	ExtractOnce(url string) (*models.ProductRecord, error)
}

// PageWatcher periodically re-extracts every watched page and pushes a
// product update when the fingerprint changed since the last pass.
type PageWatcher struct {
	cron      *cron.Cron
	spec      string
	watchRepo *repository.WatchRepository
	engine    Extractor
	notifier  extractor.Notifier
}

func NewPageWatcher(spec string, watchRepo *repository.WatchRepository, engine Extractor, notifier extractor.Notifier) *PageWatcher {
	return &PageWatcher{
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		watchRepo: watchRepo,
		engine:    engine,
		notifier:  notifier,
	}
}

// Start starts the scheduled page sweep
func (pw *PageWatcher) Start() {
	_, err := pw.cron.AddFunc(pw.spec, pw.checkAllPages)
	if err != nil {
		log.Printf("Failed to schedule page watcher: %v", err)
		return
	}

	// Also run immediately on startup
	go pw.checkAllPages()

	pw.cron.Start()
	log.Printf("Page watcher scheduled with spec %q", pw.spec)
}

// Stop stops the scheduled page sweep
func (pw *PageWatcher) Stop() {
	if pw.cron != nil {
		pw.cron.Stop()
	}
}

// checkAllPages re-extracts every active watched page
func (pw *PageWatcher) checkAllPages() {
	log.Println("Starting scheduled check for all watched pages")

	watches, err := pw.watchRepo.GetWatchedPages()
	if err != nil {
		log.Printf("Failed to get watched pages: %v", err)
		return
	}

	if len(watches) == 0 {
		log.Println("No pages to check")
		return
	}

	log.Printf("Checking %d watched pages", len(watches))

	for _, watch := range watches {
		go pw.checkPage(watch)
	}
}

// checkPage runs one extraction pass for a watched page
func (pw *PageWatcher) checkPage(watch models.WatchedPage) {
	log.Printf("Checking watched page: %s", watch.URL)

	product, err := pw.engine.ExtractOnce(watch.URL)
	if err != nil {
		log.Printf("Failed to extract %s: %v", watch.URL, err)
		return
	}
	if product == nil {
		log.Printf("No product found on %s", watch.URL)
		return
	}

	fingerprint := product.Fingerprint()
	if watch.HasResult() && watch.LastFingerprint.String == fingerprint {
		if err := pw.watchRepo.TouchWatch(watch.ID); err != nil {
			log.Printf("Failed to record check for %s: %v", watch.URL, err)
		}
		return
	}

	log.Printf("Watched page changed: %s (title=%q)", watch.URL, product.Title)
	if pw.notifier != nil {
		pw.notifier.ProductUpdated(product)
	}
	if err := pw.watchRepo.UpdateWatchResult(watch.ID, product); err != nil {
		log.Printf("Failed to store result for %s: %v", watch.URL, err)
	}
}
