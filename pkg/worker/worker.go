package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfscan/shelfscan/pkg/books"
	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/models"
	"github.com/shelfscan/shelfscan/pkg/scans"
	"github.com/uptrace/bun"
)

var processID = randStringBytes(8)

// Worker periodically picks up stub books whose metadata lookup failed at
// scan time and retries the enrichment in the background.
type Worker struct {
	config *config.Config
	log    logger.Logger

	bookService *books.Service
	scanService *scans.Service

	queue          chan *models.Book
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB, scanService *scans.Service) *Worker {
	return &Worker{
		config: cfg,
		log:    logger.New(),

		bookService: books.NewService(db),
		scanService: scanService,

		queue:          make(chan *models.Book, cfg.Policy.EnrichBatchSize),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, cfg.WorkerProcesses),
	}
}

func (w *Worker) Start() {
	go w.fetchStubs()
	for i := 0; i < w.config.WorkerProcesses; i++ {
		go w.processStubs()
	}
}

func (w *Worker) fetchStubs() {
	duration := w.config.Policy.EnrichRetryInterval
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop queueing more stubs.
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			enriched := false
			limit := w.config.Policy.EnrichBatchSize
			stubs, err := w.bookService.ListBooks(context.Background(), books.ListBooksOptions{
				Limit:    &limit,
				Enriched: &enriched,
			})
			if err != nil {
				w.log.Err(err).Error("list stub books error")
				timer.Reset(duration)
				continue
			}
			for _, book := range stubs {
				w.queue <- book
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processStubs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case book := <-w.queue:
			id, err := uuid.NewRandom()
			if err != nil {
				w.log.Err(err).Error("new uuid error")
				continue
			}
			log := w.log.ID(id.String()).Root(logger.Data{"isbn": book.ISBN, "process_id": processID})
			ctx := log.WithContext(context.Background())

			err = w.scanService.Enrich(ctx, book)
			if err != nil {
				// The stub stays in place and gets picked up next interval.
				log.Err(err).Warn("enrich book error")
				continue
			}

			log.Info("enriched book", logger.Data{"title": book.Title})
		}
	}
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.config.WorkerProcesses; i++ {
		<-w.doneProcessing
	}
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
