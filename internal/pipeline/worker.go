package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/pkg/logger"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/internal/service"
	"bizops-assistant-be/internal/websocket"
	"bizops-assistant-be/pkg/events"
	"bizops-assistant-be/pkg/extract"
	natsbus "bizops-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	maxExtractAttempts = 3
	retryBackoffBase   = 500 * time.Millisecond

	// How long a claim lease is honored before the document becomes a
	// re-claim candidate, and how often the recovery scan runs.
	claimLease      = 5 * time.Minute
	reclaimInterval = time.Minute
)

// Worker drives documents through pending -> processing -> terminal. Each
// job is claimed with a conditional update before any work happens, so a
// document is processed by at most one worker at a time; the claim lease
// lets a successor take over after a crash.
type Worker struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	sessionService service.SessionService
	extractor      *extract.Registry
	hub            *websocket.Hub
	eventPublisher *natsbus.Publisher
	log            logger.ILogger
}

func NewWorker(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	sessionService service.SessionService,
	extractor *extract.Registry,
	hub *websocket.Hub,
	eventPublisher *natsbus.Publisher,
	log logger.ILogger,
) *Worker {
	return &Worker{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		sessionService: sessionService,
		extractor:      extractor,
		hub:            hub,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// Run subscribes to the job topic and starts the crash-recovery scan. It
// returns once the subscription is set up; processing happens on the
// subscriber goroutine.
func (w *Worker) Run(ctx context.Context) error {
	messages, err := w.pubSub.Subscribe(ctx, w.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			w.processMessage(ctx, msg)
		}
	}()

	go w.reclaimLoop(ctx)

	return nil
}

func (w *Worker) processMessage(ctx context.Context, msg *message.Message) {
	var job dto.DocumentJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		w.log.Error("pipeline", "failed to unmarshal job", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying cannot fix it
		return
	}

	uow := w.uowFactory.NewUnitOfWork(ctx)

	claimed, err := uow.DocumentRepository().Claim(ctx, job.TenantId, job.DocumentId, time.Now())
	if err != nil {
		w.log.Error("pipeline", "claim failed", map[string]interface{}{
			"document_id": job.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if !claimed {
		// Canceled, already terminal, or claimed by a peer. Either way this
		// delivery is done.
		w.log.Info("pipeline", "document not claimable, skipping", map[string]interface{}{
			"document_id": job.DocumentId,
		})
		msg.Ack()
		return
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, job.TenantId,
		specification.ByID{ID: job.DocumentId},
	)
	if err != nil || doc == nil {
		w.log.Error("pipeline", "claimed document unreadable", map[string]interface{}{
			"document_id": job.DocumentId,
		})
		msg.Nack()
		return
	}

	w.pushStatus(doc)
	w.process(ctx, doc)
	msg.Ack()
}

// process runs extraction with bounded retries and writes exactly one
// terminal state. Retries stay inside the processing state; status never
// bounces back to pending. Cancellation after the claim is cooperative:
// the flag is re-read at every attempt boundary.
func (w *Worker) process(ctx context.Context, doc *entity.Document) {
	var result *extract.Result
	var lastErr error

	for attempt := 1; attempt <= maxExtractAttempts; attempt++ {
		if w.cancelRequested(ctx, doc) {
			w.finalizeFailure(ctx, doc, entity.FailureReasonCanceled)
			return
		}

		result, lastErr = w.extractor.Extract(ctx, doc.MimeType, doc.Content)
		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, extract.ErrUnsupported) {
			// Non-retryable, fail straight away.
			w.finalizeFailure(ctx, doc, entity.FailureReasonUnsupportedType)
			return
		}

		w.log.Warn("pipeline", "extraction attempt failed", map[string]interface{}{
			"document_id": doc.Id,
			"attempt":     attempt,
			"error":       lastErr.Error(),
		})
		if attempt < maxExtractAttempts {
			select {
			case <-time.After(retryBackoffBase * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return
			}
		}
	}

	if lastErr != nil {
		w.finalizeFailure(ctx, doc, entity.FailureReasonExtraction)
		return
	}

	w.finalizeSuccess(ctx, doc, result)
}

// cancelRequested re-reads the cooperative cancellation flag. Read failures
// count as not-canceled; the attempt proceeds and a real cancel is picked up
// at the next boundary.
func (w *Worker) cancelRequested(ctx context.Context, doc *entity.Document) bool {
	uow := w.uowFactory.NewUnitOfWork(ctx)
	current, err := uow.DocumentRepository().FindOne(ctx, doc.TenantId,
		specification.ByID{ID: doc.Id},
	)
	if err != nil || current == nil {
		return false
	}
	doc.CancelRequested = current.CancelRequested
	return current.CancelRequested
}

func (w *Worker) finalizeSuccess(ctx context.Context, doc *entity.Document, result *extract.Result) {
	uow := w.uowFactory.NewUnitOfWork(ctx)

	doc.Status = entity.DocumentStatusCompleted
	doc.ExtractedText = result.Text
	doc.ExtractedData = result.Data
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		w.log.Error("pipeline", "failed to persist completion", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		return
	}

	// The completion notice goes through the same append path as chat, so it
	// gets a real sequence number and lands after everything already logged.
	if doc.ChatSessionId != nil {
		content := fmt.Sprintf("Document %q processed.", doc.Filename)
		_, err := w.sessionService.AppendMessage(ctx, doc.TenantId, *doc.ChatSessionId,
			entity.MessageTypeSystem, content, map[string]interface{}{
				"document_id": doc.Id.String(),
				"status":      string(doc.Status),
			})
		if err != nil {
			// Session archived or gone; the document itself stays completed.
			w.log.Warn("pipeline", "completion message not appended", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
		}
	}

	w.pushStatus(doc)
	w.publishEvent(ctx, events.NewDocumentCompleted(doc.TenantId, doc.Id, doc.Filename))

	w.log.Info("pipeline", "document completed", map[string]interface{}{
		"document_id": doc.Id,
		"tenant_id":   doc.TenantId,
	})
}

func (w *Worker) finalizeFailure(ctx context.Context, doc *entity.Document, reason string) {
	uow := w.uowFactory.NewUnitOfWork(ctx)

	doc.Status = entity.DocumentStatusFailed
	doc.FailureReason = reason
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		w.log.Error("pipeline", "failed to persist failure", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		return
	}

	w.pushStatus(doc)
	w.publishEvent(ctx, events.NewDocumentFailed(doc.TenantId, doc.Id, doc.Filename, reason))

	w.log.Info("pipeline", "document failed", map[string]interface{}{
		"document_id": doc.Id,
		"reason":      reason,
	})
}

// reclaimLoop periodically picks up processing documents whose claim lease
// expired, meaning their worker died mid-flight, and runs them again.
func (w *Worker) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(reclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reclaimExpired(ctx)
		}
	}
}

func (w *Worker) reclaimExpired(ctx context.Context) {
	uow := w.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().Add(-claimLease)

	docs, err := uow.DocumentRepository().FindExpiredClaims(ctx, cutoff)
	if err != nil {
		w.log.Error("pipeline", "expired claim scan failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, doc := range docs {
		won, err := uow.DocumentRepository().ReclaimExpired(ctx, doc.Id, cutoff, time.Now())
		if err != nil {
			w.log.Error("pipeline", "re-claim failed", map[string]interface{}{
				"document_id": doc.Id,
				"error":       err.Error(),
			})
			continue
		}
		if !won {
			continue
		}

		w.log.Info("pipeline", "re-claimed abandoned document", map[string]interface{}{
			"document_id": doc.Id,
		})
		w.process(ctx, doc)
	}
}

func (w *Worker) pushStatus(doc *entity.Document) {
	if w.hub == nil {
		return
	}
	w.hub.PushDocumentStatus(doc.TenantId, dto.DocumentStatusPush{
		DocumentId:    doc.Id,
		Filename:      doc.Filename,
		Status:        string(doc.Status),
		FailureReason: doc.FailureReason,
		At:            time.Now(),
	})
}

func (w *Worker) publishEvent(ctx context.Context, event events.Event) {
	if w.eventPublisher == nil {
		return
	}
	if err := w.eventPublisher.Publish(ctx, event); err != nil {
		w.log.Warn("pipeline", "event publish failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
