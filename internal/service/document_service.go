package service

import (
	"context"
	"fmt"
	"time"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/pkg/extract"

	"github.com/google/uuid"
)

const maxDocumentSizeBytes = 10 << 20 // 10 MiB

// DocumentService is the synchronous edge of the document pipeline: it
// validates and persists submissions and hands the rest to the worker over
// the job queue. Status reads never block on processing.
type DocumentService interface {
	Submit(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitDocumentRequest) (*dto.DocumentResponse, error)
	GetStatus(ctx context.Context, tenantId, documentId uuid.UUID) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, tenantId uuid.UUID, status string) ([]*dto.DocumentResponse, error)
	Cancel(ctx context.Context, tenantId, documentId uuid.UUID) (*dto.DocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	accessService    AccessService
	usageService     UsageService
	publisherService IPublisherService
	registry         *extract.Registry
}

// NewDocumentService wires the synchronous edge against the same extractor
// registry the worker runs, so submission accepts exactly what the pipeline
// can process.
func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	accessService AccessService,
	usageService UsageService,
	publisherService IPublisherService,
	registry *extract.Registry,
) DocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		accessService:    accessService,
		usageService:     usageService,
		publisherService: publisherService,
		registry:         registry,
	}
}

// Submit validates the upload and creates the document. Validation failures
// are terminal immediately: the document is stored as failed with a reason
// and never reaches the queue. A failed document is never resubmitted in
// place; retrying means a fresh submission.
func (s *documentService) Submit(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SubmitDocumentRequest) (*dto.DocumentResponse, error) {
	if err := s.accessService.Require(ctx, tenantId, entity.FeatureDocumentUpload, entity.MetricDocsPerPeriod); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.ChatSessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx, tenantId,
			specification.ByID{ID: *req.ChatSessionId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrNotFound
		}
		if session.IsArchived() {
			return nil, ErrSessionArchived
		}
	}

	doc := entity.Document{
		Id:            uuid.New(),
		TenantId:      tenantId,
		ChatSessionId: req.ChatSessionId,
		Filename:      req.Filename,
		SizeBytes:     req.SizeBytes,
		MimeType:      req.MimeType,
		Content:       req.Content,
		Status:        entity.DocumentStatusPending,
		CreatedAt:     time.Now(),
	}

	if reason := s.validateUpload(req); reason != "" {
		doc.Status = entity.DocumentStatusFailed
		doc.FailureReason = reason
		if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
			return nil, err
		}
		return documentToResponse(&doc), fmt.Errorf("%w: %s", ErrInvalidDocument, reason)
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	if _, err := s.usageService.Increment(ctx, tenantId, entity.MetricDocsPerPeriod, 1); err != nil {
		return nil, err
	}

	if err := s.publisherService.PublishDocumentJob(ctx, &dto.DocumentJobMessage{
		DocumentId: doc.Id,
		TenantId:   tenantId,
	}); err != nil {
		return nil, err
	}

	return documentToResponse(&doc), nil
}

func (s *documentService) GetStatus(ctx context.Context, tenantId, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, tenantId,
		specification.ByID{ID: documentId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return documentToResponse(doc), nil
}

func (s *documentService) ListDocuments(ctx context.Context, tenantId uuid.UUID, status string) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, tenantId, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		result = append(result, documentToResponse(doc))
	}
	return result, nil
}

// Cancel fails a pending document immediately; the conditional update loses
// cleanly to a concurrent worker claim. Once a worker holds the claim,
// cancellation is cooperative: the request is recorded on the document and
// the worker finalizes it at its next retry boundary.
func (s *documentService) Cancel(ctx context.Context, tenantId, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	canceled, err := uow.DocumentRepository().CancelPending(ctx, tenantId, documentId)
	if err != nil {
		return nil, err
	}
	if !canceled {
		// Lost to a claim; fall through to the cooperative path.
		if _, err := uow.DocumentRepository().RequestCancel(ctx, tenantId, documentId); err != nil {
			return nil, err
		}
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, tenantId,
		specification.ByID{ID: documentId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if !canceled {
		if doc.IsTerminal() {
			return documentToResponse(doc), ErrDocumentTerminal
		}
		if !doc.CancelRequested {
			return documentToResponse(doc), ErrCannotCancel
		}
	}
	return documentToResponse(doc), nil
}

func (s *documentService) validateUpload(req *dto.SubmitDocumentRequest) string {
	if !s.registry.Supports(req.MimeType) {
		return entity.FailureReasonUnsupportedType
	}
	if req.SizeBytes > maxDocumentSizeBytes {
		return entity.FailureReasonTooLarge
	}
	return ""
}

func documentToResponse(doc *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:              doc.Id,
		ChatSessionId:   doc.ChatSessionId,
		Filename:        doc.Filename,
		MimeType:        doc.MimeType,
		SizeBytes:       doc.SizeBytes,
		Status:          string(doc.Status),
		FailureReason:   doc.FailureReason,
		CancelRequested: doc.CancelRequested,
		ExtractedData:   doc.ExtractedData,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}
