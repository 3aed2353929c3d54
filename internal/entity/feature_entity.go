package entity

import (
	"time"

	"github.com/google/uuid"
)

// Well-known feature keys.
const (
	FeatureChat              = "chat"
	FeatureDocumentUpload    = "document_upload"
	FeatureAdvancedReporting = "advanced_reporting"
	FeatureAPIAccess         = "api_access"
	FeaturePrioritySupport   = "priority_support"
	FeatureCustomBranding    = "custom_branding"
)

// Feature is an entry in the master feature catalog.
type Feature struct {
	Id          uuid.UUID
	Key         string
	Name        string
	Description string
	Category    string // ai, documents, reporting, support
	IsActive    bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
