package mapping

import (
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/models"
)

// The audit structs differ only in tags, so plain conversions apply.

func ToModelAuditFields(d domain.AuditFields) models.AuditFields { return models.AuditFields(d) }

func ToDomainAuditFields(m models.AuditFields) domain.AuditFields { return domain.AuditFields(m) }
