package auditlog

import (
	"log"

	internal "stockroom/internal/auditlog"
	"stockroom/pkg/models"
)

type Auditlog struct {
	r *internal.AuditLogRepository
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

func NewAuditLog(repository *internal.AuditLogRepository) *Auditlog {
	return &Auditlog{r: repository}
}

// Log records an action against a resource. Called fire-and-forget from
// handlers; a failed audit write never fails the request itself.
func (a *Auditlog) Log(action string, actorID int, data interface{}, item Auditable) {
	if a == nil {
		return
	}

	auditLog := item.CreateLogView()
	auditLog.Action = action
	auditLog.UserID = &actorID

	if err := a.r.PersistLog(auditLog, data); err != nil {
		log.Println("Unable to create AuditLog entry for id ", auditLog.ResourceID)
		return
	}

	log.Println("Created AuditLog entry for id ", auditLog.ResourceID)
}
