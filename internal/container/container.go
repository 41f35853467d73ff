package container

import (
	"database/sql"

	auditLogRepo "stockroom/internal/auditlog"
	"stockroom/internal/inventory/items"
	"stockroom/internal/inventory/ledger"
	"stockroom/internal/reimbursements"
	"stockroom/internal/reports"
	"stockroom/internal/repository"
	"stockroom/internal/requests"
	"stockroom/internal/requests/newitems"
	"stockroom/internal/users"
	"stockroom/pkg/auditlog"
	"stockroom/pkg/security"
)

type Container struct {
	Repository           *repository.Repository
	AuditLog             *auditlog.Auditlog
	LoginHandler         *security.LoginHandler
	ItemHandler          *items.ItemHandler
	RequestHandler       *requests.RequestHandler
	NewItemHandler       *newitems.NewItemRequestHandler
	ReimbursementHandler *reimbursements.ReimbursementHandler
	UserHandler          *users.UsersHandler
	ReportHandler        *reports.ReportHandler
}

func NewAppContainer(db *sql.DB) *Container {
	repo := repository.NewRepository(db)
	auditRepo := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditRepo)

	ledgerRepo := ledger.NewRepository(repo)
	ledgerService := ledger.NewService(ledgerRepo)

	itemRepo := items.NewRepository(repo)
	itemService := items.NewItemService(itemRepo, ledgerRepo)
	itemHandler := items.NewItemHandler(itemRepo, itemService, ledgerService, ledgerRepo, auditLog)

	requestRepo := requests.NewRepository(repo)
	requestService := requests.NewRequestService(requestRepo, itemRepo, ledgerRepo)
	requestHandler := requests.NewRequestHandler(requestRepo, requestService, auditLog)

	newItemRepo := newitems.NewRepository(repo)
	newItemService := newitems.NewNewItemRequestService(newItemRepo, itemRepo, ledgerRepo)
	newItemHandler := newitems.NewHandler(newItemRepo, newItemService, auditLog)

	reimbursementRepo := reimbursements.NewRepository(repo)
	reimbursementHandler := reimbursements.NewHandler(reimbursementRepo, auditLog)

	userRepo := users.NewRepository(repo)
	userHandler := users.NewHandler(userRepo)

	reportRepo := reports.NewRepository(repo)
	reportService := reports.NewService(reportRepo)
	reportHandler := reports.NewHandler(reportService)

	loginHandler := security.NewLoginHandler(repo)

	return &Container{
		Repository:           repo,
		AuditLog:             auditLog,
		LoginHandler:         loginHandler,
		ItemHandler:          itemHandler,
		RequestHandler:       requestHandler,
		NewItemHandler:       newItemHandler,
		ReimbursementHandler: reimbursementHandler,
		UserHandler:          userHandler,
		ReportHandler:        reportHandler,
	}
}
