package handlers

import (
	"github.com/gin-gonic/gin"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/catalogs/bankaccount"
)

// BankAccountHandler handles bank account and bank transaction requests.
type BankAccountHandler struct {
	*CatalogHandler[*bankaccount.BankAccount]
	service *bankaccount.Service
}

// NewBankAccountHandler creates a new bank account handler.
func NewBankAccountHandler(base *BaseHandler, service *bankaccount.Service) *BankAccountHandler {
	return &BankAccountHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*bankaccount.BankAccount]{
			Service: service,
			NewFn:   func() *bankaccount.BankAccount { return &bankaccount.BankAccount{} },
			Stamp:   stampBankAccount,
		}),
		service: service,
	}
}

// stampBankAccount writes server-side identity. The running balance is
// owned by the bank ledger: an opening balance may be set on create, but
// updates carry the stored value forward untouched.
func stampBankAccount(a *bankaccount.BankAccount, firmID id.ID, existing *bankaccount.BankAccount) {
	if existing == nil {
		a.BaseEntity = entity.NewBaseEntity(firmID)
		return
	}
	a.BaseEntity = existing.BaseEntity
	a.CurrentBalance = existing.CurrentBalance
	a.Touch()
}

// CreateTransaction handles POST /bank-accounts/:id/transactions.
// Records a direct credit or debit and moves the account balance.
func (h *BankAccountHandler) CreateTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	transaction := &bankaccount.BankTransaction{}
	if !h.BindJSON(c, transaction) {
		return
	}
	transaction.BaseEntity = entity.NewBaseEntity(firmID)
	transaction.BankAccountID = accountID

	created, err := h.service.CreateTransaction(ctx, transaction)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// ListTransactions handles GET /bank-accounts/:id/transactions.
func (h *BankAccountHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	transactions, err := h.service.ListTransactions(ctx, firmID, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if transactions == nil {
		transactions = []*bankaccount.BankTransaction{}
	}

	h.OK(c, gin.H{"items": transactions})
}

// CreateTransactionDirect handles POST /bank-transactions. Same as
// CreateTransaction, with the account taken from the body.
func (h *BankAccountHandler) CreateTransactionDirect(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	transaction := &bankaccount.BankTransaction{}
	if !h.BindJSON(c, transaction) {
		return
	}
	transaction.BaseEntity = entity.NewBaseEntity(firmID)

	created, err := h.service.CreateTransaction(ctx, transaction)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// ListAllTransactions handles GET /bank-transactions - across accounts.
func (h *BankAccountHandler) ListAllTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	transactions, err := h.service.ListAllTransactions(ctx, firmID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if transactions == nil {
		transactions = []*bankaccount.BankTransaction{}
	}

	h.OK(c, gin.H{"items": transactions})
}

// RegisterRoutes registers bank account routes.
func (h *BankAccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.CatalogHandler.RegisterRoutes(rg)
	rg.POST("/:id/transactions", h.CreateTransaction)
	rg.GET("/:id/transactions", h.ListTransactions)
}
