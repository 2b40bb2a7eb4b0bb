// Package httpapi exposes the budget engine over a thin JSON facade.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
)

// WalletReader loads wallets for read-modify-write edits.
type WalletReader interface {
	GetWallet(ctx context.Context, id budget.WalletID) (budget.Wallet, error)
}

// TransactionStore is the persistence surface for recorded transactions.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]budget.Transaction, error)
	AddTransaction(ctx context.Context, transaction budget.Transaction) (budget.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction budget.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// ChangePublisher fans transaction mutations out to the engine watch loop.
type ChangePublisher interface {
	PublishTransactionChange(ctx context.Context, change budget.TransactionChange) error
}

// Run boots the HTTP facade using the supplied configuration and blocks until
// the context is cancelled.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, service *budget.Service, wallets WalletReader, transactions TransactionStore, publisher ChangePublisher) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	handler := &httpHandler{
		logger:       logger,
		service:      service,
		wallets:      wallets,
		transactions: transactions,
		publisher:    publisher,
		cfg:          cfg,
	}

	router, err := setupRouter(cfg, handler)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("budget api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	if len(cfg.SessionSigningKey) > 0 {
		validator, err := sessionvalidator.New(sessionvalidator.Config{
			SigningKey: []byte(cfg.SessionSigningKey),
			Issuer:     cfg.SessionIssuer,
			CookieName: cfg.SessionCookieName,
		})
		if err != nil {
			return nil, fmt.Errorf("session validator: %w", err)
		}
		api.Use(validator.GinMiddleware("auth_claims"))
	}

	api.GET("/state", handler.handleState)
	api.POST("/error/clear", handler.handleClearError)

	api.POST("/wallets", handler.handleCreateWallet)
	api.PUT("/wallets/:id", handler.handleUpdateWallet)
	api.DELETE("/wallets/:id", handler.handleDeleteWallet)
	api.POST("/wallets/:id/spend", handler.handleSpend)
	api.POST("/wallets/:id/reset", handler.handleResetPeriod)

	api.POST("/income", handler.handleIncome)
	api.POST("/transfers", handler.handleTransfer)
	api.POST("/period", handler.handleSetPeriod)
	api.POST("/reset", handler.handleResetAllPeriods)

	api.GET("/transactions", handler.handleListTransactions)
	api.POST("/transactions", handler.handleAddTransaction)
	api.PUT("/transactions/:id", handler.handleUpdateTransaction)
	api.DELETE("/transactions/:id", handler.handleDeleteTransaction)

	return router, nil
}

type httpHandler struct {
	logger       *zap.Logger
	service      *budget.Service
	wallets      WalletReader
	transactions TransactionStore
	publisher    ChangePublisher
	cfg          Config
}

func (handler *httpHandler) handleState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleClearError(ctx *gin.Context) {
	handler.service.ClearError()
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleCreateWallet(ctx *gin.Context) {
	var request createWalletRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected name and limit"))
		return
	}
	limit, err := budget.NewMoney(request.Limit)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_limit", err.Error()))
		return
	}
	walletType, err := budget.ParseWalletType(request.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_type", err.Error()))
		return
	}

	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	created, err := handler.service.AddWallet(requestCtx, request.Name, limit, walletType)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if len(request.LinkedCategories) > 0 || request.Color != "" {
		created.LinkedCategories = request.LinkedCategories
		created.Color = request.Color
		if err := handler.service.UpdateWallet(requestCtx, created); err != nil {
			handler.respondError(ctx, err)
			return
		}
	}
	ctx.JSON(http.StatusOK, walletEnvelope{Wallet: renderWallet(created)})
}

func (handler *httpHandler) handleUpdateWallet(ctx *gin.Context) {
	walletID, ok := handler.pathWalletID(ctx)
	if !ok {
		return
	}
	var request updateWalletRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}

	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	wallet, err := handler.wallets.GetWallet(requestCtx, walletID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if request.Name != nil {
		wallet.Name = *request.Name
	}
	if request.Limit != nil {
		limit, err := budget.NewMoney(*request.Limit)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_limit", err.Error()))
			return
		}
		wallet.Limit = limit
	}
	if request.Type != nil {
		walletType, err := budget.ParseWalletType(*request.Type)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_type", err.Error()))
			return
		}
		wallet.Type = walletType
	}
	if request.Color != nil {
		wallet.Color = *request.Color
	}
	if request.PeriodDays != nil {
		wallet.PeriodDays = *request.PeriodDays
	}
	wallet.LinkedCategories = request.LinkedCategories

	if err := handler.service.UpdateWallet(requestCtx, wallet); err != nil {
		handler.respondError(ctx, err)
		return
	}
	updated, err := handler.wallets.GetWallet(requestCtx, walletID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, walletEnvelope{Wallet: renderWallet(updated)})
}

func (handler *httpHandler) handleDeleteWallet(ctx *gin.Context) {
	walletID, ok := handler.pathWalletID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.DeleteWallet(requestCtx, walletID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleIncome(ctx *gin.Context) {
	var request incomeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected amount"))
		return
	}
	amount, err := budget.NewMoney(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.DistributeIncome(requestCtx, amount); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleSpend(ctx *gin.Context) {
	walletID, ok := handler.pathWalletID(ctx)
	if !ok {
		return
	}
	var request spendRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected amount"))
		return
	}
	amount, err := budget.NewMoney(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.SpendFromWallet(requestCtx, walletID, amount); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected from_id, to_id and amount"))
		return
	}
	fromID, err := budget.NewWalletID(request.FromID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_wallet_id", err.Error()))
		return
	}
	toID, err := budget.NewWalletID(request.ToID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_wallet_id", err.Error()))
		return
	}
	amount, err := budget.NewMoney(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.Transfer(requestCtx, fromID, toID, amount); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleSetPeriod(ctx *gin.Context) {
	var request periodRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected days"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.SetPeriodDuration(requestCtx, request.Days); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleResetPeriod(ctx *gin.Context) {
	walletID, ok := handler.pathWalletID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.ResetPeriod(requestCtx, walletID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleResetAllPeriods(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.service.ResetAllPeriods(requestCtx); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stateEnvelope{State: renderState(handler.service.Snapshot())})
}

func (handler *httpHandler) handleListTransactions(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	transactions, err := handler.transactions.ListTransactions(requestCtx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payloads := make([]transactionPayload, 0, len(transactions))
	for _, transaction := range transactions {
		payloads = append(payloads, renderTransaction(transaction))
	}
	ctx.JSON(http.StatusOK, transactionListEnvelope{Transactions: payloads})
}

func (handler *httpHandler) handleAddTransaction(ctx *gin.Context) {
	var request transactionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected category and amount"))
		return
	}
	amount, err := budget.NewMoney(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	created, err := handler.transactions.AddTransaction(requestCtx, budget.Transaction{
		Category:        request.Category,
		CategoryID:      request.CategoryID,
		Amount:          amount,
		IsExpense:       request.IsExpense,
		OccurredUnixUTC: request.OccurredUnixUTC,
	})
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	handler.publishChange(requestCtx, "added", created.ID)
	ctx.JSON(http.StatusOK, transactionEnvelope{Transaction: renderTransaction(created)})
}

func (handler *httpHandler) handleUpdateTransaction(ctx *gin.Context) {
	transactionID := ctx.Param("id")
	var request transactionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected category and amount"))
		return
	}
	amount, err := budget.NewMoney(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_amount", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	transaction := budget.Transaction{
		ID:              transactionID,
		Category:        request.Category,
		CategoryID:      request.CategoryID,
		Amount:          amount,
		IsExpense:       request.IsExpense,
		OccurredUnixUTC: request.OccurredUnixUTC,
	}
	if err := handler.transactions.UpdateTransaction(requestCtx, transaction); err != nil {
		handler.respondError(ctx, err)
		return
	}
	handler.publishChange(requestCtx, "updated", transactionID)
	ctx.JSON(http.StatusOK, transactionEnvelope{Transaction: renderTransaction(transaction)})
}

func (handler *httpHandler) handleDeleteTransaction(ctx *gin.Context) {
	transactionID := ctx.Param("id")
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()

	if err := handler.transactions.DeleteTransaction(requestCtx, transactionID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	handler.publishChange(requestCtx, "deleted", transactionID)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (handler *httpHandler) publishChange(ctx context.Context, action string, transactionID string) {
	if handler.publisher == nil {
		return
	}
	change := budget.TransactionChange{Action: action, TransactionID: transactionID}
	if err := handler.publisher.PublishTransactionChange(ctx, change); err != nil {
		handler.logger.Warn("publish transaction change failed",
			zap.String("action", action),
			zap.String("transaction_id", transactionID),
			zap.Error(err))
	}
}

func (handler *httpHandler) pathWalletID(ctx *gin.Context) (budget.WalletID, bool) {
	walletID, err := budget.NewWalletID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_wallet_id", err.Error()))
		return budget.WalletID{}, false
	}
	return walletID, true
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, budget.ErrUnknownWallet):
		ctx.JSON(http.StatusNotFound, errorResponse("unknown_wallet", err.Error()))
	case errors.Is(err, budget.ErrUnknownTransaction):
		ctx.JSON(http.StatusNotFound, errorResponse("unknown_transaction", err.Error()))
	case errors.Is(err, budget.ErrWalletExists):
		ctx.JSON(http.StatusConflict, errorResponse("wallet_exists", err.Error()))
	case errors.Is(err, budget.ErrInsufficientFunds):
		ctx.JSON(http.StatusConflict, errorResponse("insufficient_funds", err.Error()))
	case errors.Is(err, budget.ErrNonPositiveAmount),
		errors.Is(err, budget.ErrInvalidMoney),
		errors.Is(err, budget.ErrInvalidLimit),
		errors.Is(err, budget.ErrInvalidSpent),
		errors.Is(err, budget.ErrInvalidWalletID),
		errors.Is(err, budget.ErrInvalidWalletType),
		errors.Is(err, budget.ErrInvalidPeriodDays),
		errors.Is(err, budget.ErrSameWallet),
		errors.Is(err, budget.ErrNoWallets):
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_request", err.Error()))
	default:
		handler.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, errorResponse("store_error", err.Error()))
	}
}
