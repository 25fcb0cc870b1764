package wallet

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/handlers"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"github.com/learnhub/learnhub-api/utils/response"
)

// WalletHandler handles wallet balance and ledger reads
type WalletHandler struct {
	wallets *services.WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(wallets *services.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetWallet handles GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	balance, err := h.wallets.Balance(middleware.UserID(c))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, fiber.Map{"balance": balance})
}

// GetTransactions handles GET /api/v1/wallet/transactions
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	transactions, total, err := h.wallets.Transactions(middleware.UserID(c), page, limit)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.Paginated(c, transactions, response.CalculatePagination(page, limit, total))
}
