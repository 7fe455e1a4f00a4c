package wire

import (
	"restaurant-booking/internal/adaptor"
	"restaurant-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireWallet(
	r chi.Router,
	walletHandler *adaptor.WalletHandler,
	log *zap.Logger,
) {
	r.Route("/api/wallet", func(r chi.Router) {
		r.Use(middleware.UserIdentity(log))

		// GET /api/wallet - Balance with recent transactions
		r.Get("/", walletHandler.GetWallet)

		// POST /api/wallet/add - Top up balance
		r.Post("/add", walletHandler.AddMoney)

		// GET /api/wallet/history - Full paginated ledger
		r.Get("/history", walletHandler.GetHistory)
	})
}
