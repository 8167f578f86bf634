package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"walletbot/config"
	"walletbot/models"
	"walletbot/service"
)

// Server exposes the mini-game HTTP API. The game front end polls /api/sync
// and places bets through /api/bet; all wallet semantics live in the services.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	users   service.UserService
	betting service.BettingService
	clock   service.GameClock
}

// New creates the HTTP server and registers its routes
func New(cfg *config.Config, users service.UserService, betting service.BettingService, clock service.GameClock) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "walletbot",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	s := &Server{
		app:     app,
		cfg:     cfg,
		users:   users,
		betting: betting,
		clock:   clock,
	}

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/sync", s.handleSync)
	api.Post("/bet", s.handleBet)

	return s
}

// Listen serves until Shutdown is called
func (s *Server) Listen() error {
	log.WithField("addr", s.cfg.HTTPAddr).Info("HTTP API listening")
	return s.app.Listen(s.cfg.HTTPAddr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type syncResponse struct {
	Balance          int64                 `json:"balance"`
	Rollover         int64                 `json:"rollover"`
	RequiredRollover int64                 `json:"requiredRollover"`
	WithdrawalReady  bool                  `json:"withdrawalReady"`
	Period           *models.GamePeriod    `json:"period"`
	History          []models.PeriodResult `json:"history"`
	RecentBets       []betEntry            `json:"recentBets"`
}

type betEntry struct {
	Period    int64     `json:"period"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Selection string    `json:"selection"`
	CreatedAt time.Time `json:"createdAt"`
}

// handleSync returns everything the game front end needs in one round trip:
// the caller's wallet snapshot, the running period, the global result
// history and the caller's recent bets.
func (s *Server) handleSync(c *fiber.Ctx) error {
	telegramID, err := strconv.ParseInt(c.Query("tgId"), 10, 64)
	if err != nil || telegramID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "invalid tgId")
	}

	ctx := c.Context()

	user, err := s.users.GetUser(ctx, telegramID)
	if errors.Is(err, service.ErrNotFound) {
		return errorResponse(c, fiber.StatusNotFound, "unknown user")
	}
	if err != nil {
		return s.internalError(c, "failed to load user", err)
	}

	period, err := s.clock.CurrentPeriod(ctx)
	if err != nil {
		return s.internalError(c, "failed to load period", err)
	}

	history, err := s.clock.RecentResults(ctx, 20)
	if err != nil {
		return s.internalError(c, "failed to load history", err)
	}

	bets, err := s.betting.RecentBets(ctx, telegramID, 10)
	if err != nil {
		return s.internalError(c, "failed to load bets", err)
	}

	entries := make([]betEntry, 0, len(bets))
	for _, b := range bets {
		entries = append(entries, betEntry{
			Period:    b.PeriodID,
			Type:      string(b.Type),
			Amount:    b.Amount,
			Selection: b.Selection,
			CreatedAt: b.CreatedAt,
		})
	}

	return c.JSON(syncResponse{
		Balance:          user.Balance,
		Rollover:         user.CurrentBetRollover,
		RequiredRollover: service.RequiredRollover(user, s.cfg.RolloverMultiplier),
		WithdrawalReady:  service.IsWithdrawalEligible(user, s.cfg.RolloverMultiplier),
		Period:           period,
		History:          history,
		RecentBets:       entries,
	})
}

type betRequest struct {
	TgID      int64  `json:"tgId"`
	Amount    int64  `json:"amount"`
	Selection string `json:"selection"`
}

type betResponse struct {
	TransactionID string `json:"transactionId"`
	Balance       int64  `json:"balance"`
	Rollover      int64  `json:"rollover"`
	Period        int64  `json:"period"`
}

func (s *Server) handleBet(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.TgID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "invalid tgId")
	}

	result, err := s.betting.PlaceBet(c.Context(), req.TgID, req.Amount, req.Selection)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return errorResponse(c, fiber.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrInsufficientFunds):
		return errorResponse(c, fiber.StatusPaymentRequired, "insufficient balance")
	case errors.Is(err, service.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "unknown user")
	case errors.Is(err, service.ErrConcurrentModification):
		return errorResponse(c, fiber.StatusConflict, "balance changed, retry the bet")
	case err != nil:
		return s.internalError(c, "failed to place bet", err)
	}

	return c.JSON(betResponse{
		TransactionID: result.TransactionID,
		Balance:       result.NewBalance,
		Rollover:      result.NewRollover,
		Period:        result.PeriodID,
	})
}

func (s *Server) internalError(c *fiber.Ctx, msg string, err error) error {
	log.WithFields(log.Fields{
		"path":  c.Path(),
		"error": err,
	}).Error(msg)
	return errorResponse(c, fiber.StatusInternalServerError, "internal error")
}

func errorResponse(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
