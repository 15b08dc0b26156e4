package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"loserpool-go/logging"
	"loserpool-go/services"

	"github.com/gorilla/mux"
)

// AdminHandler exposes the operator surface: reconciliation and settlement
// triggers plus season/matchup queries. Responses carry counts and warning
// lists; nothing here surfaces errors to pool members.
type AdminHandler struct {
	seasonService     *services.SeasonService
	reconcileService  *services.ReconcileService
	settlementService *services.SettlementService
	pickService       *services.PickService
	feedService       *services.ScheduleFeedService
	authService       *services.AuthService
	matchupStore      services.MatchupStore
	logger            *logging.Logger
}

// NewAdminHandler creates the operator handler
func NewAdminHandler(
	seasonService *services.SeasonService,
	reconcileService *services.ReconcileService,
	settlementService *services.SettlementService,
	pickService *services.PickService,
	feedService *services.ScheduleFeedService,
	authService *services.AuthService,
	matchupStore services.MatchupStore,
) *AdminHandler {
	return &AdminHandler{
		seasonService:     seasonService,
		reconcileService:  reconcileService,
		settlementService: settlementService,
		pickService:       pickService,
		feedService:       feedService,
		authService:       authService,
		matchupStore:      matchupStore,
		logger:            logging.WithPrefix("admin_handler"),
	}
}

// Login handles POST /api/login and issues an operator token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(body.User, body.Password)
	if err != nil {
		h.logger.Warnf("Failed login attempt for user %q from %s", body.User, r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetSeason handles GET /api/season and returns the resolved SeasonInfo
func (h *AdminHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	info := h.seasonService.Resolve(r.Context(), time.Now())
	writeJSON(w, http.StatusOK, info)
}

// GetMatchups handles GET /api/matchups and lists the current week's matchups
func (h *AdminHandler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	info := h.seasonService.Resolve(r.Context(), time.Now())

	matchups, err := h.matchupStore.FindByWeek(r.Context(), info.Year, info.Phase, info.Week)
	if err != nil {
		h.logger.Errorf("Failed to load matchups for %s: %v", info.Label, err)
		http.Error(w, "Unable to load matchups", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":   info,
		"matchups": matchups,
	})
}

// Reconcile handles POST /api/reconcile: fetches a fresh feed snapshot and
// merges it into the matchup store
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	info := h.seasonService.Resolve(r.Context(), time.Now())

	games, err := h.feedService.FetchSeason(r.Context(), info.Year)
	if err != nil {
		h.logger.Errorf("Feed fetch failed: %v", err)
		http.Error(w, "Schedule feed unavailable", http.StatusBadGateway)
		return
	}

	result, err := h.reconcileService.Reconcile(r.Context(), games, info)
	if err != nil {
		h.logger.Errorf("Reconciliation failed: %v", err)
		http.Error(w, "Reconciliation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Settle handles POST /api/settle: sweeps every finalized matchup and
// settles the picks allocated to them
func (h *AdminHandler) Settle(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementService.SettleAllFinalized(r.Context())
	if err != nil {
		h.logger.Errorf("Settlement sweep failed: %v", err)
		http.Error(w, "Settlement sweep failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetOwnerSummary handles GET /api/owners/{ownerID}/summary
func (h *AdminHandler) GetOwnerSummary(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerID"]

	summary, err := h.pickService.GetOwnerSummary(r.Context(), ownerID)
	if err != nil {
		h.logger.Errorf("Failed to summarize owner %s: %v", ownerID, err)
		http.Error(w, "Unable to load owner summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}
