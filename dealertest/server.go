// Package dealertest provides an in-memory double of the dealer backend for
// tests and local development. It implements only the endpoints and behavior
// the client assumes: bearer auth with refresh rotation, the restock list/
// detail/status/accept/delete operations with server-side transition
// re-validation, and the agency directory.
package dealertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
)

type Server struct {
	httpServer *httptest.Server

	mu           sync.Mutex
	orders       map[uint64]*model.RestockOrder
	orderIDs     []uint64
	agencies     []model.Agency
	nextID       uint64
	tokenSeq     int
	accessToken  string
	refreshToken string
	refreshCalls int
	refreshDelay time.Duration
	routeCalls   map[string]int
	detailCalls  map[uint64]int
}

func New() *Server {
	s := &Server{
		orders:       make(map[uint64]*model.RestockOrder),
		nextID:       1,
		tokenSeq:     1,
		accessToken:  "access-1",
		refreshToken: "refresh-1",
		routeCalls:   make(map[string]int),
		detailCalls:  make(map[uint64]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/order-restock-management/list", s.handleManagementList).Methods(http.MethodGet)
	r.HandleFunc("/order-restock/list/{agencyId}", s.handleStaffList).Methods(http.MethodGet)
	r.HandleFunc("/order-restock/detail/{orderId}", s.handleDetail).Methods(http.MethodGet)
	r.HandleFunc("/order-restock-management/status/{orderId}", s.handleUpdateStatus).Methods(http.MethodPatch)
	r.HandleFunc("/order-restock/accept/{orderId}", s.handleAccept).Methods(http.MethodPatch)
	r.HandleFunc("/order-restock-management/{orderId}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/agency/list", s.handleAgencyList).Methods(http.MethodGet)
	r.Use(s.countingMiddleware, s.authMiddleware)

	s.httpServer = httptest.NewServer(r)
	return s
}

func (s *Server) URL() string { return s.httpServer.URL }

func (s *Server) Close() { s.httpServer.Close() }

// AddOrder seeds an order and returns its id.
func (s *Server) AddOrder(o model.RestockOrder) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.nextID
	}
	if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
	s.orders[o.ID] = &o
	s.orderIDs = append(s.orderIDs, o.ID)
	return o.ID
}

func (s *Server) AddAgency(a model.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies = append(s.agencies, a)
}

// Order returns a copy of a stored order.
func (s *Server) Order(orderID uint64) (model.RestockOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return model.RestockOrder{}, false
	}
	return *o, true
}

// DetailCalls reports how many detail requests were served for an order.
func (s *Server) DetailCalls(orderID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls[orderID]
}

// RefreshCalls reports how many token refreshes were served.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// Calls reports how many requests hit a route, keyed by method and the mux
// path template, e.g. Calls("PATCH", "/order-restock-management/status/{orderId}").
func (s *Server) Calls(method, template string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeCalls[method+" "+template]
}

// Tokens returns the currently valid access and refresh tokens.
func (s *Server) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// ExpireAccessToken invalidates the current access token while keeping the
// refresh token valid, so the next authenticated request earns a 401.
func (s *Server) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
}

// RevokeSession invalidates both tokens so even a refresh fails.
func (s *Server) RevokeSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
	s.refreshToken = fmt.Sprintf("refresh-%d", s.tokenSeq)
}

func (s *Server) countingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				s.mu.Lock()
				s.routeCalls[r.Method+" "+template]++
				s.mu.Unlock()
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/auth/") {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		s.mu.Lock()
		valid := auth == "Bearer "+s.accessToken
		s.mu.Unlock()
		if !valid {
			writeError(w, http.StatusUnauthorized, "unauthorize request")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	role := constant.RoleStaff
	if strings.HasPrefix(creds.Email, "manager") {
		role = constant.RoleManager
	}
	s.mu.Lock()
	result := model.LoginResult{
		Token:        s.accessToken,
		RefreshToken: s.refreshToken,
		User: model.User{
			ID:       1,
			Name:     "Test User",
			Email:    creds.Email,
			Role:     role,
			AgencyID: 1,
		},
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, result, nil)
}

// SetRefreshDelay makes the refresh endpoint sleep before answering, so
// tests can hold multiple 401-retries inside one refresh window.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.mu.Lock()
	if req.RefreshToken != s.refreshToken {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "refresh token invalid")
		return
	}
	s.refreshCalls++
	s.tokenSeq++
	s.accessToken = fmt.Sprintf("access-%d", s.tokenSeq)
	result := model.RefreshResult{Token: s.accessToken}
	s.mu.Unlock()
	writeData(w, http.StatusOK, result, nil)
}

// handleManagementList answers in the envelope shape with paginationInfo.
// List rows never embed warehouse/vehicle objects, forcing the client's lazy
// detail resolution.
func (s *Server) handleManagementList(w http.ResponseWriter, r *http.Request) {
	status := constant.RestockStatus(r.URL.Query().Get("status"))
	agencyID, _ := strconv.ParseUint(r.URL.Query().Get("agencyId"), 10, 64)
	page, limit := pageParams(r)

	rows := s.listRows(status, agencyID)
	total := len(rows)
	rows = paginate(rows, page, limit)
	writeData(w, http.StatusOK, rows, &model.PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	})
}

// handleStaffList answers with a bare JSON array, the second list shape the
// client must normalize.
func (s *Server) handleStaffList(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := strconv.ParseUint(mux.Vars(r)["agencyId"], 10, 64)
	status := constant.RestockStatus(r.URL.Query().Get("status"))
	page, limit := pageParams(r)

	rows := paginate(s.listRows(status, agencyID), page, limit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rows)
}

func (s *Server) listRows(status constant.RestockStatus, agencyID uint64) []model.RestockOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]model.RestockOrder, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		o, ok := s.orders[id]
		if !ok {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		if agencyID != 0 && o.AgencyID != agencyID {
			continue
		}
		row := *o
		row.Warehouse = nil
		row.ElectricMotorbike = nil
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 64)
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if ok {
		s.detailCalls[orderID]++
	}
	var copied model.RestockOrder
	if ok {
		copied = *o
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeData(w, http.StatusOK, copied, nil)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 64)
	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if !constant.CanTransition(o.Status, req.Status) {
		from := o.Status
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot change status from %s to %s", from, req.Status))
		return
	}
	o.Status = req.Status
	copied := *o
	s.mu.Unlock()
	writeData(w, http.StatusOK, copied, nil)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 64)
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if o.Status != constant.RestockStatusDraft {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "only draft orders can be accepted")
		return
	}
	o.Status = constant.RestockStatusPending
	copied := *o
	s.mu.Unlock()
	writeData(w, http.StatusOK, copied, nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 64)
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if o.Status != constant.RestockStatusDraft {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "only draft orders can be deleted")
		return
	}
	delete(s.orders, orderID)
	for i, id := range s.orderIDs {
		if id == orderID {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]bool{"deleted": true}, nil)
}

func (s *Server) handleAgencyList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	agencies := make([]model.Agency, len(s.agencies))
	copy(agencies, s.agencies)
	s.mu.Unlock()
	writeData(w, http.StatusOK, agencies, nil)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func paginate(rows []model.RestockOrder, page, limit int) []model.RestockOrder {
	start := (page - 1) * limit
	if start >= len(rows) {
		return []model.RestockOrder{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func writeData(w http.ResponseWriter, status int, data interface{}, pagination *model.PaginationInfo) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(model.Envelope{Data: raw, PaginationInfo: pagination})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Envelope{Error: message})
}
