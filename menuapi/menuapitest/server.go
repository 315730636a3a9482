// Package menuapitest runs an in-memory stand-in for the restaurant API so the
// client, controller and bot can be exercised end to end in tests.
package menuapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"menu-telegram/models"
)

type account struct {
	user models.User
	hash []byte
}

type failure struct {
	status int
	detail string
}

// Server is a fake restaurant API backed by maps.
type Server struct {
	*httptest.Server

	// Brotli compresses responses when the client accepts br.
	Brotli bool

	secret []byte

	mu       sync.Mutex
	accounts map[string]*account
	menu     []models.MenuItem
	orders   []models.Order
	nextID   int64
	calls    map[string]int
	failures map[string]failure
	headers  http.Header
}

func New() *Server {
	s := &Server{
		secret:   []byte("menuapitest-secret"),
		accounts: make(map[string]*account),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		headers:  make(http.Header),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)
	r.With(s.authenticated).Post("/auth/become-master", s.becomeMaster)
	r.With(s.authenticated).Get("/me", s.me)

	r.Get("/menu", s.listMenu)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticated, s.master)
		r.Post("/menu", s.createMenuItem)
		r.Put("/menu/{id}", s.updateMenuItem)
		r.Delete("/menu/{id}", s.deleteMenuItem)
		r.Delete("/menu", s.clearMenu)
		r.Post("/orders/{id}/served", s.markServed)
		r.Delete("/orders", s.clearOrders)
		r.Get("/admin/users", s.listUsers)
		r.Delete("/admin/users/{id}", s.deleteUser)
	})
	r.With(s.authenticated).Post("/orders", s.createOrder)
	r.With(s.authenticated).Get("/orders", s.listOrders)
	return r
}

// Calls returns how many requests hit method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls returns the number of requests received.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// LastHeader returns a header of the most recent request.
func (s *Server) LastHeader(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Get(name)
}

// Fail makes every request to method+path answer status with detail until Recover.
func (s *Server) Fail(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// SeedUser registers an account directly and returns it.
func (s *Server) SeedUser(email, password string, master bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount(email, password, master).user
}

// SeedMenu appends items, assigning ids.
func (s *Server) SeedMenu(items ...models.MenuItem) []models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		s.nextID++
		it.ID = s.nextID
		s.menu = append(s.menu, it)
		out = append(out, it)
	}
	return out
}

// TokenFor issues a bearer token for a seeded account.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	acc := s.accounts[strings.ToLower(email)]
	s.mu.Unlock()
	if acc == nil {
		return ""
	}
	tok, _ := s.issue(acc.user.ID)
	return tok
}

func (s *Server) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders...)
}

func (s *Server) Menu() []models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MenuItem(nil), s.menu...)
}

func (s *Server) addAccount(email, password string, master bool) *account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.nextID++
	acc := &account{
		user: models.User{ID: s.nextID, Email: email, IsMaster: master},
		hash: hash,
	}
	s.accounts[strings.ToLower(email)] = acc
	return acc
}

func (s *Server) issue(userID int64) (string, error) {
	claims := jwt.StandardClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls[key]++
		s.headers = r.Header.Clone()
		f, failing := s.failures[key]
		s.mu.Unlock()
		if failing {
			s.fail(w, r, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxUser struct{}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header {
			s.fail(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims := &jwt.StandardClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			s.fail(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		id, _ := strconv.ParseInt(claims.Subject, 10, 64)
		s.mu.Lock()
		acc := s.accountByID(id)
		s.mu.Unlock()
		if acc == nil {
			s.fail(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), acc.user.ID)))
	})
}

func (s *Server) master(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		acc := s.accountByID(userFrom(r.Context()))
		isMaster := acc != nil && acc.user.IsMaster
		s.mu.Unlock()
		if !isMaster {
			s.fail(w, r, http.StatusForbidden, "Master access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accountByID(id int64) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || len(in.Password) < 6 {
		s.writeJSON(w, r, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]string{{"msg": "invalid registration"}},
		})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
		s.fail(w, r, http.StatusBadRequest, "Email already registered")
		return
	}
	acc := s.addAccount(in.Email, in.Password, false)
	s.writeJSON(w, r, http.StatusOK, acc.user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid form")
		return
	}
	s.mu.Lock()
	acc := s.accounts[strings.ToLower(r.PostForm.Get("username"))]
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(r.PostForm.Get("password"))) != nil {
		s.fail(w, r, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	tok, err := s.issue(acc.user.ID)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, r, http.StatusOK, models.Token{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) becomeMaster(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := userFrom(r.Context())
	for _, acc := range s.accounts {
		acc.user.IsMaster = acc.user.ID == id
	}
	s.writeJSON(w, r, http.StatusOK, s.accountByID(id).user)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, r, http.StatusOK, s.accountByID(userFrom(r.Context())).user)
}

func (s *Server) listMenu(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]models.MenuItem{}, s.menu...)
	s.writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var in models.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "Invalid menu item")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item := itemFromInput(s.nextID, in)
	s.menu = append(s.menu, item)
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var in models.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "Invalid menu item")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ID == id {
			s.menu[i] = itemFromInput(id, in)
			s.writeJSON(w, r, http.StatusOK, s.menu[i])
			return
		}
	}
	s.fail(w, r, http.StatusNotFound, "Menu item not found")
}

func (s *Server) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ID == id {
			s.menu = append(s.menu[:i], s.menu[i+1:]...)
			s.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}
	s.fail(w, r, http.StatusNotFound, "Menu item not found")
}

func (s *Server) clearMenu(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = nil
	s.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "Invalid order")
		return
	}
	if len(in.Items) == 0 {
		s.fail(w, r, http.StatusBadRequest, "Order is empty")
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		s.fail(w, r, http.StatusBadRequest, "Order name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []models.OrderLine
	var total int64
	for _, it := range in.Items {
		item, ok := s.menuItem(it.MenuItemID)
		if !ok {
			s.fail(w, r, http.StatusNotFound, "Menu item not found")
			return
		}
		line := models.OrderLine{
			MenuItemID:     item.ID,
			Name:           item.Name,
			Quantity:       it.Quantity,
			BasePriceCents: item.PriceCents,
		}
		extra := int64(0)
		for _, g := range item.Options {
			label := it.SelectedOptions[g.Name]
			if c, ok := g.Choice(label); ok && label != "" {
				line.Options = append(line.Options, models.SelectedOption{Group: g.Name, Label: label, PriceCents: c.PriceCents})
				extra += c.PriceCents
			}
		}
		line.LineTotalCents = (item.PriceCents + extra) * int64(it.Quantity)
		total += line.LineTotalCents
		lines = append(lines, line)
	}
	s.nextID++
	order := models.Order{
		ID:         s.nextID,
		UserID:     userFrom(r.Context()),
		Name:       &name,
		Items:      lines,
		TotalCents: total,
		CreatedAt:  models.Timestamp{Time: time.Now().UTC()},
	}
	s.orders = append(s.orders, order)
	s.writeJSON(w, r, http.StatusOK, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := userFrom(r.Context())
	acc := s.accountByID(id)
	out := []models.Order{}
	for _, o := range s.orders {
		if acc.user.IsMaster || o.UserID == id {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) markServed(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Served = true
			s.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}
	s.fail(w, r, http.StatusNotFound, "Order not found")
}

func (s *Server) clearOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = nil
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	s.writeJSON(w, r, http.StatusOK, users)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == userFrom(r.Context()) {
		s.fail(w, r, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	for key, acc := range s.accounts {
		if acc.user.ID == id {
			delete(s.accounts, key)
			s.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}
	s.fail(w, r, http.StatusNotFound, "User not found")
}

func (s *Server) menuItem(id int64) (models.MenuItem, bool) {
	for _, it := range s.menu {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

func itemFromInput(id int64, in models.MenuItemInput) models.MenuItem {
	return models.MenuItem{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		PriceCents:  in.PriceCents,
		ImageURL:    in.ImageURL,
		Options:     in.Options,
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	s.writeJSON(w, r, status, map[string]string{"detail": detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if s.Brotli && strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
		w.Header().Set("Content-Encoding", "br")
		w.WriteHeader(status)
		bw := brotli.NewWriter(w)
		defer bw.Close()
		_ = json.NewEncoder(bw).Encode(v)
		return
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
