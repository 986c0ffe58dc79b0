/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fake is an in-memory Foody API used to exercise the client and
// the ordered suite without a deployed service.
package fake

import (
	"cmp"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

const (
	MsgCreated      = "Successfully created"
	MsgEdited       = "Successfully edited"
	MsgDeleted      = "Deleted successfully!"
	MsgNotFound     = "No food revues..."
	MsgUnableDelete = "Unable to delete this food revue!"
	MsgUnauthorized = "Unauthorized"
	MsgBadLogin     = "Invalid username or password"

	issuer = "foody-fake"
)

var errInvalidToken = errors.New("invalid access token")

// Food is a stored food revue.
type Food struct {
	ID          int64  `json:"-"`
	Name        string `json:"Name" validate:"required"`
	Description string `json:"Description" validate:"required"`
	URL         string `json:"Url"`
}

// patchable is the document edit patches apply to. Paths are matched
// case-insensitively, so keys are kept lower case.
type patchable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Request is a call the server received, in arrival order.
type Request struct {
	Method      string
	Path        string
	TraceParent string
	Authorized  bool
}

type login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type message struct {
	Msg    string `json:"msg"`
	FoodID *int64 `json:"foodId,omitempty"`
}

type validationProblem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

// Option customizes a Server.
type Option func(*Server)

// WithTokenTTL sets how long issued access tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// WithClock overrides the time source used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithFoods seeds the store.
func WithFoods(foods ...Food) Option {
	return func(s *Server) {
		for _, food := range foods {
			s.nextID++
			food.ID = s.nextID
			s.foods[food.ID] = food
		}
	}
}

// Server is an http.Handler implementing the Foody API for one user.
type Server struct {
	username string
	password string
	key      []byte
	tokenTTL time.Duration
	now      func() time.Time
	validate *validator.Validate
	handler  http.Handler

	lock     sync.Mutex
	nextID   int64
	foods    map[int64]Food
	requests []Request
}

var _ http.Handler = &Server{}

// New returns a server that accepts the given credentials.
func New(username, password string, opts ...Option) *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)

	s := &Server{
		username: username,
		password: password,
		key:      key,
		tokenTTL: time.Hour,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		nextID:   559000000,
		foods:    map[int64]Food{},
	}

	for _, o := range opts {
		o(s)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.record)

	router.Post("/api/User/Authentication", s.authenticate)

	router.Route("/api/Food", func(r chi.Router) {
		r.Use(s.authorize)
		r.Post("/Create", s.createFood)
		r.Patch("/Edit/{foodID}", s.editFood)
		r.Get("/All", s.listFoods)
		r.Delete("/Delete/{foodID}", s.deleteFood)
	})

	s.handler = router

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Clone(s.requests)
}

// Foods returns the stored foods ordered by id.
func (s *Server) Foods() []Food {
	s.lock.Lock()
	defer s.lock.Unlock()

	foods := make([]Food, 0, len(s.foods))
	for _, food := range s.foods {
		foods = append(foods, food)
	}

	slices.SortFunc(foods, func(a, b Food) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return foods
}

// IssueToken returns a valid access token, as a successful login would.
func (s *Server) IssueToken() (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: s.key}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}

	now := s.now()

	claims := jwt.Claims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   s.username,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	return jwt.Signed(signer).Claims(claims).Serialize()
}

func (s *Server) verifyToken(raw string) error {
	token, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return errors.Join(errInvalidToken, err)
	}

	var claims jwt.Claims

	if err := token.Claims(s.key, &claims); err != nil {
		return errors.Join(errInvalidToken, err)
	}

	expected := jwt.Expected{
		Issuer:  issuer,
		Subject: s.username,
		Time:    s.now(),
	}

	if err := claims.ValidateWithLeeway(expected, 0); err != nil {
		return errors.Join(errInvalidToken, err)
	}

	return nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			TraceParent: r.Header.Get("Traceparent"),
			Authorized:  r.Header.Get("Authorization") != "",
		})
		s.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeMessage(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}

		if err := s.verifyToken(raw); err != nil {
			writeMessage(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var credentials login

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if credentials.Username != s.username || credentials.Password != s.password {
		writeMessage(w, http.StatusUnauthorized, MsgBadLogin)
		return
	}

	token, err := s.IssueToken()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}

func (s *Server) createFood(w http.ResponseWriter, r *http.Request) {
	var food Food

	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.validate.Struct(&food); err != nil {
		writeValidationProblem(w, err)
		return
	}

	s.lock.Lock()
	s.nextID++
	food.ID = s.nextID
	s.foods[food.ID] = food
	s.lock.Unlock()

	writeJSON(w, http.StatusCreated, message{Msg: MsgCreated, FoodID: &food.ID})
}

func (s *Server) editFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "foodID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, MsgNotFound)
		return
	}

	var operations []map[string]any

	if err := json.NewDecoder(r.Body).Decode(&operations); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	food, ok := s.foods[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, MsgNotFound)
		return
	}

	edited, err := applyPatch(food, operations)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	s.foods[id] = edited

	writeMessage(w, http.StatusOK, MsgEdited)
}

func (s *Server) listFoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Foods())
}

func (s *Server) deleteFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "foodID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, MsgUnableDelete)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.foods[id]; !ok {
		writeMessage(w, http.StatusBadRequest, MsgUnableDelete)
		return
	}

	delete(s.foods, id)

	writeMessage(w, http.StatusOK, MsgDeleted)
}

func applyPatch(food Food, operations []map[string]any) (Food, error) {
	for _, operation := range operations {
		if path, ok := operation["path"].(string); ok {
			operation["path"] = strings.ToLower(path)
		}
	}

	raw, err := json.Marshal(operations)
	if err != nil {
		return food, err
	}

	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return food, err
	}

	doc, err := json.Marshal(patchable{Name: food.Name, Description: food.Description, URL: food.URL})
	if err != nil {
		return food, err
	}

	doc, err = patch.Apply(doc)
	if err != nil {
		return food, err
	}

	var edited patchable

	if err := json.Unmarshal(doc, &edited); err != nil {
		return food, err
	}

	food.Name = edited.Name
	food.Description = edited.Description
	food.URL = edited.URL

	return food, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message{Msg: msg})
}

func writeValidationProblem(w http.ResponseWriter, err error) {
	problem := validationProblem{
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: map[string][]string{},
	}

	var fieldErrors validator.ValidationErrors

	if errors.As(err, &fieldErrors) {
		for _, fieldError := range fieldErrors {
			problem.Errors[fieldError.Field()] = append(problem.Errors[fieldError.Field()], "The "+fieldError.Field()+" field is required.")
		}
	}

	writeJSON(w, http.StatusBadRequest, problem)
}
