package handlers

import (
	"context"
	"net/http"

	"foodsense"
	"foodsense/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks (used by handler tests) ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockClassifier struct {
	rec         foodsense.PredictionRecord
	err         error
	lastSensors []float64
}

func (m *mockClassifier) Classify(_ context.Context, sensors []float64) (foodsense.PredictionRecord, error) {
	m.lastSensors = append([]float64(nil), sensors...)
	return m.rec, m.err
}

type mockPredictionLog struct {
	latest     foodsense.PredictionRecord
	latestErr  error
	list       []foodsense.PredictionRecord
	listErr    error
	lastFilter service.HistoryFilter
}

func (m *mockPredictionLog) Latest(_ context.Context) (foodsense.PredictionRecord, error) {
	return m.latest, m.latestErr
}

func (m *mockPredictionLog) List(_ context.Context, f service.HistoryFilter) ([]foodsense.PredictionRecord, error) {
	m.lastFilter = f
	return m.list, m.listErr
}

// newMockService assembles a Service backed entirely by local mocks.
func newMockService(auth *mockAuth, cls *mockClassifier, log *mockPredictionLog) *service.Service {
	s := &service.Service{}
	if auth != nil {
		s.Authorization = auth
	}
	if cls != nil {
		s.Classifier = cls
	}
	if log != nil {
		s.PredictionLog = log
	}
	return s
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
