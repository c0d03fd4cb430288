package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carloan-service/internal/domain"
	"carloan-service/internal/repository"
	"carloan-service/internal/service"
	"carloan-service/internal/transport/auth"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type stubReports struct{}

func (stubReports) StartLoansReport(context.Context, int64) (string, error) {
	return "reports:test", nil
}
func (stubReports) GetReports(context.Context, int64) ([]service.ReportStatus, error) {
	return []service.ReportStatus{}, nil
}
func (stubReports) GetReport(context.Context, string, int64) (*service.ReportStatus, error) {
	return &service.ReportStatus{Key: "reports:test"}, nil
}

// newTestServer wires the full handler stack over in-memory repositories:
// user john owns car 1 (active retail loan) and car 2 (no loan), car 3
// belongs to someone else.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	userRepo := repository.NewUserRepository([]domain.User{
		{ID: 1, Username: "john", PasswordHash: string(hash), FullName: "John Doe"},
	})
	carRepo := repository.NewCarRepository([]domain.Car{
		{ID: 1, Make: "Honda", Model: "Civic", Year: 2023, VIN: "VIN0001", UserID: 1},
		{ID: 2, Make: "Porsche", Model: "Macan", Year: 2024, VIN: "VIN0002", UserID: 1},
		{ID: 3, Make: "Ford", Model: "F-150", Year: 2022, VIN: "VIN0003", UserID: 2},
	})
	loanRepo := repository.NewLoanRepository([]domain.LoanRecord{
		{
			ID: 1, CarID: 1, Kind: domain.KindRetail,
			OriginalAmount: 25000, PayoffAmount: 18000,
			StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Retail:    &domain.RetailTerms{InterestRate: 4.5, TermInMonths: 60},
		},
	})

	loanSvc := service.NewLoanService(loanRepo)
	carSvc := service.NewCarService(carRepo, loanRepo)
	userSvc := service.NewUserService(userRepo)
	sessions := auth.NewMemorySessionStore(time.Hour)

	h := NewHandler(loanSvc, carSvc, userSvc, stubReports{}, sessions, nil)

	root := chi.NewRouter()
	root.Post("/login", h.Login)
	root.Mount("/", h.InitRouter())

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) *http.Cookie {
	t.Helper()

	resp, err := http.Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"username":"john","password":"secret"}`))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.SessionCookie {
			return ck
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func doJSON(t *testing.T, method, url, body string, cookie *http.Cookie) (*http.Response, APIResponse) {
	t.Helper()

	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("{}")
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/me/cars", "/cars/1/loan", "/reports"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without session = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"username":"john","password":"nope"}`))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestListMyCars(t *testing.T) {
	srv := newTestServer(t)
	ck := login(t, srv)

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/me/cars", "", ck)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cars, ok := out.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want array", out.Data)
	}
	if len(cars) != 2 {
		t.Fatalf("got %d cars, want 2", len(cars))
	}

	first := cars[0].(map[string]any)
	if first["loan"] == nil {
		t.Error("car 1 came back without its loan attached")
	}
}

func TestPayoffFlow(t *testing.T) {
	srv := newTestServer(t)
	ck := login(t, srv)

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/cars/1/loan/payoff", `{"name":"John Doe"}`, ck)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payoff status = %d", resp.StatusCode)
	}
	data := out.Data.(map[string]any)
	if data["paid_off"] != true {
		t.Fatalf("paid_off = %v, want true", data["paid_off"])
	}

	// second payoff is a normal no-op, not an error
	resp, out = doJSON(t, http.MethodPost, srv.URL+"/cars/1/loan/payoff", `{"name":"Jane Smith"}`, ck)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second payoff status = %d", resp.StatusCode)
	}
	if out.Data.(map[string]any)["paid_off"] != false {
		t.Error("second payoff reported paid_off = true")
	}

	// settled state is visible on the loan resource
	_, out = doJSON(t, http.MethodGet, srv.URL+"/cars/1/loan", "", ck)
	loan := out.Data.(map[string]any)
	if loan["is_paid_off"] != true || loan["paid_off_by"] != "John Doe" {
		t.Errorf("loan after payoff = %v", loan)
	}
}

func TestPayoffValidation(t *testing.T) {
	srv := newTestServer(t)
	ck := login(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/cars/1/loan/payoff", `{"name":"   "}`, ck)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank payer status = %d, want 400", resp.StatusCode)
	}

	// someone else's car reads as not found
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/cars/3/loan/payoff", `{"name":"John Doe"}`, ck)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign car status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/cars/2/loan", "", ck)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("loan-free car status = %d, want 404", resp.StatusCode)
	}
}

func TestLoanQuote(t *testing.T) {
	srv := newTestServer(t)
	ck := login(t, srv)

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/cars/1/loan/quote", "", ck)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	quote := out.Data.(map[string]any)
	if quote["kind"] != "Retail" {
		t.Errorf("kind = %v", quote["kind"])
	}
	monthly, ok := quote["monthly_payment"].(float64)
	if !ok || monthly <= 0 {
		t.Errorf("monthly_payment = %v, want positive number", quote["monthly_payment"])
	}
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	ck := login(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/logout", "", ck)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/me/cars", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(ck)
	got, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	got.Body.Close()
	if got.StatusCode != http.StatusUnauthorized {
		t.Errorf("request after logout = %d, want 401", got.StatusCode)
	}
}
