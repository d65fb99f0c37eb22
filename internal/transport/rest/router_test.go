package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/analysis"
	"github.com/frahmantamala/financial-analyst/internal/auth"
	authStore "github.com/frahmantamala/financial-analyst/internal/auth/store"
	"github.com/frahmantamala/financial-analyst/internal/company"
	companyStore "github.com/frahmantamala/financial-analyst/internal/company/store"
	"github.com/frahmantamala/financial-analyst/internal/database"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	financialStore "github.com/frahmantamala/financial-analyst/internal/financial/store"
	"github.com/frahmantamala/financial-analyst/internal/llm"
	"github.com/frahmantamala/financial-analyst/internal/seed"
	"github.com/frahmantamala/financial-analyst/internal/testutil"
	"github.com/frahmantamala/financial-analyst/internal/transport"
	"github.com/frahmantamala/financial-analyst/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const seedYAML = `
companies:
  - name: Reliance Industries
    group: Ambani Group
  - name: Jio Platforms
    group: Ambani Group
  - name: Other Company
    group: Other Group
users:
  - username: mukesh_ambani
    password: password123
    role: GroupOwner
    groups: [Ambani Group]
  - username: reliance_ceo
    password: password123
    role: CEO
    companies: [Reliance Industries]
  - username: nobody
    password: password123
    role: Analyst
`

var _ = Describe("API", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		server    *httptest.Server
		modelErr  error
		modelText string
		prompts   []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		modelErr = nil
		modelText = "Revenue grew steadily."
		prompts = nil

		var err error
		db, err = testutil.OpenMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		sx, err := database.SQLX(db, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		tokens := auth.NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			0, 0,
		)
		authSvc := auth.NewService(authStore.NewUserRepository(db), tokens, 4, lg)
		companySvc := company.NewService(companyStore.NewCompanyRepository(db, sx), lg)
		financialSvc := financial.NewService(financialStore.NewFinancialRepository(db), companySvc, lg)

		model := llm.ModelFunc(func(_ context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return modelText, modelErr
		})
		analysisSvc := analysis.NewService(model, financialSvc, lg)

		file, err := seed.Parse([]byte(seedYAML))
		Expect(err).NotTo(HaveOccurred())
		_, err = seed.NewSeeder(authSvc, companySvc, lg).Apply(ctx, file)
		Expect(err).NotTo(HaveOccurred())

		reliance, err := companySvc.Ensure(ctx, "Reliance Industries", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(financialSvc.Save(ctx, financial.Record{
			CompanyID: reliance.ID,
			Year:      2023,
			Metrics: financial.Metrics{
				"Revenue from Operations": financial.NewValue(decimal.NewFromInt(500)),
				"Net Profit":              financial.NullValue(),
			},
			SourceDocument: "report.pdf",
		})).To(Succeed())

		base := transport.NewBaseHandler(lg)
		router := chi.NewRouter()
		Expect(rest.RegisterAllRoutes(router, rest.Handlers{
			Health:    rest.NewHealthHandler(sx, internal.DriverSQLite),
			Auth:      auth.NewHandler(authSvc),
			Company:   company.NewHandler(base, companySvc),
			Financial: financial.NewHandler(base, financialSvc),
			Analysis:  analysis.NewHandler(base, analysisSvc),
			Access:    companySvc,
		}, rest.RouterOptions{AllowedOrigins: "*", Logger: lg})).To(Succeed())

		server = httptest.NewServer(router)
	})

	AfterEach(func() {
		server.Close()
		testutil.Close(db)
	})

	do := func(method, path, token string, body any) (*http.Response, map[string]any) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, server.URL+path, reader)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		out := map[string]any{}
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &out)
		}
		return resp, out
	}

	login := func(username string) string {
		resp, body := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": username,
			"password": "password123",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		token, ok := body["access_token"].(string)
		Expect(ok).To(BeTrue())
		return token
	}

	errorCode := func(body map[string]any) string {
		e, ok := body["error"].(map[string]any)
		if !ok {
			return ""
		}
		code, _ := e["code"].(string)
		return code
	}

	Describe("health", func() {
		It("reports the database as reachable", func() {
			resp, _ := do(http.MethodGet, "/api/v1/health", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("login", func() {
		It("returns tokens and the user", func() {
			resp, body := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
				"username": "reliance_ceo",
				"password": "password123",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKey("refresh_token"))
			user := body["user"].(map[string]any)
			Expect(user["username"]).To(Equal("reliance_ceo"))
			Expect(user["role"]).To(Equal("CEO"))
			Expect(user).NotTo(HaveKey("password_hash"))
		})

		It("fails the same way for an unknown user and a wrong password", func() {
			r1, b1 := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
				"username": "ghost", "password": "password123",
			})
			r2, b2 := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
				"username": "reliance_ceo", "password": "wrong",
			})
			Expect(r1.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(r2.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(b1).To(Equal(b2))
		})

		It("rejects a body missing required fields before reaching the handler", func() {
			resp, _ := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "x"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("protected routes", func() {
		It("require a bearer token", func() {
			resp, _ := do(http.MethodGet, "/api/v1/companies", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("return the current user", func() {
			token := login("reliance_ceo")
			resp, body := do(http.MethodGet, "/api/v1/users/me", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["username"]).To(Equal("reliance_ceo"))
		})
	})

	Describe("companies", func() {
		It("lists only granted companies", func() {
			token := login("reliance_ceo")
			resp, body := do(http.MethodGet, "/api/v1/companies", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			companies := body["companies"].([]any)
			Expect(companies).To(HaveLen(1))
			Expect(companies[0].(map[string]any)["name"]).To(Equal("Reliance Industries"))
			Expect(body).NotTo(HaveKey("warning"))
		})

		It("lists the whole group for a group owner", func() {
			token := login("mukesh_ambani")
			_, body := do(http.MethodGet, "/api/v1/companies", token, nil)
			Expect(body["companies"]).To(HaveLen(2))
		})

		It("warns a user without grants", func() {
			token := login("nobody")
			resp, body := do(http.MethodGet, "/api/v1/companies", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["companies"]).To(BeEmpty())
			Expect(body["warning"]).To(Equal(internal.NoAccessibleCompaniesWarning))
		})
	})

	Describe("financials", func() {
		It("returns the table for a granted company", func() {
			token := login("reliance_ceo")
			resp, body := do(http.MethodGet, "/api/v1/companies/1/financials", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["company_name"]).To(Equal("Reliance Industries"))

			rows := body["rows"].([]any)
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].(map[string]any)["year"]).To(BeEquivalentTo(2023))
		})

		It("forbids a company without a grant", func() {
			token := login("reliance_ceo")
			resp, body := do(http.MethodGet, "/api/v1/companies/3/financials", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal(string(internal.ErrCodeCompanyForbidden)))
		})

		It("forbids an unknown company", func() {
			token := login("reliance_ceo")
			resp, _ := do(http.MethodGet, "/api/v1/companies/999/financials", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("reports a granted company without data", func() {
			token := login("mukesh_ambani")
			resp, body := do(http.MethodGet, "/api/v1/companies/2/financials", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(errorCode(body)).To(Equal(string(internal.ErrCodeNoDataFound)))
		})

		It("rejects a non-numeric company id", func() {
			token := login("reliance_ceo")
			resp, _ := do(http.MethodGet, "/api/v1/companies/abc/financials", token, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("questions", func() {
		It("answers from the stored table", func() {
			token := login("reliance_ceo")
			resp, body := do(http.MethodPost, "/api/v1/companies/1/questions", token, map[string]string{
				"question": "How did revenue change?",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["answer"]).To(Equal("Revenue grew steadily."))

			Expect(prompts).To(HaveLen(1))
			Expect(prompts[0]).To(ContainSubstring("| 2023 | 500 | N/A |"))
			Expect(prompts[0]).To(ContainSubstring("How did revenue change?"))
		})

		It("falls back when the model fails", func() {
			modelErr = errors.New("quota exceeded")
			token := login("reliance_ceo")
			resp, body := do(http.MethodPost, "/api/v1/companies/1/questions", token, map[string]string{
				"question": "Summarize",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["answer"]).To(Equal(analysis.FallbackAnswer))
		})

		It("does not call the model for a forbidden company", func() {
			token := login("reliance_ceo")
			resp, _ := do(http.MethodPost, "/api/v1/companies/3/questions", token, map[string]string{
				"question": "Summarize",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(prompts).To(BeEmpty())
		})

		It("rejects an over-long question", func() {
			token := login("reliance_ceo")
			resp, _ := do(http.MethodPost, "/api/v1/companies/1/questions", token, map[string]string{
				"question": strings.Repeat("a", 2001),
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(prompts).To(BeEmpty())
		})
	})
})
