package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/financial-analyst/api"
	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("redaction", func() {
	It("masks sensitive JSON keys at any depth", func() {
		out := redactBody([]byte(`{"username":"reliance_ceo","password":"password123","nested":{"refresh_token":"abc"}}`))
		Expect(out).To(ContainSubstring(`"username":"reliance_ceo"`))
		Expect(out).NotTo(ContainSubstring("password123"))
		Expect(out).NotTo(ContainSubstring("abc"))
		Expect(strings.Count(out, filtered)).To(Equal(2))
	})

	It("drops non-JSON bodies that mention a sensitive field", func() {
		Expect(redactBody([]byte("password=hunter2"))).To(Equal("[FILTERED - contains sensitive data]"))
		Expect(redactBody([]byte("plain text"))).To(Equal("plain text"))
	})

	It("masks sensitive headers", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer xyz")
		h.Set("Accept", "application/json")
		out := redactHeaders(h)
		Expect(out["Authorization"]).To(Equal(filtered))
		Expect(out["Accept"]).To(Equal("application/json"))
	})

	It("truncates long bodies", func() {
		out := truncateForLog(strings.Repeat("x", maxLoggedBody+10))
		Expect(out).To(HaveSuffix("...(truncated)"))
		Expect(len(out)).To(Equal(maxLoggedBody + len("...(truncated)")))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	serve := func(status int, body string) {
		lg := slog.New(slog.NewJSONHandler(buf, nil))
		h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"u","password":"secret-pass"}`))
		req.Header.Set("Authorization", "Bearer token-value")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	It("never logs credentials", func() {
		serve(http.StatusOK, `{"access_token":"issued"}`)
		Expect(buf.String()).NotTo(ContainSubstring("secret-pass"))
		Expect(buf.String()).NotTo(ContainSubstring("token-value"))
		Expect(buf.String()).NotTo(ContainSubstring("issued"))
	})

	It("logs the body of error responses", func() {
		serve(http.StatusForbidden, `{"error":{"code":"COMPANY_FORBIDDEN"}}`)
		Expect(buf.String()).To(ContainSubstring("COMPANY_FORBIDDEN"))
		Expect(buf.String()).To(ContainSubstring(`"level":"WARN"`))
	})
})

var _ = Describe("RequestID", func() {
	It("reuses the incoming id", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = chiMiddleware.GetReqID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(seen).To(Equal("req-1"))
		Expect(rec.Header().Get(RequestIDHeader)).To(Equal("req-1"))
	})

	It("mints one when absent", func() {
		rec := httptest.NewRecorder()
		RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Header().Get(RequestIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers 500 with the error envelope", func() {
		h := RecoveryMiddleware(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("CORS", func() {
	It("answers preflight for an allowed origin", func() {
		h := CORS("http://localhost:8501")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/companies", nil)
		req.Header.Set("Origin", "http://localhost:8501")
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:8501"))
	})

	It("adds no headers for other origins", func() {
		h := CORS("http://localhost:8501")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

type fakeAccess struct {
	allowed map[int64]bool
	err     error
	calls   int
}

func (f *fakeAccess) HasAccess(_ context.Context, _ int64, companyID int64) (bool, error) {
	f.calls++
	return f.allowed[companyID], f.err
}

var _ = Describe("RequireCompanyAccess", func() {
	var (
		access *fakeAccess
		router *chi.Mux
		user   *internal.SessionUser
	)

	BeforeEach(func() {
		access = &fakeAccess{allowed: map[int64]bool{1: true}}
		user = &internal.SessionUser{ID: 7, Username: "reliance_ceo", Role: "CEO"}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if user != nil {
					r = r.WithContext(internal.ContextWithUser(r.Context(), user))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.With(RequireCompanyAccess(access, "companyID", discard)).
			Get("/companies/{companyID}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	It("passes a granted company through", func() {
		Expect(get("/companies/1").Code).To(Equal(http.StatusNoContent))
	})

	It("forbids a company without a grant", func() {
		rec := get("/companies/3")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeCompanyForbidden)))
	})

	It("rejects a malformed id without checking access", func() {
		Expect(get("/companies/0").Code).To(Equal(http.StatusBadRequest))
		Expect(access.calls).To(BeZero())
	})

	It("requires a session user", func() {
		user = nil
		Expect(get("/companies/1").Code).To(Equal(http.StatusUnauthorized))
	})

	It("reports a failing check as internal", func() {
		access.err = errors.New("db down")
		Expect(get("/companies/1").Code).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("OpenAPIValidator", func() {
	var h http.Handler

	BeforeEach(func() {
		v, err := NewOpenAPIValidator(api.Spec, discard)
		Expect(err).NotTo(HaveOccurred())
		h = v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	It("accepts a well-formed login", func() {
		Expect(post("/api/v1/auth/login", `{"username":"a","password":"b"}`).Code).To(Equal(http.StatusNoContent))
	})

	It("rejects a login missing the password", func() {
		rec := post("/api/v1/auth/login", `{"username":"a"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeValidationFailed)))
	})

	It("rejects a non-integer company id", func() {
		Expect(post("/api/v1/companies/abc/questions", `{"question":"q"}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("passes unknown paths through", func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})
