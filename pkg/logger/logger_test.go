package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/financial-analyst/pkg/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("logger", func() {
	It("builds a JSON logger honoring the level", func() {
		var buf bytes.Buffer
		lg := logger.New(&buf, "warn", "json")
		lg.Info("hidden")
		lg.Warn("shown", "company_id", 1)

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring(`"msg":"shown"`))
		Expect(buf.String()).To(ContainSubstring(`"company_id":1`))
	})

	It("defaults unknown levels to info", func() {
		Expect(logger.ParseLevel("verbose")).To(Equal(slog.LevelInfo))
		Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
	})

	It("scopes a component logger to the request fields", func() {
		var buf bytes.Buffer
		base := logger.New(&buf, "info", "text")

		ctx := logger.With(context.Background(), "request_id", "req-1")
		ctx = logger.With(ctx, "user_id", 7)
		logger.Scoped(ctx, base).Info("answering question")

		Expect(buf.String()).To(ContainSubstring("request_id=req-1"))
		Expect(buf.String()).To(ContainSubstring("user_id=7"))
		Expect(logger.Fields(context.Background())).To(BeEmpty())
	})

	It("leaves the parent context untouched", func() {
		parent := logger.With(context.Background(), "request_id", "req-1")
		_ = logger.With(parent, "user_id", 7)
		Expect(logger.Fields(parent)).To(Equal([]any{"request_id", "req-1"}))
	})
})
