package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/financial-analyst/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const minimalConfig = `
database:
  source: ":memory:"
security:
  access_token_secret: test-access-secret-0123456789abcdef
  refresh_token_secret: test-refresh-secret-0123456789abcdef
`

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("APP_ENV", "")
		GinkgoT().Setenv("DOCKER_ENV", "")
		GinkgoT().Setenv("GOOGLE_API_KEY", "")
		GinkgoT().Setenv("ENV_LLM_API_KEY", "")
	})

	write := func(body string) {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
	}

	It("fills defaults around a minimal file", func() {
		write(minimalConfig)

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.LLM.PromptLimit()).To(Equal(internal.DefaultMaxPromptChars))
		Expect(cfg.Seed.File).To(Equal("db/seed.yml"))
	})

	It("falls back to GOOGLE_API_KEY", func() {
		write(minimalConfig)
		GinkgoT().Setenv("GOOGLE_API_KEY", "from-google-env")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.APIKey).To(Equal("from-google-env"))
		Expect(cfg.LLM.RequireAPIKey()).To(Succeed())
	})

	It("prefers the prefixed environment over the file", func() {
		write(minimalConfig + "llm:\n  api_key: from-file\n")
		GinkgoT().Setenv("ENV_LLM_API_KEY", "from-env")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.APIKey).To(Equal("from-env"))
	})

	It("rejects short secrets", func() {
		write("security:\n  access_token_secret: short\n  refresh_token_secret: short2\n")

		_, err := loadConfig(dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("at least 32 characters"))
	})

	It("fails without a config file", func() {
		_, err := loadConfig(dir)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("renderAnswer", func() {
	It("returns raw markdown in plain mode", func() {
		out, err := renderAnswer("**Revenue** grew", true, "dark")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("**Revenue** grew\n"))
	})

	It("renders markdown for the terminal", func() {
		out, err := renderAnswer("Revenue **grew** by 10%.", false, "notty")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Revenue"))
		Expect(out).To(ContainSubstring("10%"))
	})
})
