package extraction_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/core/events"
	"github.com/frahmantamala/financial-analyst/internal/extraction"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	"github.com/frahmantamala/financial-analyst/internal/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestExtraction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extraction Suite")
}

type fakeReader struct {
	text string
	err  error
}

func (f fakeReader) ExtractText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type memorySaver struct {
	records []financial.Record
	failFor int
}

func (m *memorySaver) Save(_ context.Context, r financial.Record) error {
	if r.Year == m.failFor {
		return errors.New("disk full")
	}
	m.records = append(m.records, r)
	return nil
}

func replying(reply string) llm.Model {
	return llm.ModelFunc(func(_ context.Context, _ string) (string, error) {
		return reply, nil
	})
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("ParseResponse", func() {
	It("should parse fenced and unfenced payloads identically", func() {
		plain, err := extraction.ParseResponse(`{"2024": {"Revenue from Operations": 100}}`)
		Expect(err).NotTo(HaveOccurred())

		fenced, err := extraction.ParseResponse("Here you go:\n```json\n{\"2024\": {\"Revenue from Operations\": 100}}\n```\nThanks")
		Expect(err).NotTo(HaveOccurred())

		Expect(fenced).To(Equal(plain))
		Expect(plain["2024"]["Revenue from Operations"].String()).To(Equal("100"))
	})

	It("should coerce numeric strings and null out the rest", func() {
		got, err := extraction.ParseResponse(`{"2023": {"Total Assets": "1,500", "Total Equity": "n/a", "Other Income": null}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(got["2023"]["Total Assets"].String()).To(Equal("1500"))
		Expect(got["2023"]["Total Equity"].IsNull()).To(BeTrue())
		Expect(got["2023"]["Other Income"].IsNull()).To(BeTrue())
	})

	It("should fail on non-JSON replies", func() {
		_, err := extraction.ParseResponse("I could not find any figures.")
		Expect(err).To(HaveOccurred())
	})

	It("should fail when the payload is not an object", func() {
		_, err := extraction.ParseResponse(`[1, 2]`)
		Expect(err).To(HaveOccurred())
	})

	It("should keep years whose value is not an object as nil", func() {
		got, err := extraction.ParseResponse(`{"2024": 5}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveKey("2024"))
		Expect(got["2024"]).To(BeNil())
	})
})

var _ = Describe("Prompt", func() {
	It("should list every canonical metric and embed the text", func() {
		prompt := extraction.BuildExtractionPrompt("BALANCE SHEET")
		for _, m := range financial.CanonicalMetrics {
			Expect(prompt).To(ContainSubstring(m))
		}
		Expect(prompt).To(ContainSubstring("BALANCE SHEET"))
	})

	It("should truncate by characters", func() {
		Expect(extraction.Truncate("₹₹₹₹", 2)).To(Equal("₹₹"))
		Expect(extraction.Truncate("abc", 10)).To(Equal("abc"))
		Expect(extraction.Truncate("abc", 0)).To(Equal("abc"))
	})
})

var _ = Describe("Pipeline", func() {
	var (
		ctx      context.Context
		saver    *memorySaver
		bus      *events.EventBus
		received []events.Event
	)

	BeforeEach(func() {
		ctx = context.Background()
		saver = &memorySaver{}
		received = nil
		bus = events.NewEventBus(discard)
		record := func(_ context.Context, e events.Event) error {
			received = append(received, e)
			return nil
		}
		bus.Subscribe(events.EventTypeDocumentIngested, record)
		bus.Subscribe(events.EventTypeDocumentIngestionFailed, record)
	})

	newPipeline := func(reader extraction.TextExtractor, model llm.Model, opts ...extraction.Option) *extraction.Pipeline {
		opts = append(opts, extraction.WithPublisher(bus))
		return extraction.NewPipeline(reader, model, saver, discard, opts...)
	}

	It("should store every year with the document base name", func() {
		p := newPipeline(fakeReader{text: "statement"}, replying("```json\n{\"2023\": {\"Total Assets\": 10}, \"2024\": {\"Total Assets\": 12}}\n```"))

		res, err := p.ProcessDocument(ctx, 1, "/data/reports/reliance_2024.pdf")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.StoredYears).To(Equal([]int{2023, 2024}))
		Expect(saver.records).To(HaveLen(2))
		Expect(saver.records[0].SourceDocument).To(Equal("reliance_2024.pdf"))
		Expect(received).To(HaveLen(1))
		Expect(received[0].EventType()).To(Equal(events.EventTypeDocumentIngested))
	})

	It("should persist nothing when the reply is not JSON", func() {
		p := newPipeline(fakeReader{text: "statement"}, replying("Sorry, no data."))

		res, err := p.ProcessDocument(ctx, 1, "report.pdf")

		Expect(err).To(MatchError(internal.ErrExtraction))
		Expect(res).To(BeNil())
		Expect(saver.records).To(BeEmpty())
		Expect(received[0].(*events.DocumentIngestionFailedEvent).Stage).To(Equal(extraction.StageExtract))
	})

	It("should report ModelUnavailable when the model call fails", func() {
		model := llm.ModelFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("quota exceeded")
		})
		p := newPipeline(fakeReader{text: "statement"}, model)

		_, err := p.ProcessDocument(ctx, 1, "report.pdf")

		Expect(err).To(MatchError(internal.ErrModelUnavailable))
		Expect(saver.records).To(BeEmpty())
	})

	It("should stop before the model when the document cannot be read", func() {
		called := false
		model := llm.ModelFunc(func(_ context.Context, _ string) (string, error) {
			called = true
			return "{}", nil
		})
		p := newPipeline(fakeReader{err: os.ErrNotExist}, model)

		_, err := p.ProcessDocument(ctx, 1, "missing.pdf")

		Expect(err).To(MatchError(internal.ErrDocumentRead))
		Expect(called).To(BeFalse())
		Expect(received[0].(*events.DocumentIngestionFailedEvent).Stage).To(Equal(extraction.StageRead))
	})

	It("should keep going when one year fails", func() {
		saver.failFor = 2023
		p := newPipeline(fakeReader{text: "statement"}, replying(`{"FY2022": {"Total Assets": 1}, "2023": {"Total Assets": 2}, "2024": {"Total Assets": 3}}`))

		res, err := p.ProcessDocument(ctx, 1, "report.pdf")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.StoredYears).To(Equal([]int{2024}))
		Expect(res.FailedKeys()).To(ConsistOf("FY2022", "2023"))
		Expect(received[0].(*events.DocumentIngestedEvent).FailedYears).To(ConsistOf("FY2022", "2023"))
	})

	It("should send only the first characters of long documents", func() {
		var seen string
		model := llm.ModelFunc(func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return `{"2024": {}}`, nil
		})
		p := newPipeline(fakeReader{text: strings.Repeat("a", 50) + "TAIL"}, model, extraction.WithMaxChars(50))

		_, err := p.ProcessDocument(ctx, 1, "report.pdf")

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(ContainSubstring(strings.Repeat("a", 50)))
		Expect(seen).NotTo(ContainSubstring("TAIL"))
	})

	It("should fail when the reply contains no years", func() {
		p := newPipeline(fakeReader{text: "statement"}, replying("{}"))

		_, err := p.ProcessDocument(ctx, 1, "report.pdf")
		Expect(err).To(MatchError(internal.ErrExtraction))
	})
})

var _ = Describe("PDFReader", func() {
	It("should fail on a missing file", func() {
		_, err := extraction.NewPDFReader().ExtractText(context.Background(), filepath.Join(GinkgoT().TempDir(), "nope.pdf"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on a file that is not a PDF", func() {
		path := filepath.Join(GinkgoT().TempDir(), "fake.pdf")
		Expect(os.WriteFile(path, []byte("definitely not a pdf"), 0o600)).To(Succeed())

		_, err := extraction.NewPDFReader().ExtractText(context.Background(), path)
		Expect(err).To(HaveOccurred())
	})
})
