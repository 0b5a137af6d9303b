package scanning

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func tinyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 128, A: 255})
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		ollama *Ollama
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		ollama, err = NewOllama(server.URL()+"/", "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("ScanText", func() {
		var data []byte

		BeforeEach(func() {
			data = tinyPNG()
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(decodeJSON(r, &req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Content).To(Equal(ocrPrompt))
					Expect(req.Messages[1].Images).To(ConsistOf(base64.StdEncoding.EncodeToString(data)))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nCHÂTEAU MARGAUX\n2015\n```"},
					Done:    true,
				}),
			))
		})

		It("returns the transcribed text", func() {
			text, err := ollama.ScanText(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("CHÂTEAU MARGAUX\n2015"))
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	Describe("Refine", func() {
		When("the model answers with JSON", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
					func(w http.ResponseWriter, r *http.Request) {
						var req ollamaChatRequest
						Expect(decodeJSON(r, &req)).To(Succeed())
						Expect(req.Format).To(Equal("json"))
						Expect(req.Messages).To(HaveLen(1))
						Expect(req.Messages[0].Content).To(HaveSuffix("Grand Vin\n2015"))
						Expect(req.Messages[0].Images).To(BeEmpty())
					},
					ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
						Message: ollamaMessage{Role: "assistant", Content: `{"Name": "Château Margaux", "Vintage": 2015}`},
						Done:    true,
					}),
				))
			})

			It("returns the structured fields", func() {
				data, err := ollama.Refine("Grand Vin\n2015")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(HaveKeyWithValue("Name", "Château Margaux"))
				Expect(data).To(HaveKeyWithValue("Vintage", 2015.0))
			})
		})

		When("the API fails", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
			})

			It("returns the status and body", func() {
				_, err := ollama.Refine("Opus One")
				Expect(err).To(MatchError(And(ContainSubstring("500"), ContainSubstring("model not loaded"))))
			})
		})

		When("the answer is not JSON", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "I cannot tell."},
				}))
			})

			It("returns a parse error", func() {
				_, err := ollama.Refine("Opus One")
				Expect(err).To(MatchError(ContainSubstring("parsing refinement")))
			})
		})
	})
})

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
