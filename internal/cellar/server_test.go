package cellar

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/pipeline"
	"github.com/nukk-pain/wine-sub001/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		scanner     *mockScanner
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		scanner = newMockScanner()
		auth = BasicAuth{}
	})

	JustBeforeEach(func() {
		clock := &mockTimeSource{now: time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, scanner, storage, pipeline.New(nil, nil), &mockIDGenerator{}, clock)
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		// one handler per request a test makes
		for range 4 {
			ghttpServer.AppendHandlers(server.ServeHTTP)
		}
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	do := func(method, path, contentType string, body io.Reader) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if auth.Username != "" {
			req.SetBasicAuth(auth.Username, auth.Password)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	decode := func(resp *http.Response, v any) {
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	upload := func(filename, contentType string, data []byte, docType string) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if docType != "" {
			Expect(w.WriteField("type", docType)).To(Succeed())
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(h)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())
		return do(http.MethodPost, "/api/documents", w.FormDataContentType(), &buf)
	}

	Describe("GET /healthz", func() {
		It("reports ok", func() {
			resp := do(http.MethodGet, "/healthz", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests", func() {
			resp := do(http.MethodOptions, "/api/documents", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("sets headers on normal responses", func() {
			resp := do(http.MethodGet, "/api/documents", "", nil)
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("DELETE"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "sommelier", Password: "secret"}
		})

		It("accepts the configured credentials", func() {
			resp := do(http.MethodGet, "/api/documents", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects requests without credentials", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/documents", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("rejects wrong passwords", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/documents", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("sommelier", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /api/documents", func() {
		It("processes an uploaded label", func() {
			resp := upload("margaux.jpg", "image/jpeg", []byte("jpeg"), "")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var record Record
			decode(resp, &record)
			Expect(record.ID).To(Equal("id-1"))
			Expect(record.Type).To(Equal(document.TypeWineLabel))
			Expect(record.Wines).To(HaveLen(1))
			Expect(db.records).To(HaveKey("id-1"))
		})

		It("infers the content type from the extension", func() {
			resp := upload("receipt.pdf", "", []byte("%PDF"), "")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var record Record
			decode(resp, &record)
			Expect(record.ContentType).To(Equal("application/pdf"))
		})

		It("honors the type field", func() {
			resp := upload("margaux.jpg", "image/jpeg", []byte("jpeg"), "receipt")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var record Record
			decode(resp, &record)
			Expect(record.Type).To(Equal(document.TypeReceipt))
		})

		It("rejects unknown types", func() {
			resp := upload("margaux.jpg", "image/jpeg", []byte("jpeg"), "sake")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects forms without a file", func() {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			Expect(w.WriteField("type", "wine")).To(Succeed())
			Expect(w.Close()).To(Succeed())

			resp := do(http.MethodPost, "/api/documents", w.FormDataContentType(), &buf)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		When("the format is not supported", func() {
			BeforeEach(func() {
				scanner.scanErr = scanning.ErrUnsupportedFormat
			})

			It("returns 415", func() {
				resp := upload("notes.docx", "application/msword", []byte("doc"), "")
				Expect(resp.StatusCode).To(Equal(http.StatusUnsupportedMediaType))
			})
		})

		When("the scanner fails", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("quota exceeded")
			})

			It("returns 502 with the error", func() {
				resp := upload("margaux.jpg", "image/jpeg", []byte("jpeg"), "")
				Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

				var body map[string]string
				decode(resp, &body)
				Expect(body["error"]).To(ContainSubstring("quota exceeded"))
			})
		})

		When("the record cannot be saved", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("database is read-only")
			})

			It("returns 500", func() {
				resp := upload("margaux.jpg", "image/jpeg", []byte("jpeg"), "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("POST /api/documents/text", func() {
		It("accepts JSON", func() {
			body, err := json.Marshal(map[string]string{"text": receiptText})
			Expect(err).NotTo(HaveOccurred())

			resp := do(http.MethodPost, "/api/documents/text", "application/json", bytes.NewReader(body))
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var record Record
			decode(resp, &record)
			Expect(record.Type).To(Equal(document.TypeReceipt))
			Expect(record.Receipt).NotTo(BeNil())
			Expect(record.Receipt.PaymentMethod).To(Equal("신용카드"))
		})

		It("accepts plain text with the type in the query", func() {
			resp := do(http.MethodPost, "/api/documents/text?type=wine", "text/plain; charset=utf-8", strings.NewReader(receiptText))
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var record Record
			decode(resp, &record)
			Expect(record.Type).To(Equal(document.TypeWineLabel))
		})

		It("rejects blank text", func() {
			resp := do(http.MethodPost, "/api/documents/text", "application/json", strings.NewReader(`{"text": "  "}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects malformed JSON", func() {
			resp := do(http.MethodPost, "/api/documents/text", "application/json", strings.NewReader(`{"text":`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/classify", func() {
		It("returns the pipeline result without storing it", func() {
			resp := do(http.MethodPost, "/api/classify", "text/plain", strings.NewReader(labelText))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var res pipeline.Result
			decode(resp, &res)
			Expect(res.Type).To(Equal(document.TypeWineLabel))
			Expect(res.Classification.Indicators).NotTo(BeEmpty())
			Expect(res.Wines).To(HaveLen(1))
			Expect(db.records).To(BeEmpty())
		})

		It("classifies empty text as unknown", func() {
			resp := do(http.MethodPost, "/api/classify", "application/json", strings.NewReader(`{"text": ""}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var res pipeline.Result
			decode(resp, &res)
			Expect(res.Type).To(Equal(document.TypeUnknown))
			Expect(res.Classification.Confidence).To(BeZero())
			Expect(res.NeedsReview).To(BeTrue())
		})
	})

	Describe("stored records", func() {
		var record *Record

		JustBeforeEach(func() {
			var err error
			record, err = service.ProcessUpload("margaux.png", []byte("png bytes"), "image/png", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists them", func() {
			resp := do(http.MethodGet, "/api/documents", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var records []Record
			decode(resp, &records)
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).To(Equal(record.ID))
		})

		It("returns one by ID", func() {
			resp := do(http.MethodGet, "/api/documents/"+record.ID, "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got Record
			decode(resp, &got)
			Expect(got.Text).To(Equal(labelText))
		})

		It("returns 404 for unknown IDs", func() {
			resp := do(http.MethodGet, "/api/documents/missing", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("serves the uploaded file", func() {
			resp := do(http.MethodGet, "/api/documents/"+record.ID+"/file", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))

			data, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("png bytes")))
		})

		It("reclassifies", func() {
			resp := do(http.MethodPost, "/api/documents/"+record.ID+"/type", "application/json", strings.NewReader(`{"type": "receipt"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got Record
			decode(resp, &got)
			Expect(got.Type).To(Equal(document.TypeReceipt))
			Expect(got.WineLabel).To(BeNil())
		})

		It("rejects unknown types when reclassifying", func() {
			resp := do(http.MethodPost, "/api/documents/"+record.ID+"/type", "application/json", strings.NewReader(`{"type": "beer"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("deletes them", func() {
			resp := do(http.MethodDelete, "/api/documents/"+record.ID, "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.records).To(BeEmpty())
			Expect(storage.files).To(BeEmpty())

			resp = do(http.MethodDelete, "/api/documents/"+record.ID, "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("exports them", func() {
			resp := do(http.MethodGet, "/api/export.xlsx", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("spreadsheetml"))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("wines.xlsx"))
		})
	})

	Describe("GET /api/documents", func() {
		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("boom")
			})

			It("returns 500", func() {
				resp := do(http.MethodGet, "/api/documents", "", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		It("returns an empty array when nothing is stored", func() {
			resp := do(http.MethodGet, "/api/documents", "", nil)
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
		})
	})
})
