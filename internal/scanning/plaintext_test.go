package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeScanner struct {
	text   string
	calls  int
	closed bool
}

func (f *fakeScanner) ScanText(data []byte, contentType string) (string, error) {
	f.calls++
	return f.text, nil
}

func (f *fakeScanner) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Plaintext", func() {
	var p *Plaintext

	BeforeEach(func() {
		p = NewPlaintext()
	})

	It("trims and normalizes line endings", func() {
		text, err := p.ScanText([]byte("\uFEFF  Château Margaux\r\n2015\r\n"), "text/plain")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Château Margaux\n2015"))
	})

	It("accepts an upload without a content type", func() {
		text, err := p.ScanText([]byte("합계 45,000원"), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("합계 45,000원"))
	})

	It("rejects invalid UTF-8", func() {
		_, err := p.ScanText([]byte{0xff, 0xfe, 0xfd}, "text/plain")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})

	It("rejects images", func() {
		_, err := p.ScanText([]byte("GIF89a"), "image/gif")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})
})

var _ = Describe("Router", func() {
	var (
		image  *fakeScanner
		router *Router
	)

	BeforeEach(func() {
		image = &fakeScanner{text: "from image"}
		router = NewRouter(image)
	})

	It("reads text uploads directly", func() {
		text, err := router.ScanText([]byte("Opus One"), "text/plain; charset=utf-8")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Opus One"))
		Expect(image.calls).To(BeZero())
	})

	It("sends images to the image scanner", func() {
		text, err := router.ScanText([]byte{0x89, 'P', 'N', 'G'}, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("from image"))
		Expect(image.calls).To(Equal(1))
	})

	It("closes the image scanner", func() {
		Expect(router.Close()).To(Succeed())
		Expect(image.closed).To(BeTrue())
	})

	When("no image scanner is configured", func() {
		BeforeEach(func() {
			router = NewRouter(nil)
		})

		It("rejects images", func() {
			_, err := router.ScanText([]byte{0x89, 'P', 'N', 'G'}, "image/png")
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})

		It("still reads text", func() {
			text, err := router.ScanText([]byte("Sassicaia"), "text/plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Sassicaia"))
		})
	})
})
