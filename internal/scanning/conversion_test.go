package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("convertToPNG", func() {
	It("rejects empty uploads", func() {
		_, _, err := convertToPNG(nil, "image/png")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})

	It("rejects text", func() {
		_, _, err := convertToPNG([]byte("hello"), "text/plain")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})

	It("rejects unknown binary formats", func() {
		_, _, err := convertToPNG([]byte("not an image at all"), "image/jpeg")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})

	It("passes PNG through", func() {
		data := tinyPNG()
		out, converted, err := convertToPNG(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeFalse())
		Expect(out).To(Equal(data))
	})
})

var _ = DescribeTable("isHEICFormat",
	func(data []byte, expected bool) {
		Expect(isHEICFormat(data)).To(Equal(expected))
	},
	Entry("heic brand", []byte("\x00\x00\x00\x18ftypheic"), true),
	Entry("mif1 brand", []byte("\x00\x00\x00\x18ftypmif1"), true),
	Entry("mp4 brand", []byte("\x00\x00\x00\x18ftypisom"), false),
	Entry("too short", []byte("ftyp"), false),
)

var _ = Describe("prepareImageData", func() {
	It("sniffs PNG data sent without a content type", func() {
		data := tinyPNG()
		out, err := prepareImageData(data, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("sniffs generic binary uploads", func() {
		data := tinyPNG()
		out, err := prepareImageData(data, "application/octet-stream")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("rejects text sniffed from a generic upload", func() {
		_, err := prepareImageData([]byte("Château Margaux 2015"), "application/octet-stream")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})
})
