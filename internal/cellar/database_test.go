package cellar

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nukk-pain/wine-sub001/internal/document"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
		record *Record
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())

		created := time.Date(2024, 7, 20, 15, 30, 0, 0, time.UTC)
		record = &Record{
			ID:   "rec-1",
			Type: document.TypeWineLabel,
			Classification: document.Classification{
				Type:       document.TypeWineLabel,
				Confidence: 0.8,
				Indicators: []string{"château", "appellation"},
			},
			WineLabel: &document.WineLabel{Name: "Château Margaux", Vintage: 2015},
			Wines: []document.CanonicalWine{{
				Name:     "Château Margaux",
				Vintage:  2015,
				Varietal: "Cabernet Sauvignon, Merlot",
			}},
			Text:        "Château Margaux\n2015",
			Filename:    "rec-1_label.jpg",
			ContentType: "image/jpeg",
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveRecord", func() {
		It("round trips the record", func() {
			Expect(db.SaveRecord(record)).To(Succeed())

			got, err := db.GetRecord("rec-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(record))
		})

		It("replaces an existing record", func() {
			Expect(db.SaveRecord(record)).To(Succeed())
			record.Type = document.TypeReceipt
			Expect(db.SaveRecord(record)).To(Succeed())

			got, err := db.GetRecord("rec-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Type).To(Equal(document.TypeReceipt))
		})

		It("requires an ID", func() {
			record.ID = ""
			Expect(db.SaveRecord(record)).NotTo(Succeed())
		})
	})

	Describe("GetRecord", func() {
		It("returns ErrNotFound for unknown IDs", func() {
			_, err := db.GetRecord("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListRecords", func() {
		It("returns an empty list for a new database", func() {
			records, err := db.ListRecords()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).NotTo(BeNil())
			Expect(records).To(BeEmpty())
		})

		It("returns every record", func() {
			Expect(db.SaveRecord(record)).To(Succeed())
			other := *record
			other.ID = "rec-2"
			Expect(db.SaveRecord(&other)).To(Succeed())

			records, err := db.ListRecords()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal("rec-1"))
			Expect(records[1].ID).To(Equal("rec-2"))
		})
	})

	Describe("DeleteRecord", func() {
		It("removes the record", func() {
			Expect(db.SaveRecord(record)).To(Succeed())
			Expect(db.DeleteRecord("rec-1")).To(Succeed())

			_, err := db.GetRecord("rec-1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteRecord("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("keeps saved records", func() {
			Expect(db.SaveRecord(record)).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			got, err := db.GetRecord("rec-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Wines).To(Equal(record.Wines))
		})
	})
})
