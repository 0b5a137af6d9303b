package normalize

import "github.com/nukk-pain/wine-sub001/internal/document"

// Synonyms is the single resolution table for raw record keys. Each canonical
// field lists the keys it is read from in priority order, canonical key first.
// No other package maps alternate key names.
var Synonyms = map[string][]string{
	document.FieldName:           {document.FieldName, "name", "wine_name", "wineName", "wine", "title", "와인명", "이름"},
	document.FieldVintage:        {document.FieldVintage, "vintage", "year", "빈티지", "년도", "연도"},
	document.FieldRegionProducer: {document.FieldRegionProducer, "region/producer", "region_producer", "regionProducer", "지역/생산자"},
	document.FieldAppellation:    {document.FieldAppellation, "appellation", "aoc", "원산지명칭"},
	document.FieldVarietal:       {document.FieldVarietal, "varietal", "variety", "varieties", "grape", "grapes", "품종"},
	document.FieldAlcohol:        {document.FieldAlcohol, "alcohol", "abv", "alcohol_percentage", "alc", "알코올", "도수"},
	document.FieldVolume:         {document.FieldVolume, "volume", "size", "bottle_size", "용량"},
	document.FieldClassification: {document.FieldClassification, "classification", "grade", "등급"},
	document.FieldPrice:          {document.FieldPrice, "price", "unit_price", "amount", "가격", "금액"},
	document.FieldQuantity:       {document.FieldQuantity, "quantity", "qty", "수량"},
	document.FieldStore:          {document.FieldStore, "store", "shop", "store_name", "구매처", "매장"},
	document.FieldPurchaseDate:   {document.FieldPurchaseDate, "purchase_date", "purchaseDate", "date", "구매일", "구매일자"},
}

// Region and producer synonyms composed into Region/Producer when no combined key is present
var (
	regionKeys   = []string{"region", "지역", "country", "국가"}
	producerKeys = []string{"producer", "winery", "생산자", "와이너리"}
)

// regionProducerSeparator joins a composed region and producer
const regionProducerSeparator = " / "
