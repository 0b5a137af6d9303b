package winelabel

import "regexp"

// term maps every spelling of a vocabulary entry to its display name
type term struct {
	Name    string
	Pattern *regexp.Regexp
}

func terms(pairs ...string) []term {
	out := make([]term, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, term{Name: pairs[i], Pattern: regexp.MustCompile(`(?i)(?:` + pairs[i+1] + `)`)})
	}
	return out
}

// grapes lists grape varieties; Korean transliterations map to the usual label spelling
var grapes = terms(
	"Cabernet Sauvignon", `cabernet[\s-]+sauvignon|[까카]베르네\s*소비뇽`,
	"Cabernet Franc", `cabernet[\s-]+franc|[까카]베르네\s*프랑`,
	"Sauvignon Blanc", `sauvignon[\s-]+blanc|소비뇽\s*블랑`,
	"Pinot Noir", `pinot[\s-]+noir|피노\s*누아르?`,
	"Pinot Grigio", `pinot[\s-]+grigio|피노\s*그리지오`,
	"Pinot Gris", `pinot[\s-]+gris\b`,
	"Chenin Blanc", `chenin(?:[\s-]+blanc)?|슈냉\s*블랑`,
	"Petit Verdot", `petit[\s-]+verdot|쁘띠\s*베르도`,
	"Grüner Veltliner", `gr[üu]ner[\s-]+veltliner`,
	"Chardonnay", `chardonnay|샤르도네|샤도네이`,
	"Merlot", `merlot|메를로|멀롯`,
	"Syrah", `\bsyrah\b`,
	"Shiraz", `\bshiraz\b|쉬라즈|시라즈`,
	"Riesling", `riesling|리슬링`,
	"Malbec", `malbec|말벡`,
	"Sangiovese", `sangiovese|산지오베제`,
	"Nebbiolo", `nebbiolo|네비올로`,
	"Tempranillo", `tempranillo|템프라니요`,
	"Grenache", `grenache|garnacha|그르나슈`,
	"Mourvèdre", `mourv[èe]dre|monastrell`,
	"Zinfandel", `zinfandel|진판델`,
	"Gewürztraminer", `gew[üu]rztraminer|게뷔르츠트라미너`,
	"Viognier", `viognier|비오니에`,
	"Sémillon", `s[ée]millon|세미용`,
	"Carmenère", `carm[ée]n[èe]re|까르메네르`,
	"Barbera", `\bbarbera\b`,
	"Primitivo", `primitivo`,
	"Gamay", `\bgamay\b`,
	"Muscat", `\bmuscat\b|moscato|모스카토`,
)

// regions are wine regions. Communes such as Margaux are appellations, not regions.
var regions = terms(
	"Bordeaux", `\bbordeaux\b|보르도`,
	"Bourgogne", `\bbourgogne\b|\bburgundy\b|부르고뉴`,
	"Champagne", `\bchampagne\b|샹파뉴|샴페인`,
	"Rhône", `\bvall[ée]e\s+du\s+rh[ôo]ne\b|\bc[ôo]tes\s+du\s+rh[ôo]ne\b|\brh[ôo]ne\b`,
	"Loire", `\bloire\b|루아르`,
	"Alsace", `\balsace\b|알자스`,
	"Languedoc", `\blanguedoc\b|랑그독`,
	"Provence", `\bprovence\b|프로방스`,
	"Beaujolais", `\bbeaujolais\b|보졸레`,
	"Toscana", `\btoscana\b|\btuscany\b|토스카나`,
	"Piemonte", `\bpiemonte\b|\bpiedmont\b|피에몬테`,
	"Veneto", `\bveneto\b|베네토`,
	"Rioja", `\brioja\b|리오하`,
	"Ribera del Duero", `ribera\s+del\s+duero`,
	"Priorat", `\bpriorat\b`,
	"Mosel", `\bmosel\b|모젤`,
	"Rheingau", `\brheingau\b`,
	"Napa Valley", `\bnapa(?:\s+valley)?\b|나파`,
	"Sonoma", `\bsonoma\b|소노마`,
	"Barossa Valley", `\bbarossa(?:\s+valley)?\b|바로사`,
	"Marlborough", `\bmarlborough\b|말보로`,
	"Mendoza", `\bmendoza\b|멘도사`,
	"Maipo Valley", `\bmaipo(?:\s+valley)?\b|마이포`,
)

// countries are the fallback tier when no region is named
var countries = terms(
	"France", `\bfrance\b|프랑스`,
	"Italy", `\bitaly\b|\bitalia\b|이탈리아`,
	"Spain", `\bspain\b|españa|espana|스페인`,
	"USA", `\busa\b|united\s+states|\bcalifornia\b|미국`,
	"Australia", `\baustralia\b|호주`,
	"Chile", `\bchile\b|칠레`,
	"Argentina", `\bargentina\b|아르헨티나`,
	"Germany", `\bgermany\b|deutschland|독일`,
	"Portugal", `\bportugal\b|포르투갈`,
	"New Zealand", `new\s+zealand|뉴질랜드`,
	"South Africa", `south\s+africa|남아공`,
)

// classifications are quality designations. The longest match wins.
var classifications = terms(
	"Premier Grand Cru Classé", `premier\s+grand\s+cru\s+class[ée]`,
	"Grand Cru Classé", `grand\s+cru\s+class[ée]`,
	"Premier Cru Classé", `(?:premier|1er)\s+cru\s+class[ée]`,
	"Cru Bourgeois", `cru\s+bourgeois`,
	"Grand Cru", `grand\s+cru`,
	"Premier Cru", `premier\s+cru|1er\s+cru`,
	"Gran Selezione", `gran\s+selezione`,
	"Riserva", `\briserva\b`,
	"Gran Reserva", `gran\s+reserva`,
	"Reserva", `\breserva\b`,
	"Crianza", `\bcrianza\b`,
	"Trockenbeerenauslese", `trockenbeerenauslese`,
	"Beerenauslese", `beerenauslese`,
	"Auslese", `auslese`,
	"Spätlese", `sp[äa]tlese`,
	"Kabinett", `\bkabinett\b`,
	"Eiswein", `\beiswein\b`,
	"Grosses Gewächs", `grosses\s+gew[äa]chs`,
)

var (
	// wineryLine marks a line naming the producing estate
	wineryLine = regexp.MustCompile(`(?i)\b(?:ch[âa]teau|domaine|tenuta|bodegas?|weingut|cantina|maison|clos|estates?|winery|vineyards?|cellars?)\b|샤또|샤토|도멘|와이너리`)

	// boilerplate lines are never a name or producer
	boilerplate = regexp.MustCompile(`(?i)mis\s+en\s+bouteille|bottled\s+by|imported\s+by|importer|product\s+of|produit\s+de|contains\s+sulfites|contient\s+des\s+sulfites|imbottigliato|수입|원산지|제조`)

	// genericWords make up lines that describe the bottle rather than name it
	genericWords = map[string]bool{
		"wine": true, "vin": true, "vino": true, "wein": true, "red": true, "white": true,
		"rosé": true, "rose": true, "rouge": true, "blanc": true, "rosso": true, "bianco": true,
		"tinto": true, "dry": true, "sec": true, "grand": true, "de": true, "table": true,
		"and": true, "et": true, "e": true, "y": true, "und": true,
		"레드": true, "화이트": true, "와인": true,
	}

	appellationPhrase = regexp.MustCompile(`(?i)appellation\s+(?P<v>.+?)\s+(?:contr[ôo]l[ée]e|prot[ée]g[ée]e)`)
	appellationBare   = regexp.MustCompile(`(?i)^appellation\s+(?P<v>[^:：\s].*)$`)
	appellationLabel  = regexp.MustCompile(`(?i)^appellation\s*(?:d['’]origine)?\s*[:：]\s*(?P<v>.+)$`)
	appellationSuffix = regexp.MustCompile(`^(?P<v>\pL[\pL\s'’-]*?)\s+(?:DOCG|DOCa|DOC|AOC|AOP|IGT|IGP|DO)$`)

	appellationRules = []*regexp.Regexp{appellationPhrase, appellationLabel, appellationBare, appellationSuffix}

	// "d'Origine" is the noun of the AOC phrase, not a place
	appellationNoise = regexp.MustCompile(`(?i)^(?:d['’]\s*)?origine(?:\s+(?:contr[ôo]l[ée]e|prot[ée]g[ée]e))?$`)

	trailingYear = regexp.MustCompile(`\s*(?:18|19|20)\d{2}\s*(?:년산|년)?$`)
	yearOnly     = regexp.MustCompile(`^(?:18|19|20)\d{2}\s*(?:년산|년)?$`)
)
