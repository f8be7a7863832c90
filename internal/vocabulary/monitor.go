package vocabulary

import (
	"regexp"

	"github.com/specmatch/backend/internal/domain"
)

// Monitor feature names
const (
	FeatureRefreshRate  = "refresh_rate"
	FeatureSize         = "size"
	FeatureResolution   = "resolution"
	FeaturePanelType    = "panel_type"
	FeatureResponseTime = "response_time"
	FeatureAdaptiveSync = "adaptive_sync"
	FeatureHDR          = "hdr"
	FeatureCurvature    = "curvature"
	FeatureBrand        = "brand"
)

func p(expr, unit string) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Unit: unit}
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// budgetPatterns are shared by all categories priced in the same currency
func budgetPatterns() []Pattern {
	return []Pattern{
		p(`(?:\brs\.?|\binr|₹|\$|\busd)\s*(\d[\d,]*(?:\.\d+)?)\s*(k|thousand|lakh|lac)?\b`, "currency"),
		p(`\b(?:under|below|less than|within|upto|up to|max|maximum|budget(?: of| is)?|around)\s*(\d[\d,]*(?:\.\d+)?)\s*(k|thousand|lakh|lac)?\b`, "bare"),
	}
}

// ignoredSpecKeys mark packaging and shipping rows
func ignoredSpecKeys() []string {
	return []string{"dimensions", "dimension", "weight", "package", "packaging", "shipping"}
}

func hybridProfiles() map[string]domain.HybridWeights {
	return map[string]domain.HybridWeights{
		"performance": {Profile: "performance", Technical: 0.55, Value: 0.15, Budget: 0.15, Excellence: 0.15},
		"general":     {Profile: "general", Technical: 0.40, Value: 0.30, Budget: 0.20, Excellence: 0.10},
	}
}

var brandSynonyms = map[string]string{
	"alienware": "dell", "rog": "asus", "tuf": "asus", "predator": "acer", "nitro": "acer",
	"zowie": "benq", "aorus": "gigabyte", "omen": "hp", "legion": "lenovo", "redmi": "xiaomi",
	"lgultragear": "lg", "ultragear": "lg", "odyssey": "samsung", "coolermaster": "cooler master",
}

const brandAlternation = `samsung|lg ultragear|ultragear|lg|dell|alienware|asus|rog|tuf|acer|predator|nitro|benq|zowie|msi|gigabyte|aorus|viewsonic|aoc|hp|omen|lenovo|legion|philips|zebronics|redmi|xiaomi|sony|apple|cooler master|odyssey`

func monitorCategory() *Category {
	return &Category{
		Name:     "monitor",
		Keywords: []string{"monitor", "display", "screen", "hz", "ips", "panel", "refresh rate", "curved", "ultrawide"},
		Features: []string{
			FeatureRefreshRate, FeatureSize, FeatureResolution, FeaturePanelType, FeatureResponseTime,
			FeatureAdaptiveSync, FeatureHDR, FeatureCurvature, FeatureBrand,
		},
		NumericFeatures: set(FeatureRefreshRate, FeatureSize, FeatureResponseTime),
		Patterns: map[string][]Pattern{
			FeatureRefreshRate: {
				p(`\b(\d{2,3})\s*-?\s*(?:hz|hertz)\b`, "hz"),
				p(`\b(\d{2,3})\s*fps\b`, "hz"),
				p(`\brefresh\s*rate\s*(?:of\s*|:\s*)?(\d{2,3})\b`, "hz"),
			},
			FeatureSize: {
				p(`\b(\d{2}(?:\.\d{1,2})?)\s*-?\s*(?:inches|inch|in\b|"|”|′′|'')`, "inch"),
				p(`\b(\d{2,3}(?:\.\d{1,2})?)\s*-?\s*(?:cm|centimet(?:er|re)s?)\b`, "cm"),
			},
			FeatureResolution: {
				p(`\b(\d{3,4}\s*[x×]\s*\d{3,4})\b`, ""),
				p(`\b(8k|5k|4k|uhd|ultra\s*hd|2160p|uwqhd|wqhd|qhd|quad\s*hd|1440p|2k|fhd|full\s*hd|1080p|wuxga|hd\s*ready|720p|hd)\b`, ""),
			},
			FeaturePanelType: {
				p(`\b(nano\s*ips|fast\s*ips|qd-?oled|ips|va|tn|oled|qled|mini\s*-?led)\b`, ""),
				p(`\b(in-plane\s*switching|vertical\s*alignment|twisted\s*nematic)\b`, ""),
			},
			FeatureResponseTime: {
				p(`\b(\d{1,2}(?:\.\d+)?)\s*ms\b`, "ms"),
				p(`\bresponse\s*time\s*(?:of\s*|:\s*)?(\d{1,2}(?:\.\d+)?)\b`, "ms"),
			},
			FeatureAdaptiveSync: {
				p(`\b(g-?sync(?:\s*compatible)?|freesync(?:\s*premium(?:\s*pro)?)?|adaptive\s*-?sync|vrr)\b`, ""),
			},
			FeatureHDR: {
				p(`\b(displayhdr\s*\d{3,4}|hdr\s*\d{3,4}|hdr10|hdr)\b`, ""),
			},
			FeatureCurvature: {
				p(`\b(curved|flat)\b`, ""),
				p(`\b(1000|1500|1800|2300|3000|4000)\s*r\b`, ""),
			},
			FeatureBrand: {
				p(`\b(`+brandAlternation+`)\b`, ""),
			},
		},
		Synonyms: map[string]map[string]string{
			FeatureResolution: {
				"8k": "8k", "7680x4320": "8k",
				"5k": "5k", "5120x2880": "5k",
				"4k": "4k", "uhd": "4k", "ultrahd": "4k", "2160p": "4k", "3840x2160": "4k", "3840×2160": "4k",
				"uwqhd": "uwqhd", "3440x1440": "uwqhd", "3440×1440": "uwqhd",
				"qhd": "qhd", "wqhd": "qhd", "quadhd": "qhd", "1440p": "qhd", "2k": "qhd", "2560x1440": "qhd", "2560×1440": "qhd",
				"wuxga": "wuxga", "1920x1200": "wuxga",
				"fhd": "fhd", "fullhd": "fhd", "1080p": "fhd", "1920x1080": "fhd", "1920×1080": "fhd",
				"hd": "hd", "hdready": "hd", "720p": "hd", "1366x768": "hd",
			},
			FeaturePanelType: {
				"ips": "ips", "nanoips": "ips", "fastips": "ips", "inplaneswitching": "ips",
				"va": "va", "verticalalignment": "va",
				"tn": "tn", "twistednematic": "tn",
				"oled": "oled", "qdoled": "oled",
				"qled": "qled", "miniled": "mini-led",
			},
			FeatureAdaptiveSync: {
				"gsync": "gsync", "gsynccompatible": "gsync",
				"freesync": "freesync", "freesyncpremium": "freesync", "freesyncpremiumpro": "freesync",
				"adaptivesync": "adaptive-sync", "vrr": "adaptive-sync",
			},
			FeatureHDR: {
				"hdr": "hdr", "hdr10": "hdr10",
				"hdr400": "hdr400", "displayhdr400": "hdr400",
				"hdr600": "hdr600", "displayhdr600": "hdr600",
				"hdr1000": "hdr1000", "displayhdr1000": "hdr1000",
			},
			FeatureCurvature: {
				"curved": "curved", "flat": "flat",
				"1000": "curved", "1500": "curved", "1800": "curved", "2300": "curved", "3000": "curved", "4000": "curved",
			},
			FeatureBrand: brandSynonyms,
		},
		UnitFactors: map[string]float64{"inch": 1, "cm": 1 / 2.54, "hz": 1, "ms": 1},
		Rounding:    map[string]float64{FeatureSize: 0.5},
		SpecKeyAliases: map[string]string{
			"refresh rate": FeatureRefreshRate, "maximum refresh rate": FeatureRefreshRate, "screen refresh rate": FeatureRefreshRate,
			"screen size": FeatureSize, "display size": FeatureSize, "standing screen display size": FeatureSize, "size": FeatureSize,
			"resolution": FeatureResolution, "screen resolution": FeatureResolution, "display resolution maximum": FeatureResolution, "max screen resolution": FeatureResolution,
			"panel type": FeaturePanelType, "display technology": FeaturePanelType, "panel": FeaturePanelType,
			"response time": FeatureResponseTime,
			"adaptive sync": FeatureAdaptiveSync, "variable refresh rate": FeatureAdaptiveSync,
			"hdr": FeatureHDR, "hdr support": FeatureHDR, "high dynamic range format": FeatureHDR,
			"curvature": FeatureCurvature, "screen surface": FeatureCurvature, "display type": FeatureCurvature,
			"brand": FeatureBrand, "manufacturer": FeatureBrand,
		},
		Weights: map[string]float64{
			FeatureRefreshRate: 0.25, FeatureResolution: 0.20, FeatureSize: 0.15, FeaturePanelType: 0.12,
			FeatureResponseTime: 0.08, FeatureAdaptiveSync: 0.06, FeatureHDR: 0.05, FeatureCurvature: 0.04, FeatureBrand: 0.05,
		},
		Tolerances: map[string]float64{
			FeatureRefreshRate: 0.05, FeatureSize: 0.10, FeatureResponseTime: 0.50,
		},
		Tiers: map[string]map[string]TierRule{
			FeatureRefreshRate: {
				"60":  {Upgrades: []string{"75", "100", "120", "144", "165"}},
				"75":  {Upgrades: []string{"100", "120", "144", "165"}, Downgrades: []string{"60"}},
				"100": {Upgrades: []string{"120", "144", "165"}, Downgrades: []string{"75"}},
				"120": {Upgrades: []string{"144", "165", "170", "180"}, Downgrades: []string{"100"}},
				"144": {Upgrades: []string{"165", "170", "180", "240"}, Downgrades: []string{"120"}},
				"165": {Upgrades: []string{"170", "180", "240"}, Downgrades: []string{"144"}},
				"180": {Upgrades: []string{"240"}, Downgrades: []string{"165", "170"}},
				"240": {Upgrades: []string{"270", "280", "360"}, Downgrades: []string{"165", "180"}},
			},
			FeatureResolution: {
				"hd":    {Upgrades: []string{"fhd", "wuxga", "qhd"}},
				"fhd":   {Upgrades: []string{"wuxga", "qhd", "uwqhd", "4k"}},
				"qhd":   {Upgrades: []string{"uwqhd", "4k", "5k"}, Downgrades: []string{"wuxga", "fhd"}},
				"uwqhd": {Upgrades: []string{"4k", "5k"}, Downgrades: []string{"qhd"}},
				"4k":    {Upgrades: []string{"5k", "8k"}, Downgrades: []string{"uwqhd", "qhd"}},
			},
			FeaturePanelType: {
				"tn":  {Upgrades: []string{"va", "ips"}},
				"va":  {Upgrades: []string{"ips", "oled"}},
				"ips": {Upgrades: []string{"oled"}, Downgrades: []string{"va"}},
			},
			FeatureHDR: {
				"hdr":    {Upgrades: []string{"hdr10", "hdr400", "hdr600", "hdr1000"}},
				"hdr10":  {Upgrades: []string{"hdr400", "hdr600", "hdr1000"}, Downgrades: []string{"hdr"}},
				"hdr400": {Upgrades: []string{"hdr600", "hdr1000"}, Downgrades: []string{"hdr10"}},
				"hdr600": {Upgrades: []string{"hdr1000"}, Downgrades: []string{"hdr400"}},
			},
			FeatureAdaptiveSync: {
				"adaptive-sync": {Upgrades: []string{"freesync", "gsync"}},
				"freesync":      {Upgrades: []string{"gsync"}, Downgrades: []string{"adaptive-sync"}},
				"gsync":         {Downgrades: []string{"freesync"}},
			},
		},
		Penalties: map[string]float64{
			FeatureRefreshRate: 0.5, FeatureSize: 0.7, FeatureResolution: 0.4, FeaturePanelType: 0.6,
			FeatureResponseTime: 0.8, FeatureAdaptiveSync: 0.8, FeatureHDR: 0.8, FeatureCurvature: 0.7, FeatureBrand: 0.5,
		},
		Ranges: map[string]Range{
			FeatureRefreshRate:  {Min: 30, Max: 480},
			FeatureSize:         {Min: 10, Max: 65},
			FeatureResponseTime: {Min: 0.03, Max: 50},
		},
		TechnicalTerms: set(
			"hz", "hertz", "fps", "inch", "inches", "cm", "ips", "va", "tn", "oled", "qled", "qhd", "wqhd",
			"uhd", "fhd", "hd", "4k", "2k", "5k", "1080p", "1440p", "2160p", "hdr", "hdr10", "freesync", "gsync",
			"refresh", "rate", "resolution", "panel", "response", "ms", "curved", "nits", "ultrawide", "vrr",
		),
		TechnicalTokenPattern: regexp.MustCompile(`^\d+(?:\.\d+)?(?:hz|ms|k|p|cm|in|inch|r|nits)?$`),
		FillerWords: set(
			"cinematic", "stunning", "experience", "eye", "care", "immersive", "amazing", "awesome", "beautiful",
			"vibrant", "ultimate", "perfect", "best", "great", "nice", "gorgeous", "sleek", "elegant", "brilliant",
			"incredible", "breathtaking", "lifelike", "vivid", "premium", "superb", "fantastic", "excellent",
			"stylish", "visuals", "wow", "good", "cool", "crisp", "smooth", "magical", "epic",
		),
		StrongFillerPhrases: []string{
			"cinematic experience", "stunning visuals", "breathtaking", "next level experience",
			"game changer", "jaw dropping", "true to life experience",
		},
		BudgetPatterns:  budgetPatterns(),
		IgnoredSpecKeys: ignoredSpecKeys(),
		UsageKeywords: map[string][]string{
			"gaming":        {"gaming", "gamer", "game", "games", "esports", "competitive", "fps games", "valorant", "ps5", "xbox"},
			"coding":        {"coding", "programming", "programmer", "developer", "code", "software"},
			"professional":  {"professional", "photo editing", "video editing", "editing", "design", "designer", "creative", "color accurate", "colour accurate"},
			"office":        {"office", "work", "productivity", "excel", "spreadsheet", "study", "students", "work from home"},
			"entertainment": {"movies", "movie", "netflix", "streaming", "entertainment", "media", "watching"},
		},
		UsageProfiles: map[string]UsageProfile{
			"gaming": {
				FeatureRefreshRate:  {"60": 0.2, "75": 0.35, "100": 0.6, "120": 0.75, "144": 0.9, "165": 0.95, "240": 1.0},
				FeatureResponseTime: {"0.5": 1.0, "1": 1.0, "2": 0.8, "4": 0.6, "5": 0.5, "8": 0.3},
				FeaturePanelType:    {"oled": 1.0, "ips": 0.9, "va": 0.75, "tn": 0.7, "qled": 0.8, "mini-led": 0.85},
				FeatureAdaptiveSync: {"gsync": 1.0, "freesync": 0.9, "adaptive-sync": 0.8},
			},
			"coding": {
				FeatureResolution: {"4k": 1.0, "5k": 1.0, "uwqhd": 0.95, "qhd": 0.9, "wuxga": 0.7, "fhd": 0.6, "hd": 0.2},
				FeatureSize:       {"24": 0.7, "27": 1.0, "32": 0.95, "34": 0.9},
				FeaturePanelType:  {"ips": 1.0, "oled": 0.8, "va": 0.75, "tn": 0.4},
			},
			"professional": {
				FeaturePanelType:  {"ips": 1.0, "oled": 1.0, "mini-led": 0.9, "va": 0.6, "tn": 0.3},
				FeatureResolution: {"5k": 1.0, "4k": 1.0, "uwqhd": 0.85, "qhd": 0.8, "fhd": 0.5, "hd": 0.2},
				FeatureHDR:        {"hdr1000": 1.0, "hdr600": 0.9, "hdr400": 0.75, "hdr10": 0.7, "hdr": 0.6},
			},
			"office": {
				FeatureSize:       {"22": 0.8, "24": 1.0, "27": 0.9, "32": 0.7},
				FeatureResolution: {"fhd": 1.0, "qhd": 0.9, "4k": 0.8, "hd": 0.5},
				FeaturePanelType:  {"ips": 1.0, "va": 0.85, "tn": 0.6},
			},
			"entertainment": {
				FeaturePanelType: {"oled": 1.0, "mini-led": 0.95, "va": 0.9, "qled": 0.9, "ips": 0.8, "tn": 0.4},
				FeatureHDR:       {"hdr1000": 1.0, "hdr600": 0.9, "hdr400": 0.75, "hdr10": 0.7, "hdr": 0.6},
				FeatureSize:      {"27": 0.8, "32": 1.0, "34": 1.0, "24": 0.6},
			},
		},
		QualityRanks: map[string]map[string]float64{
			FeatureResolution:   {"8k": 1.0, "5k": 1.0, "4k": 1.0, "uwqhd": 0.9, "qhd": 0.8, "wuxga": 0.6, "fhd": 0.55, "hd": 0.3},
			FeaturePanelType:    {"oled": 1.0, "mini-led": 0.95, "ips": 0.85, "qled": 0.85, "va": 0.7, "tn": 0.5},
			FeatureAdaptiveSync: {"gsync": 1.0, "freesync": 0.9, "adaptive-sync": 0.8},
			FeatureHDR:          {"hdr1000": 1.0, "hdr600": 0.9, "hdr400": 0.8, "hdr10": 0.75, "hdr": 0.7},
		},
		QualityCurves: map[string]QualityCurve{
			FeatureRefreshRate:  {Direction: "higher", Best: 240, Worst: 60, Floor: 0.2},
			FeatureResponseTime: {Direction: "lower", Best: 1, Worst: 8, Floor: 0.3},
			FeatureSize:         {Direction: "band", BandMin: 27, BandMax: 32, Floor: 0.7},
		},
		ComparisonFeatures: []string{
			domain.PriceFeature, FeatureRefreshRate, FeatureResolution, FeatureSize, FeaturePanelType,
			FeatureResponseTime, FeatureAdaptiveSync, FeatureHDR, FeatureCurvature, FeatureBrand,
		},
		FeatureLabels: map[string]string{
			domain.PriceFeature: "price", FeatureRefreshRate: "refresh rate", FeatureSize: "screen size",
			FeatureResolution: "resolution", FeaturePanelType: "panel type", FeatureResponseTime: "response time",
			FeatureAdaptiveSync: "adaptive sync", FeatureHDR: "HDR", FeatureCurvature: "curvature", FeatureBrand: "brand",
		},
		Prices: PriceBands{
			UltraBudgetMax:     8000,
			SweetSpotMin:       12000,
			SweetSpotMax:       40000,
			UltraPremiumMin:    80000,
			MinorUnitThreshold: 1000000,
			MinorUnitDivisor:   100,
			CurrencySymbol:     "₹",
		},
		HybridProfiles:      hybridProfiles(),
		PerformanceContexts: set("gaming", "professional"),
		Excellence: []ExcellenceRule{
			{Feature: FeatureRefreshRate, Min: 240, Bonus: 0.10},
			{Feature: FeatureRefreshRate, Min: 165, Bonus: 0.05},
			{Feature: FeatureResolution, Values: []string{"4k", "5k", "8k"}, Bonus: 0.10},
			{Feature: FeatureResolution, Values: []string{"qhd", "uwqhd"}, Bonus: 0.05},
			{Feature: FeatureSize, Min: 27, Max: 32, Bonus: 0.05},
			{Feature: FeaturePanelType, Values: []string{"oled"}, Bonus: 0.05},
			{Feature: FeatureResponseTime, Max: 1, Bonus: 0.03},
		},
		ExcellenceCap: 0.25,
		ValueRatioCap: 10,
	}
}
