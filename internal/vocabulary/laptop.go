package vocabulary

import (
	"regexp"

	"github.com/specmatch/backend/internal/domain"
)

// Laptop feature names
const (
	FeatureRAM       = "ram"
	FeatureStorage   = "storage"
	FeatureProcessor = "processor"
	FeatureGPU       = "gpu"
)

func laptopCategory() *Category {
	return &Category{
		Name:     "laptop",
		Keywords: []string{"laptop", "notebook", "ultrabook", "macbook", "chromebook", "ram", "ssd", "processor"},
		Features: []string{FeatureProcessor, FeatureRAM, FeatureStorage, FeatureGPU, FeatureSize, FeatureRefreshRate, FeatureBrand},
		NumericFeatures: set(FeatureRAM, FeatureStorage, FeatureSize, FeatureRefreshRate),
		Patterns: map[string][]Pattern{
			FeatureRAM: {
				p(`\b(\d{1,3})\s*gb\s*(?:of\s*)?(?:ddr\d\w*\s*)?(?:ram|memory|lpddr\d\w*|ddr\d\w*)\b`, "gb"),
				p(`\bram\s*(?:of\s*|:\s*)?(\d{1,3})\s*gb\b`, "gb"),
			},
			FeatureStorage: {
				p(`\b(\d(?:\.\d)?)\s*tb\b`, "tb"),
				p(`\b(\d{3,4})\s*gb\s*(?:nvme\s*|pcie\s*|m\.2\s*)?(?:ssd|hdd|storage|emmc)\b`, "gb"),
			},
			FeatureProcessor: {
				p(`\b(core\s*ultra\s*[579]|i[3579]|ryzen\s*[3579]|m[1-4](?:\s*(?:pro|max))?|celeron|pentium|snapdragon\s*x)\b`, ""),
			},
			FeatureGPU: {
				p(`\b(rtx\s*\d{4}|gtx\s*\d{4}|rx\s*\d{4}|integrated|iris\s*xe)\b`, ""),
			},
			FeatureSize: {
				p(`\b(1[0-8](?:\.\d{1,2})?)\s*-?\s*(?:inches|inch|in\b|"|”|′′|'')`, "inch"),
				p(`\b(\d{2}(?:\.\d{1,2})?)\s*-?\s*(?:cm|centimet(?:er|re)s?)\b`, "cm"),
			},
			FeatureRefreshRate: {
				p(`\b(\d{2,3})\s*-?\s*(?:hz|hertz)\b`, "hz"),
			},
			FeatureBrand: {
				p(`\b(apple|dell|hp|lenovo|asus|acer|msi|samsung|microsoft|razer|gigabyte|xiaomi|infinix|honor|legion|rog|tuf|omen|predator|alienware|thinkpad|ideapad)\b`, ""),
			},
		},
		Synonyms: map[string]map[string]string{
			FeatureProcessor: {
				"i3": "i3", "i5": "i5", "i7": "i7", "i9": "i9",
				"coreultra5": "core-ultra-5", "coreultra7": "core-ultra-7", "coreultra9": "core-ultra-9",
				"ryzen3": "ryzen3", "ryzen5": "ryzen5", "ryzen7": "ryzen7", "ryzen9": "ryzen9",
				"m1": "m1", "m2": "m2", "m3": "m3", "m4": "m4", "m3pro": "m3-pro", "m4pro": "m4-pro", "m3max": "m3-max", "m4max": "m4-max",
				"celeron": "celeron", "pentium": "pentium", "snapdragonx": "snapdragon-x",
			},
			FeatureGPU: {
				"integrated": "integrated", "irisxe": "integrated",
			},
			FeatureBrand: {
				"legion": "lenovo", "thinkpad": "lenovo", "ideapad": "lenovo", "rog": "asus", "tuf": "asus",
				"omen": "hp", "predator": "acer", "alienware": "dell",
			},
		},
		UnitFactors: map[string]float64{"gb": 1, "tb": 1024, "inch": 1, "cm": 1 / 2.54, "hz": 1},
		Rounding:    map[string]float64{FeatureSize: 0.1},
		SpecKeyAliases: map[string]string{
			"ram": FeatureRAM, "ram memory installed size": FeatureRAM, "memory": FeatureRAM, "computer memory size": FeatureRAM,
			"hard drive size": FeatureStorage, "storage": FeatureStorage, "ssd capacity": FeatureStorage, "hard disk size": FeatureStorage,
			"processor": FeatureProcessor, "cpu model": FeatureProcessor, "processor name": FeatureProcessor,
			"graphics coprocessor": FeatureGPU, "graphics card": FeatureGPU, "gpu": FeatureGPU,
			"screen size": FeatureSize, "standing screen display size": FeatureSize, "display size": FeatureSize,
			"refresh rate": FeatureRefreshRate,
			"brand": FeatureBrand, "manufacturer": FeatureBrand,
		},
		Weights: map[string]float64{
			FeatureProcessor: 0.25, FeatureRAM: 0.20, FeatureStorage: 0.15, FeatureGPU: 0.15,
			FeatureSize: 0.10, FeatureRefreshRate: 0.05, FeatureBrand: 0.10,
		},
		Tolerances: map[string]float64{FeatureSize: 0.05, FeatureRefreshRate: 0.05},
		Tiers: map[string]map[string]TierRule{
			FeatureRAM: {
				"8":  {Upgrades: []string{"12", "16", "32"}, Downgrades: []string{"4"}},
				"16": {Upgrades: []string{"24", "32", "64"}, Downgrades: []string{"12", "8"}},
				"32": {Upgrades: []string{"64"}, Downgrades: []string{"24", "16"}},
			},
			FeatureStorage: {
				"256":  {Upgrades: []string{"512", "1024"}, Downgrades: []string{"128"}},
				"512":  {Upgrades: []string{"1024", "2048"}, Downgrades: []string{"256"}},
				"1024": {Upgrades: []string{"2048"}, Downgrades: []string{"512"}},
			},
			FeatureProcessor: {
				"i3":     {Upgrades: []string{"i5", "i7", "ryzen5"}},
				"i5":     {Upgrades: []string{"i7", "i9", "core-ultra-7", "ryzen7"}, Downgrades: []string{"i3", "ryzen5"}},
				"i7":     {Upgrades: []string{"i9", "core-ultra-9", "ryzen9"}, Downgrades: []string{"i5", "ryzen7"}},
				"ryzen5": {Upgrades: []string{"ryzen7", "ryzen9", "i7"}, Downgrades: []string{"ryzen3", "i5"}},
				"ryzen7": {Upgrades: []string{"ryzen9", "i9"}, Downgrades: []string{"ryzen5", "i7"}},
				"m1":     {Upgrades: []string{"m2", "m3", "m4"}},
				"m2":     {Upgrades: []string{"m3", "m4", "m3-pro"}, Downgrades: []string{"m1"}},
				"m3":     {Upgrades: []string{"m4", "m3-pro", "m4-pro"}, Downgrades: []string{"m2"}},
			},
		},
		Penalties: map[string]float64{
			FeatureProcessor: 0.5, FeatureRAM: 0.5, FeatureStorage: 0.6, FeatureGPU: 0.5,
			FeatureSize: 0.7, FeatureRefreshRate: 0.7, FeatureBrand: 0.5,
		},
		Ranges: map[string]Range{
			FeatureRAM:         {Min: 2, Max: 128},
			FeatureStorage:     {Min: 32, Max: 8192},
			FeatureSize:        {Min: 10, Max: 19},
			FeatureRefreshRate: {Min: 30, Max: 480},
		},
		TechnicalTerms: set(
			"ram", "ssd", "hdd", "nvme", "gb", "tb", "ddr4", "ddr5", "i3", "i5", "i7", "i9", "ryzen", "rtx", "gtx",
			"processor", "cpu", "gpu", "core", "ultra", "inch", "hz", "m1", "m2", "m3", "m4", "storage", "memory",
		),
		TechnicalTokenPattern: regexp.MustCompile(`^\d+(?:\.\d+)?(?:gb|tb|hz|inch|in|cm|ghz)?$`),
		FillerWords: set(
			"stunning", "experience", "amazing", "awesome", "beautiful", "ultimate", "perfect", "best", "great",
			"sleek", "elegant", "incredible", "premium", "superb", "fantastic", "excellent", "stylish", "powerful",
			"blazing", "lightning", "good", "cool", "epic", "beast",
		),
		StrongFillerPhrases: []string{"next level experience", "game changer", "jaw dropping", "blazing fast performance"},
		BudgetPatterns:      budgetPatterns(),
		IgnoredSpecKeys:     ignoredSpecKeys(),
		UsageKeywords: map[string][]string{
			"gaming":       {"gaming", "gamer", "games", "esports"},
			"coding":       {"coding", "programming", "developer", "software"},
			"professional": {"video editing", "editing", "design", "rendering", "3d", "creative"},
			"office":       {"office", "work", "productivity", "study", "students", "college"},
		},
		UsageProfiles: map[string]UsageProfile{
			"gaming": {
				FeatureGPU:         {"integrated": 0.2},
				FeatureRAM:         {"8": 0.5, "16": 0.9, "32": 1.0},
				FeatureRefreshRate: {"60": 0.3, "120": 0.75, "144": 0.9, "165": 1.0},
			},
			"coding": {
				FeatureRAM:     {"8": 0.5, "16": 0.9, "32": 1.0},
				FeatureStorage: {"256": 0.5, "512": 0.85, "1024": 1.0},
			},
			"office": {
				FeatureRAM:     {"4": 0.4, "8": 0.9, "16": 1.0},
				FeatureStorage: {"256": 0.8, "512": 1.0},
			},
		},
		QualityRanks: map[string]map[string]float64{
			FeatureProcessor: {
				"i3": 0.4, "i5": 0.65, "i7": 0.85, "i9": 1.0, "core-ultra-5": 0.7, "core-ultra-7": 0.9, "core-ultra-9": 1.0,
				"ryzen3": 0.4, "ryzen5": 0.65, "ryzen7": 0.85, "ryzen9": 1.0,
				"m1": 0.7, "m2": 0.8, "m3": 0.85, "m4": 0.9, "m3-pro": 0.95, "m4-pro": 1.0, "m3-max": 1.0, "m4-max": 1.0,
				"celeron": 0.2, "pentium": 0.25, "snapdragon-x": 0.8,
			},
			FeatureGPU: {"integrated": 0.3, "*": 0.8},
		},
		QualityCurves: map[string]QualityCurve{
			FeatureRAM:         {Direction: "higher", Best: 32, Worst: 4, Floor: 0.2},
			FeatureStorage:     {Direction: "higher", Best: 1024, Worst: 128, Floor: 0.3},
			FeatureRefreshRate: {Direction: "higher", Best: 165, Worst: 60, Floor: 0.4},
		},
		ComparisonFeatures: []string{
			domain.PriceFeature, FeatureProcessor, FeatureRAM, FeatureStorage, FeatureGPU, FeatureSize, FeatureRefreshRate, FeatureBrand,
		},
		FeatureLabels: map[string]string{
			domain.PriceFeature: "price", FeatureProcessor: "processor", FeatureRAM: "RAM", FeatureStorage: "storage",
			FeatureGPU: "graphics", FeatureSize: "screen size", FeatureRefreshRate: "refresh rate", FeatureBrand: "brand",
		},
		Prices: PriceBands{
			UltraBudgetMax:     25000,
			SweetSpotMin:       40000,
			SweetSpotMax:       90000,
			UltraPremiumMin:    150000,
			MinorUnitThreshold: 10000000,
			MinorUnitDivisor:   100,
			CurrencySymbol:     "₹",
		},
		HybridProfiles:      hybridProfiles(),
		PerformanceContexts: set("gaming", "professional"),
		Excellence: []ExcellenceRule{
			{Feature: FeatureRAM, Min: 32, Bonus: 0.08},
			{Feature: FeatureRAM, Min: 16, Bonus: 0.04},
			{Feature: FeatureStorage, Min: 1024, Bonus: 0.05},
			{Feature: FeatureProcessor, Values: []string{"i9", "ryzen9", "core-ultra-9", "m4-pro", "m3-max", "m4-max"}, Bonus: 0.10},
			{Feature: FeatureProcessor, Values: []string{"i7", "ryzen7", "core-ultra-7", "m4"}, Bonus: 0.05},
		},
		ExcellenceCap: 0.25,
		ValueRatioCap: 5,
	}
}
