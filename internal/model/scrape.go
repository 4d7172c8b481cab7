package model

// ScrapedMetrics holds the on-page signals collected from a single homepage
// fetch. Zero values are valid and mean "not observed"; a failed fetch still
// produces a ScrapedMetrics with the HTTP status (or 0) recorded so the
// audit can proceed on partial data.
type ScrapedMetrics struct {
	Title               string   `json:"title"`
	MetaDescription     string   `json:"meta_description"`
	H1Count             int      `json:"h1_count"`
	H2Count             int      `json:"h2_count"`
	H3Count             int      `json:"h3_count"`
	H1Texts             []string `json:"h1_texts"`
	WordCount           int      `json:"word_count"`
	InternalLinks       int      `json:"internal_links"`
	ExternalLinks       int      `json:"external_links"`
	MissingAltImages    int      `json:"missing_alt_images"`
	TotalImages         int      `json:"total_images"`
	CanonicalURL        string   `json:"canonical_url"`
	RobotsMeta          string   `json:"robots_meta"`
	HasViewportMeta     bool     `json:"has_viewport_meta"`
	OGTitle             string   `json:"og_title"`
	OGDescription       string   `json:"og_description"`
	OGImage             string   `json:"og_image"`
	HasStructuredData   bool     `json:"has_structured_data"`
	StructuredDataTypes []string `json:"structured_data_types"`
	HreflangTags        []string `json:"hreflang_tags"`
	HTTPStatus          int      `json:"http_status"`
	ResponseTimeMS      int64    `json:"response_time_ms"`
}
