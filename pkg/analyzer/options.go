package analyzer

// Option configures an Analyzer.
type Option func(*optionHolder)

type optionHolder struct {
	geminiAPIKey string
	geminiModel  string
	gcpProject   string
	cacheDir     string
	maxTweets    int
	demoSeed     uint64
	noCache      bool
	memoryCache  bool
}

// WithMaxTweets caps how many recent posts are fetched per profile.
func WithMaxTweets(n int) Option {
	return func(o *optionHolder) { o.maxTweets = n }
}

// WithCacheDir enables the disk-backed result cache in dir.
func WithCacheDir(dir string) Option {
	return func(o *optionHolder) { o.cacheDir = dir }
}

// WithNoCache disables all caching.
func WithNoCache() Option {
	return func(o *optionHolder) { o.noCache = true }
}

// WithMemoryOnlyCache selects an in-memory cache with no disk snapshot,
// which is what the web server wants.
func WithMemoryOnlyCache() Option {
	return func(o *optionHolder) { o.memoryCache = true }
}

// WithGeminiAPIKey enables the AI activity summary.
func WithGeminiAPIKey(key string) Option {
	return func(o *optionHolder) { o.geminiAPIKey = key }
}

// WithGeminiModel overrides the default Gemini model.
func WithGeminiModel(model string) Option {
	return func(o *optionHolder) { o.geminiModel = model }
}

// WithGCPProject sets the GCP project for Vertex-backed Gemini access.
func WithGCPProject(project string) Option {
	return func(o *optionHolder) { o.gcpProject = project }
}

// WithDemoSeed pins the demo-data RNG seed. Zero keeps the per-username
// default, which makes demo output stable for a given username.
func WithDemoSeed(seed uint64) Option {
	return func(o *optionHolder) { o.demoSeed = seed }
}
