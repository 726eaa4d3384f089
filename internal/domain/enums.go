package domain

// AIProvider identifies an LLM backend used for AI extraction.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
	ProviderLocal     AIProvider = "local"
	ProviderGemini    AIProvider = "gemini"
)

// Strategy records which extraction path produced a ParsedReport.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyTable  Strategy = "table"
	StrategyRegex  Strategy = "regex"
	StrategyAI     Strategy = "ai"
	StrategyMerged Strategy = "merged"
)

// Source marks which pass supplied a field in a merged report.
type Source string

const (
	SourceDeterministic Source = "deterministic"
	SourceAI            Source = "ai"
	SourceAgree         Source = "agree"
)
