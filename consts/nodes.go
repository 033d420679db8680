package consts

// 分析师 key
const (
	AswathDamodaran      = "aswath_damodaran"
	BenGraham            = "ben_graham"
	BillAckman           = "bill_ackman"
	CathieWood           = "cathie_wood"
	CharlieMunger        = "charlie_munger"
	MichaelBurry         = "michael_burry"
	MohnishPabrai        = "mohnish_pabrai"
	PeterLynch           = "peter_lynch"
	PhilFisher           = "phil_fisher"
	RakeshJhunjhunwala   = "rakesh_jhunjhunwala"
	StanleyDruckenmiller = "stanley_druckenmiller"
	WarrenBuffett        = "warren_buffett"
	TechnicalAnalyst     = "technical_analyst"
	FundamentalsAnalyst  = "fundamentals_analyst"
	GrowthAnalyst        = "growth_analyst"
	NewsSentimentAnalyst = "news_sentiment_analyst"
	SentimentAnalyst     = "sentiment_analyst"
	ValuationAnalyst     = "valuation_analyst"
)

// 图节点
const (
	AgentNodeSuffix  = "_agent"
	FetchMarketData  = "fetch_market_data"
	PortfolioManager = "portfolio_manager"
)

// AnalystType is the only descriptor type the registry accepts.
const AnalystType = "analyst"
