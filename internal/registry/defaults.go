package registry

import (
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/dyike/CortexHedge/models"
)

// 分析师配置
var defaultAnalysts = []Descriptor{
	{
		Key:            consts.AswathDamodaran,
		DisplayName:    "阿斯瓦斯·达莫达兰",
		Description:    "估值学院长",
		InvestingStyle: "专注于内在价值和财务指标，通过严谨的估值分析评估投资机会。",
		Order:          0,
		New:            agents.NewAswathDamodaran,
	},
	{
		Key:            consts.BenGraham,
		DisplayName:    "本杰明·格雷厄姆",
		Description:    "价值投资之父",
		InvestingStyle: "强调安全边际，通过系统性价值分析投资于基本面强劲的被低估公司。",
		Order:          1,
		New:            agents.NewBenGraham,
	},
	{
		Key:            consts.BillAckman,
		DisplayName:    "比尔·阿克曼",
		Description:    "激进投资者",
		InvestingStyle: "通过战略激进主义和逆向投资立场，寻求影响管理层并释放价值。",
		Order:          2,
		New:            agents.NewBillAckman,
	},
	{
		Key:            consts.CathieWood,
		DisplayName:    "凯西·伍德",
		Description:    "成长投资女王",
		InvestingStyle: "专注于颠覆性创新和成长，投资于引领技术进步和市场颠覆的公司。",
		Order:          3,
		New:            agents.NewCathieWood,
	},
	{
		Key:            consts.CharlieMunger,
		DisplayName:    "查理·芒格",
		Description:    "理性思考者",
		InvestingStyle: "倡导价值投资，专注于优质企业和长期增长，通过理性决策。",
		Order:          4,
		New:            agents.NewCharlieMunger,
	},
	{
		Key:            consts.MichaelBurry,
		DisplayName:    "迈克尔·伯里",
		Description:    "大空头逆向投资者",
		InvestingStyle: "进行逆向押注，经常做空被高估的市场，并通过深入基本面分析投资于被低估的资产。",
		Order:          5,
		New:            agents.NewMichaelBurry,
	},
	{
		Key:            consts.MohnishPabrai,
		DisplayName:    "莫尼什·帕伯莱",
		Description:    "Dhandho投资者",
		InvestingStyle: "专注于价值投资和长期增长，通过基本面分析和安全边际。",
		Order:          6,
		New:            agents.NewMohnishPabrai,
	},
	{
		Key:            consts.PeterLynch,
		DisplayName:    "彼得·林奇",
		Description:    "10倍股投资者",
		InvestingStyle: "投资于业务模式易于理解且具有强劲增长潜力的公司，使用'买你所知道'的策略。",
		Order:          6,
		New:            agents.NewPeterLynch,
	},
	{
		Key:            consts.PhilFisher,
		DisplayName:    "菲尔·费舍尔",
		Description:    "闲聊投资者",
		InvestingStyle: "强调投资于管理强大和产品创新的公司，通过闲聊研究专注于长期增长。",
		Order:          7,
		New:            agents.NewPhilFisher,
	},
	{
		Key:            consts.RakeshJhunjhunwala,
		DisplayName:    "拉凯什·朱恩贾拉",
		Description:    "印度大牛市",
		InvestingStyle: "利用宏观经济洞察投资于高增长行业，特别是新兴市场和国内机会。",
		Order:          8,
		New:            agents.NewRakeshJhunjhunwala,
	},
	{
		Key:            consts.StanleyDruckenmiller,
		DisplayName:    "斯坦利·德鲁肯米勒",
		Description:    "宏观投资者",
		InvestingStyle: "专注于宏观经济趋势，通过自上而下分析对货币、商品和利率进行大额押注。",
		Order:          9,
		New:            agents.NewStanleyDruckenmiller,
	},
	{
		Key:            consts.WarrenBuffett,
		DisplayName:    "沃伦·巴菲特",
		Description:    "奥马哈先知",
		InvestingStyle: "通过价值投资和长期持有，寻求具有强劲基本面和竞争优势的公司。",
		Order:          10,
		New:            agents.NewWarrenBuffett,
	},
	{
		Key:            consts.TechnicalAnalyst,
		DisplayName:    "技术分析师",
		Description:    "图表模式专家",
		InvestingStyle: "专注于图表模式和市场趋势，经常使用技术指标和价格行为分析做出投资决策。",
		Order:          11,
		New:            agents.NewTechnicalAnalyst,
	},
	{
		Key:            consts.FundamentalsAnalyst,
		DisplayName:    "基本面分析师",
		Description:    "财务报表专家",
		InvestingStyle: "深入研究财务报表和经济指标，通过基本面分析评估公司的内在价值。",
		Order:          12,
		New:            agents.NewFundamentalsAnalyst,
	},
	{
		Key:            consts.GrowthAnalyst,
		DisplayName:    "成长分析师",
		Description:    "成长专家",
		InvestingStyle: "分析增长趋势和估值，通过增长分析识别增长机会。",
		Order:          13,
		New:            agents.NewGrowthAnalyst,
	},
	{
		Key:            consts.NewsSentimentAnalyst,
		DisplayName:    "新闻情绪分析师",
		Description:    "新闻情绪专家",
		InvestingStyle: "分析新闻情绪以预测市场走势，并通过新闻分析识别机会。",
		Order:          14,
		New:            agents.NewNewsSentimentAnalyst,
	},
	{
		Key:            consts.SentimentAnalyst,
		DisplayName:    "市场情绪分析师",
		Description:    "市场情绪专家",
		InvestingStyle: "衡量市场情绪和投资者行为，通过行为分析预测市场走势并识别机会。",
		Order:          15,
		New:            agents.NewSentimentAnalyst,
	},
	{
		Key:            consts.ValuationAnalyst,
		DisplayName:    "估值分析师",
		Description:    "公司估值专家",
		InvestingStyle: "专注于确定公司的公允价值，使用各种估值模型和财务指标进行投资决策。",
		Order:          16,
		New:            agents.NewValuationAnalyst,
	},
}

var defaultSwarms = []models.SwarmInfo{
	{Name: "价值投资者", Agents: []string{consts.BenGraham, consts.CharlieMunger, consts.WarrenBuffett}},
	{Name: "数据奇才", Agents: []string{consts.TechnicalAnalyst, consts.FundamentalsAnalyst, consts.SentimentAnalyst, consts.ValuationAnalyst}},
	{Name: "市场先锋", Agents: []string{consts.MichaelBurry, consts.BillAckman, consts.StanleyDruckenmiller}},
}

// Default builds the production registry. The table is static, so a
// failure here is a programming error.
func Default() *Registry {
	entries := make([]Descriptor, len(defaultAnalysts))
	for i, d := range defaultAnalysts {
		d.Type = consts.AnalystType
		entries[i] = d
	}
	r, err := New(entries, defaultSwarms)
	if err != nil {
		panic(err)
	}
	return r
}
