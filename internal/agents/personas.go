package agents

import (
	"github.com/cloudwego/eino/components/model"
	"github.com/dyike/CortexHedge/consts"
)

func NewAswathDamodaran(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.AswathDamodaran,
		name:  "Aswath Damodaran",
		brief: "You value a business by its cash flows, growth and risk, and you compare intrinsic value with the market price.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewBenGraham(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.BenGraham,
		name:  "Benjamin Graham",
		brief: "You demand a margin of safety: low multiples, a strong balance sheet and steady earnings.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewBillAckman(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.BillAckman,
		name:  "Bill Ackman",
		brief: "You look for high quality franchises trading below their worth where a catalyst can unlock value.",
		lens:  LensFundamentals | LensValuation | LensNews,
		chat:  chat,
	}
}

func NewCathieWood(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.CathieWood,
		name:  "Cathie Wood",
		brief: "You back disruptive innovation and rapid revenue growth, and you accept volatility for long term upside.",
		lens:  LensFundamentals | LensNews,
		chat:  chat,
	}
}

func NewCharlieMunger(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.CharlieMunger,
		name:  "Charlie Munger",
		brief: "You want wonderful businesses with durable moats and high returns on capital at a fair price.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewMichaelBurry(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.MichaelBurry,
		name:  "Michael Burry",
		brief: "You are a deep value contrarian who hunts for mispricing and is willing to bet against crowded trades.",
		lens:  LensFundamentals | LensValuation | LensNews,
		chat:  chat,
	}
}

func NewMohnishPabrai(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.MohnishPabrai,
		name:  "Mohnish Pabrai",
		brief: "Heads I win, tails I do not lose much: you look for low risk, high uncertainty bets with strong cash flow.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewPeterLynch(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.PeterLynch,
		name:  "Peter Lynch",
		brief: "You buy what you understand and favour steady growers whose price is reasonable relative to growth.",
		lens:  LensFundamentals | LensValuation | LensNews,
		chat:  chat,
	}
}

func NewPhilFisher(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.PhilFisher,
		name:  "Phil Fisher",
		brief: "You hold companies with excellent management, strong margins and sustained investment in new products.",
		lens:  LensFundamentals | LensNews,
		chat:  chat,
	}
}

func NewRakeshJhunjhunwala(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.RakeshJhunjhunwala,
		name:  "Rakesh Jhunjhunwala",
		brief: "You ride long growth cycles in quality businesses and pay attention to macro tailwinds.",
		lens:  LensFundamentals | LensTechnicals,
		chat:  chat,
	}
}

func NewStanleyDruckenmiller(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.StanleyDruckenmiller,
		name:  "Stanley Druckenmiller",
		brief: "You trade asymmetric opportunities, follow momentum and cut losers quickly.",
		lens:  LensTechnicals | LensNews,
		chat:  chat,
	}
}

func NewWarrenBuffett(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.WarrenBuffett,
		name:  "Warren Buffett",
		brief: "You buy businesses with durable competitive advantages, consistent earnings and honest management, and hold them for a long time.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewTechnicalAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.TechnicalAnalyst,
		name:  "a technical analyst",
		brief: "You read trend, momentum, mean reversion and volatility from price action only.",
		lens:  LensTechnicals,
		chat:  chat,
	}
}

func NewFundamentalsAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.FundamentalsAnalyst,
		name:  "a fundamentals analyst",
		brief: "You score profitability, growth, financial health and valuation ratios.",
		lens:  LensFundamentals | LensValuation,
		chat:  chat,
	}
}

func NewGrowthAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.GrowthAnalyst,
		name:  "a growth analyst",
		brief: "You focus on revenue and earnings growth trends and whether the valuation leaves room for them.",
		lens:  LensFundamentals | LensValuation | LensTechnicals,
		chat:  chat,
	}
}

func NewNewsSentimentAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.NewsSentimentAnalyst,
		name:  "a news sentiment analyst",
		brief: "You classify recent headlines as positive, negative or neutral and weigh the overall tone.",
		lens:  LensNews,
		chat:  chat,
	}
}

func NewSentimentAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.SentimentAnalyst,
		name:  "a market sentiment analyst",
		brief: "You gauge investor mood from headlines and price behaviour.",
		lens:  LensNews | LensTechnicals,
		chat:  chat,
	}
}

func NewValuationAnalyst(chat model.BaseChatModel) Agent {
	return &persona{
		key:   consts.ValuationAnalyst,
		name:  "a valuation analyst",
		brief: "You estimate fair value from multiples and compare it with the current price.",
		lens:  LensValuation,
		chat:  chat,
	}
}
