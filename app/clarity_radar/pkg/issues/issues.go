package issues

import (
	"math"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// rule 问题目录中的一条规则
type rule struct {
	issue   model.Issue
	applies func(model.PillarScores) bool
}

// catalog 按固定顺序评估，输出顺序与目录一致
var catalog = []rule{
	{
		issue: model.Issue{
			ID:               "missing_autodealer_schema",
			Severity:         model.SeverityHigh,
			Title:            "Missing AutoDealer Schema",
			Description:      "Your website is missing critical AutoDealer structured data, reducing AI visibility by 15-20%.",
			MonthlyImpact:    8200,
			FixEffort:        "2 hours",
			AutoFixAvailable: true,
		},
		applies: func(p model.PillarScores) bool { return p.Schema < 80 },
	},
	{
		issue: model.Issue{
			ID:               "low_review_response_rate",
			Severity:         model.SeverityHigh,
			Title:            "Low Review Response Rate",
			Description:      "Only 60% of reviews are being responded to within 48 hours, impacting trust signals.",
			MonthlyImpact:    3100,
			FixEffort:        "1 hour",
			AutoFixAvailable: false,
		},
		applies: func(p model.PillarScores) bool { return p.UGC < 75 },
	},
	{
		issue: model.Issue{
			ID:               "incomplete_faq_schema",
			Severity:         model.SeverityMedium,
			Title:            "Incomplete FAQ Schema",
			Description:      "FAQ structured data is missing or incomplete, reducing zero-click coverage.",
			MonthlyImpact:    2400,
			FixEffort:        "3 hours",
			AutoFixAvailable: true,
		},
		applies: func(p model.PillarScores) bool { return p.Schema < 90 },
	},
	{
		issue: model.Issue{
			ID:               "missing_vehicle_schema",
			Severity:         model.SeverityMedium,
			Title:            "Missing Vehicle Schema on Service Pages",
			Description:      "Add Vehicle & Offer JSON-LD to all /service/ and /parts/ endpoints to improve AI answer structure.",
			MonthlyImpact:    5600,
			FixEffort:        "4 hours",
			AutoFixAvailable: true,
		},
		applies: func(p model.PillarScores) bool { return p.Schema < 85 },
	},
	{
		issue: model.Issue{
			ID:               "incomplete_gbp_categories",
			Severity:         model.SeverityMedium,
			Title:            "Reinforce GBP Departmental Entities",
			Description:      "Reinforce Google Business Profile categories for each department (e.g. \"Service\", \"Parts\").",
			MonthlyImpact:    3200,
			FixEffort:        "2 hours",
			AutoFixAvailable: false,
		},
		applies: func(p model.PillarScores) bool { return p.Geo < 85 },
	},
	{
		issue: model.Issue{
			ID:               "slow_page_experience",
			Severity:         model.SeverityMedium,
			Title:            "Slow Page Experience",
			Description:      "The home page loads slowly or is too heavy, which lowers crawl frequency and answer-engine trust.",
			MonthlyImpact:    2800,
			FixEffort:        "6 hours",
			AutoFixAvailable: false,
		},
		applies: func(p model.PillarScores) bool { return p.Performance < 70 },
	},
	{
		issue: model.Issue{
			ID:               "stale_inventory_content",
			Severity:         model.SeverityLow,
			Title:            "Stale Inventory Content",
			Description:      "Site content has not been updated recently, so AI assistants may cite outdated inventory and offers.",
			MonthlyImpact:    1500,
			FixEffort:        "1 hour",
			AutoFixAvailable: true,
		},
		applies: func(p model.PillarScores) bool { return p.Freshness < 60 },
	},
	{
		issue: model.Issue{
			ID:               "critical_listing_gaps",
			Severity:         model.SeverityCritical,
			Title:            "Critical Business Listing Gaps",
			Description:      "Core listing data (hours, address, phone) is missing from major directories.",
			MonthlyImpact:    9400,
			FixEffort:        "1 day",
			AutoFixAvailable: false,
		},
		applies: func(p model.PillarScores) bool { return p.Geo < 50 },
	},
}

// Derive 根据支柱得分生成问题列表，从不返回 nil
func Derive(p model.PillarScores) []model.Issue {
	out := make([]model.Issue, 0, len(catalog))
	for _, r := range catalog {
		if r.applies(p) {
			out = append(out, r.issue)
		}
	}
	return out
}

// Impact 汇总问题的收入影响；subscriptionCost <= 0 时 ROI 记为 0
func Impact(issues []model.Issue, subscriptionCost float64) model.RevenueImpact {
	var monthly int64
	for _, is := range issues {
		monthly += is.MonthlyImpact
	}
	ri := model.RevenueImpact{MonthlyAtRisk: monthly, AnnualAtRisk: monthly * 12}
	if subscriptionCost > 0 {
		ri.ROIMultiple = int(math.Round(float64(monthly) / subscriptionCost))
	}
	return ri
}

// Catalog 返回目录中全部问题 ID，按评估顺序
func Catalog() []string {
	ids := make([]string, len(catalog))
	for i, r := range catalog {
		ids[i] = r.issue.ID
	}
	return ids
}
