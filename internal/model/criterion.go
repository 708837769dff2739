// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// MaxSubScore is the top of the raw sub-score scale used by the rubric.
const MaxSubScore = 3

// Criterion is one entry of the scoring rubric. The catalog is static
// reference data: ten criteria, each weighted 10, weights summing to 100.
type Criterion struct {
	ID       string
	Name     string
	Guidance string
	Weight   float64
	Rubric   map[int]string // sub-score value (0-3) -> level description
}

// Criteria returns the scoring catalog in presentation order.
func Criteria() []Criterion {
	return criteria
}

// CriterionByID looks up a catalog entry. The second return is false for
// unknown ids; the scoring engine ignores those.
func CriterionByID(id string) (Criterion, bool) {
	for _, c := range criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// TotalWeight returns the sum of all catalog weights (currently 100).
func TotalWeight() float64 {
	var sum float64
	for _, c := range criteria {
		sum += c.Weight
	}
	return sum
}

var criteria = []Criterion{
	{
		ID:       "overview_objectives",
		Name:     "Project Overview & SMART Objectives",
		Guidance: "Assesses the clarity and quality of the project's overview and objectives.",
		Weight:   10,
		Rubric: map[int]string{
			0: "No clear overview or objectives; lacks purpose or beneficiaries.",
			1: "Basic overview with vague objectives; generic language.",
			2: "Clear overview with mostly SMART objectives; minor gaps.",
			3: "Concise, compelling overview; fully SMART objectives and clear beneficiaries.",
		},
	},
	{
		ID:       "local_priorities",
		Name:     "Alignment with Local Priorities",
		Guidance: "How well does the project connect to the identified needs and priorities of the local area?",
		Weight:   10,
		Rubric: map[int]string{
			0: "No explicit link to local priorities; off-scope.",
			1: "Mentions a relevant priority but connection is weak or generic.",
			2: "Good linkage to one or more priorities with some specific examples.",
			3: "Direct, specific alignment to the top local priorities with strong evidence.",
		},
	},
	{
		ID:       "community_benefit",
		Name:     "Community Benefit & Outcomes",
		Guidance: "Evaluates the project's potential benefits and the clarity of its short and long-term outcomes.",
		Weight:   10,
		Rubric: map[int]string{
			0: "Benefits not described or unclear; no outcomes.",
			1: "Benefits noted but outcomes vague; little distinction between short/long-term.",
			2: "Clear benefits and plausible outcomes; some indicators described.",
			3: "Compelling benefits with specific short and long-term outcomes and simple indicators.",
		},
	},
	{
		ID:       "activities_milestones",
		Name:     "Activities, Milestones & Delivery Responsibilities",
		Guidance: "Assesses the coherence and feasibility of the project's activity plan, milestones, and role allocation.",
		Weight:   10,
		Rubric: map[int]string{
			0: "Activities absent or not credible; no milestones; roles unclear.",
			1: "Some activities listed; milestones or responsibilities partly defined.",
			2: "Coherent activities with milestones and named roles; feasible plan.",
			3: "Comprehensive activity plan with realistic milestones and clear owners; delivery-ready.",
		},
	},
	{
		ID:       "timeline_realism",
		Name:     "Timeline & Scheduling Realism",
		Guidance: "How realistic and well-structured is the project's timeline?",
		Weight:   10,
		Rubric: map[int]string{
			0: "No timeline or dates unrealistic.",
			1: "Basic dates provided; feasibility uncertain.",
			2: "Realistic start/end/duration aligned to activities.",
			3: "Robust timeline with sequencing that clearly supports delivery and review points.",
		},
	},
	{
		ID:       "collaborations_partnerships",
		Name:     "Collaborations & Partnerships",
		Guidance: "Evaluates the strength and clarity of partnerships that enhance the project's reach and delivery.",
		Weight:   10,
		Rubric: map[int]string{
			0: "No partners identified; opportunities not explored.",
			1: "Potential partners named but roles vague or tentative.",
			2: "Relevant partners named with defined roles and mutual benefits.",
			3: "Strong partnership model (centres/groups named) clearly strengthening reach and delivery.",
		},
	},
	{
		ID:       "risk_management",
		Name:     "Risk Management & Feasibility",
		Guidance: "Assesses the identification of key risks and the credibility of the proposed mitigation strategies.",
		Weight:   10,
		Rubric: map[int]string{
			0: "No risks identified; feasibility not addressed.",
			1: "Some risks listed; mitigations generic or partial.",
			2: "Key risks identified with credible mitigations.",
			3: "Comprehensive risk register with proportionate mitigations and clear owners.",
		},
	},
	{
		ID:       "budget_value",
		Name:     "Budget Transparency & Value for Money",
		Guidance: "How transparent, justified, and proportionate is the project's budget?",
		Weight:   10,
		Rubric: map[int]string{
			0: "Insufficient or unclear costs; poor justification.",
			1: "Headline costs given; some justification but gaps remain.",
			2: "Transparent line-by-line costs with reasonable assumptions.",
			3: "Fully justified budget (rates x hours/quotes), lean and proportionate to outcomes.",
		},
	},
	{
		ID:       "cross_area_specificity",
		Name:     "Cross-Area Specificity & Venues (if applicable)",
		Guidance: "For cross-area projects, assesses the clarity of the budget and venue details for each area.",
		Weight:   10,
		Rubric: map[int]string{
			0: "No area split or venues named where cross-area is claimed.",
			1: "Partial split: venue(s) or local costs unclear.",
			2: "Clear area split and notes; key local delivery costs included.",
			3: "Complete area split with named venues/rooms and reconciles to main budget.",
		},
	},
	{
		ID:       "marmot_wfg",
		Name:     "Alignment with Marmot Principles & WFG Goals",
		Guidance: "How well does the project demonstrate practical alignment with these principles and goals?",
		Weight:   10,
		Rubric: map[int]string{
			0: "No justification beyond ticks or irrelevant claims.",
			1: "Basic justifications; generic statements.",
			2: "Specific, credible examples for selected principles/goals.",
			3: "Strong, practical examples tying activities to selected principles/goals and outcomes.",
		},
	},
}
