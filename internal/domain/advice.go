package domain

// HealthAdvice is the public-health guidance shown for a tier.
type HealthAdvice struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

var adviceByTier = map[GradeTier]HealthAdvice{
	Good: {
		Title:          "좋음",
		Message:        "대기오염 관련 질환자군에서도 영향이 거의 없는 수준",
		Recommendation: "모든 연령층에서 실외활동 가능",
	},
	Moderate: {
		Title:          "보통",
		Message:        "민감군에서는 장시간 또는 무리한 실외활동 시 영향이 있을 수 있음",
		Recommendation: "민감군은 장시간 실외활동을 줄이는 것이 좋음",
	},
	Bad: {
		Title:          "나쁨",
		Message:        "민감군에서는 단시간 실외활동도 영향이 있을 수 있음",
		Recommendation: "민감군은 실외활동을 자제하고, 일반인도 장시간 실외활동을 자제",
	},
	VeryBad: {
		Title:          "매우나쁨",
		Message:        "모든 사람들에게 영향이 있을 수 있음",
		Recommendation: "모든 연령층에서 실외활동을 자제하고 실내 생활을 권장",
	},
}

// Advice returns the health guidance for t. Unknown tiers get the good advice.
func (t GradeTier) Advice() HealthAdvice {
	if a, ok := adviceByTier[t]; ok {
		return a
	}
	return adviceByTier[Good]
}
