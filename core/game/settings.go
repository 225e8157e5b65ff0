package game

// Settings are the moderator-tunable room parameters. They are broadcast to
// every client so round timers can be computed locally.
type Settings struct {
	ExtractDurationMs int `json:"extractDurationMs"`
	AnswerWindowMs    int `json:"answerWindowMs"`
	BasePoints        int `json:"basePoints"`
	AnswerCooldownMs  int `json:"answerCooldownMs"`
}

// SettingsPatch is a partial settings update; nil fields keep their current
// value.
type SettingsPatch struct {
	ExtractDurationMs *int `json:"extractDurationMs,omitempty"`
	AnswerWindowMs    *int `json:"answerWindowMs,omitempty"`
	BasePoints        *int `json:"basePoints,omitempty"`
	AnswerCooldownMs  *int `json:"answerCooldownMs,omitempty"`
}

// Apply merges a patch into the settings.
func (s *Settings) Apply(p SettingsPatch) {
	if p.ExtractDurationMs != nil {
		s.ExtractDurationMs = *p.ExtractDurationMs
	}
	if p.AnswerWindowMs != nil {
		s.AnswerWindowMs = *p.AnswerWindowMs
	}
	if p.BasePoints != nil {
		s.BasePoints = *p.BasePoints
	}
	if p.AnswerCooldownMs != nil {
		s.AnswerCooldownMs = *p.AnswerCooldownMs
	}
}
