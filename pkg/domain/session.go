package domain

import (
	"fmt"
	"time"
)

// Step はウィザードの進行段階を表します。1 から 5 までの固定シーケンスです。
type Step int

const (
	StepProfile   Step = iota + 1 // 年齢層・性別・画風の選択
	StepSituation                 // 状況の自由記述
	StepEmotion                   // 感情の選択
	StepReason                    // 理由の自由記述
	StepComic                     // 4コマ漫画の生成と表示
)

// FirstStep と LastStep はウィザードの範囲です。
const (
	FirstStep = StepProfile
	LastStep  = StepComic
)

// PanelCount は1つの物語を構成するコマ数なのだ。
const PanelCount = 4

var stepNames = map[Step]string{
	StepProfile:   "profile",
	StepSituation: "situation",
	StepEmotion:   "emotion",
	StepReason:    "reason",
	StepComic:     "comic",
}

// String はステップの識別名を返します。
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid はステップが 1..5 の範囲にあるか判定します。
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Profile はステップ1で確定する利用者の属性です。
type Profile struct {
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
	ArtStyle string `json:"art_style"`
}

// IsZero は Profile が未入力かどうかを返します。
func (p Profile) IsZero() bool {
	return p.AgeGroup == "" && p.Gender == "" && p.ArtStyle == ""
}

// Session は1人の利用者のウィザード状態を保持します。
// 各フィールドは対応するステップが完了した後にのみ値を持ちます。
type Session struct {
	ID        string   `json:"id"`
	Step      Step     `json:"step"`
	Profile   Profile  `json:"profile"`
	Situation string   `json:"situation,omitempty"`
	Emotion   string   `json:"emotion,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Scenes    []string `json:"scenes,omitempty"`
	Panels    []Panel  `json:"panels,omitempty"`
	Weather   string   `json:"weather,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`

	// UsageCount は UsageDate の日に生成を実行した回数です。
	UsageCount int    `json:"usage_count"`
	UsageDate  string `json:"usage_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession はステップ1から始まる新しいセッションを生成します。
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepProfile,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone はスライスを含めたディープコピーを返すのだ。
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Scenes != nil {
		c.Scenes = append([]string(nil), s.Scenes...)
	}
	if s.Warnings != nil {
		c.Warnings = append([]string(nil), s.Warnings...)
	}
	if s.Panels != nil {
		c.Panels = make([]Panel, len(s.Panels))
		for i, p := range s.Panels {
			c.Panels[i] = p.Clone()
		}
	}
	return &c
}

// ClearFrom は指定ステップ以降で確定する値をすべて消去します。
func (s *Session) ClearFrom(step Step) {
	if step <= StepProfile {
		s.Profile = Profile{}
	}
	if step <= StepSituation {
		s.Situation = ""
	}
	if step <= StepEmotion {
		s.Emotion = ""
	}
	if step <= StepReason {
		s.Reason = ""
	}
	if step <= StepComic {
		s.Scenes = nil
		s.Panels = nil
		s.Weather = ""
		s.Warnings = nil
	}
}

// ResetKeepingUsage はウィザードを最初に戻しますが、当日の利用回数は保持します。
func (s *Session) ResetKeepingUsage(now time.Time) {
	s.ClearFrom(StepProfile)
	s.Step = StepProfile
	s.UpdatedAt = now
}

// HasResult は生成結果を保持しているかどうかを返します。
func (s *Session) HasResult() bool {
	return len(s.Scenes) > 0
}

// UsageOn は指定日の利用回数を返します。日付が変わっていれば 0 なのだ。
func (s *Session) UsageOn(date string) int {
	if s.UsageDate != date {
		return 0
	}
	return s.UsageCount
}

// AddUsage は指定日の利用回数を1つ増やし、新しい値を返します。
func (s *Session) AddUsage(date string) int {
	if s.UsageDate != date {
		s.UsageDate = date
		s.UsageCount = 0
	}
	s.UsageCount++
	return s.UsageCount
}
