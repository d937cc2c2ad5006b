// Package wizard は、5段階のウィザードの状態遷移を管理します。
package wizard

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/safety"
)

// MaxTextLength は自由記述の最大文字数（rune 数）です。
const MaxTextLength = 300

// ContentChecker は自由記述の安全性を検査する契約なのだ。
type ContentChecker interface {
	Check(ctx context.Context, text string) safety.Verdict
}

// Machine はセッションに対するステップ遷移を行います。状態は Session 側が保持します。
type Machine struct {
	catalog *catalog.Catalog
	checker ContentChecker
	now     func() time.Time
}

// NewMachine は Machine を生成します。checker が nil なら安全性検査を行いません。
func NewMachine(cat *catalog.Catalog, checker ContentChecker) *Machine {
	return &Machine{catalog: cat, checker: checker, now: time.Now}
}

func (m *Machine) touch(s *domain.Session) {
	s.UpdatedAt = m.now()
}

func expect(s *domain.Session, step domain.Step) error {
	if s.Step != step {
		return wrongStep(step, s.Step)
	}
	return nil
}

// SubmitProfile はステップ1の入力を確定し、ステップ2へ進めます。
func (m *Machine) SubmitProfile(_ context.Context, s *domain.Session, p domain.Profile) error {
	if err := expect(s, domain.StepProfile); err != nil {
		return err
	}
	if _, ok := m.catalog.AgeGroup(p.AgeGroup); !ok {
		return invalid("age_group", MsgUnknown)
	}
	if _, ok := m.catalog.Gender(p.Gender); !ok {
		return invalid("gender", MsgUnknown)
	}
	if _, ok := m.catalog.ArtStyle(p.ArtStyle); !ok {
		return invalid("art_style", MsgUnknown)
	}

	s.Profile = p
	s.Step = domain.StepSituation
	m.touch(s)
	return nil
}

// SubmitSituation はステップ2の状況を確定します。
func (m *Machine) SubmitSituation(ctx context.Context, s *domain.Session, text string) error {
	if err := expect(s, domain.StepSituation); err != nil {
		return err
	}
	clean, err := m.validateText(ctx, "situation", text)
	if err != nil {
		return err
	}
	s.Situation = clean
	s.Step = domain.StepEmotion
	m.touch(s)
	return nil
}

// SubmitEmotion はステップ3の感情を確定します。
func (m *Machine) SubmitEmotion(_ context.Context, s *domain.Session, emotionID string) error {
	if err := expect(s, domain.StepEmotion); err != nil {
		return err
	}
	if _, ok := m.catalog.Emotion(emotionID); !ok {
		return invalid("emotion", MsgUnknown)
	}
	s.Emotion = emotionID
	s.Step = domain.StepReason
	m.touch(s)
	return nil
}

// SubmitReason はステップ4の理由を確定し、生成ステップへ進めます。
func (m *Machine) SubmitReason(ctx context.Context, s *domain.Session, text string) error {
	if err := expect(s, domain.StepReason); err != nil {
		return err
	}
	clean, err := m.validateText(ctx, "reason", text)
	if err != nil {
		return err
	}
	s.Reason = clean
	s.Step = domain.StepComic
	m.touch(s)
	return nil
}

// Complete は生成結果をセッションに保存します。ステップ5でのみ有効です。
func (m *Machine) Complete(s *domain.Session, comic *domain.Comic) error {
	if err := expect(s, domain.StepComic); err != nil {
		return err
	}
	comic.ApplyTo(s)
	m.touch(s)
	return nil
}

// Back は1つ前のステップに戻り、戻り先以降の入力を消去します。ステップ1では何もしません。
func (m *Machine) Back(s *domain.Session) {
	if s.Step <= domain.FirstStep {
		return
	}
	s.Step--
	s.ClearFrom(s.Step)
	m.touch(s)
}

// Reset はウィザードを最初からやり直します。当日の利用回数は保持するのだ。
func (m *Machine) Reset(s *domain.Session) {
	s.ResetKeepingUsage(m.now())
}

func (m *Machine) validateText(ctx context.Context, field, text string) (string, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "", invalid(field, MsgRequired)
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return "", invalid(field, MsgTooLong)
	}
	if m.checker != nil {
		if v := m.checker.Check(ctx, clean); !v.Safe {
			return "", unsafe(field)
		}
	}
	return clean, nil
}

// Validate は「各フィールドは対応するステップの完了後にのみ値を持つ」という不変条件を検査します。
func Validate(s *domain.Session) error {
	if !s.Step.Valid() {
		return invalid("step", "잘못된 단계입니다.")
	}
	checks := []struct {
		filled bool
		doneAt domain.Step
		field  string
	}{
		{!s.Profile.IsZero(), domain.StepProfile, "profile"},
		{s.Situation != "", domain.StepSituation, "situation"},
		{s.Emotion != "", domain.StepEmotion, "emotion"},
		{s.Reason != "", domain.StepReason, "reason"},
		{len(s.Scenes) > 0 || len(s.Panels) > 0, domain.StepComic, "scenes"},
	}
	for _, c := range checks {
		// doneAt のステップが完了するのは Step が doneAt より先に進んだとき。
		// 結果だけはステップ5の中で保存されるのだ。
		completed := s.Step > c.doneAt || (c.doneAt == domain.StepComic && s.Step == domain.StepComic)
		if c.filled && !completed {
			return invalid(c.field, "완료되지 않은 단계의 값이 있습니다.")
		}
		if !c.filled && s.Step > c.doneAt {
			return invalid(c.field, "이전 단계의 값이 없습니다.")
		}
	}
	return nil
}
