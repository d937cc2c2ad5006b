package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/safety"
)

type stubChecker struct {
	unsafe map[string]bool
}

func (c stubChecker) Check(_ context.Context, text string) safety.Verdict {
	if c.unsafe[text] {
		return safety.Verdict{Safe: false, Source: safety.SourceKeyword}
	}
	return safety.Verdict{Safe: true}
}

func newMachine(t *testing.T) *Machine {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return NewMachine(cat, stubChecker{unsafe: map[string]bool{"나쁜 말": true}})
}

var validProfile = domain.Profile{AgeGroup: "child", Gender: "female", ArtStyle: "crayon"}

func completeToStep5(t *testing.T, m *Machine) *domain.Session {
	t.Helper()
	ctx := context.Background()
	s := domain.NewSession("s1", time.Now())
	require.NoError(t, m.SubmitProfile(ctx, s, validProfile))
	require.NoError(t, m.SubmitSituation(ctx, s, "  친구와 다퉜어요  "))
	require.NoError(t, m.SubmitEmotion(ctx, s, "sadness"))
	require.NoError(t, m.SubmitReason(ctx, s, "내 장난감을 망가뜨려서"))
	return s
}

func TestMachine_HappyPath(t *testing.T) {
	m := newMachine(t)
	s := completeToStep5(t, m)

	assert.Equal(t, domain.StepComic, s.Step)
	assert.Equal(t, "친구와 다퉜어요", s.Situation, "前後の空白は除去される")
	assert.Equal(t, "sadness", s.Emotion)
	require.NoError(t, Validate(s))

	comic := &domain.Comic{Panels: []domain.Panel{{Index: 1, Scene: "a"}, {Index: 2, Scene: "b"}, {Index: 3, Scene: "c"}, {Index: 4, Scene: "d"}}}
	require.NoError(t, m.Complete(s, comic))
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Scenes)
	require.NoError(t, Validate(s))
}

func TestMachine_WrongStep(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()
	s := domain.NewSession("s", time.Now())

	err := m.SubmitEmotion(ctx, s, "joy")
	assert.True(t, errors.Is(err, ErrWrongStep))
	assert.Equal(t, domain.StepProfile, s.Step)

	err = m.Complete(s, &domain.Comic{})
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.NotEmpty(t, UserMessage(err))
}

func TestMachine_InvalidInput(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	t.Run("カタログにないプロフィール", func(t *testing.T) {
		s := domain.NewSession("s", time.Now())
		for _, p := range []domain.Profile{
			{AgeGroup: "alien", Gender: "female", ArtStyle: "crayon"},
			{AgeGroup: "child", Gender: "?", ArtStyle: "crayon"},
			{AgeGroup: "child", Gender: "female", ArtStyle: "oil"},
		} {
			err := m.SubmitProfile(ctx, s, p)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, MsgUnknown, UserMessage(err))
		}
		assert.True(t, s.Profile.IsZero())
		assert.Equal(t, domain.StepProfile, s.Step)
	})

	t.Run("自由記述の検証", func(t *testing.T) {
		s := domain.NewSession("s", time.Now())
		require.NoError(t, m.SubmitProfile(ctx, s, validProfile))

		err := m.SubmitSituation(ctx, s, "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, MsgRequired, UserMessage(err))

		err = m.SubmitSituation(ctx, s, strings.Repeat("가", MaxTextLength+1))
		assert.Equal(t, MsgTooLong, UserMessage(err))

		require.NoError(t, m.SubmitSituation(ctx, s, strings.Repeat("가", MaxTextLength)))
	})

	t.Run("不適切な内容", func(t *testing.T) {
		s := domain.NewSession("s", time.Now())
		require.NoError(t, m.SubmitProfile(ctx, s, validProfile))
		err := m.SubmitSituation(ctx, s, "나쁜 말")
		assert.ErrorIs(t, err, ErrUnsafeContent)
		assert.False(t, errors.Is(err, ErrInvalidInput))
		assert.Equal(t, MsgUnsafe, UserMessage(err))
		assert.Empty(t, s.Situation)
		assert.Equal(t, domain.StepSituation, s.Step)
	})

	t.Run("不明な感情", func(t *testing.T) {
		s := domain.NewSession("s", time.Now())
		require.NoError(t, m.SubmitProfile(ctx, s, validProfile))
		require.NoError(t, m.SubmitSituation(ctx, s, "x"))
		assert.ErrorIs(t, m.SubmitEmotion(ctx, s, "boredom"), ErrInvalidInput)
	})
}

func TestMachine_Back(t *testing.T) {
	m := newMachine(t)
	s := completeToStep5(t, m)
	s.Scenes = []string{"a", "b", "c", "d"}

	m.Back(s)
	assert.Equal(t, domain.StepReason, s.Step)
	assert.Empty(t, s.Reason, "戻り先のステップの値は消去される")
	assert.Nil(t, s.Scenes)
	assert.Equal(t, "sadness", s.Emotion)
	require.NoError(t, Validate(s))

	m.Back(s)
	m.Back(s)
	assert.Equal(t, domain.StepSituation, s.Step)
	assert.Empty(t, s.Situation)
	assert.False(t, s.Profile.IsZero())

	m.Back(s)
	m.Back(s)
	assert.Equal(t, domain.StepProfile, s.Step, "ステップ1より前には戻らない")
	assert.True(t, s.Profile.IsZero())
	require.NoError(t, Validate(s))
}

func TestMachine_Reset(t *testing.T) {
	m := newMachine(t)
	s := completeToStep5(t, m)
	s.AddUsage("2026-01-01")

	m.Reset(s)
	assert.Equal(t, domain.StepProfile, s.Step)
	assert.Empty(t, s.Situation)
	assert.Equal(t, 1, s.UsageOn("2026-01-01"))
	require.NoError(t, Validate(s))
}

func TestValidate(t *testing.T) {
	s := domain.NewSession("s", time.Now())
	s.Emotion = "joy"
	assert.ErrorIs(t, Validate(s), ErrInvalidInput, "未完了ステップの値")

	s = domain.NewSession("s", time.Now())
	s.Step = domain.StepEmotion
	assert.ErrorIs(t, Validate(s), ErrInvalidInput, "完了済みステップの値が欠落")

	s = domain.NewSession("s", time.Now())
	s.Step = domain.Step(7)
	assert.Error(t, Validate(s))
}
